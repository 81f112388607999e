// Package main signs an upgrade message with a Solana CLI keypair file and
// prints the wallet address, message and hex signature POST /tier3 expects.
package main

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"nestquest/internal/solana"
	"nestquest/internal/verify"
)

var (
	keypairPath string
	mintID      string
	withTime    bool
	timestamp   int64
)

var rootCmd = &cobra.Command{
	Use:   "nestquest-sign",
	Short: "Sign a tier-3 upgrade request",
	Long: `Sign a tier-3 upgrade request with a Solana CLI keypair file.

Without --timestamp the mint id is signed. With --timestamp the decimal
timestamp (ms) is signed; --at overrides the current time.`,
	SilenceUsage: true,
	RunE:         runSign,
}

func init() {
	rootCmd.Flags().StringVarP(&keypairPath, "keypair", "k", "", "Path to a Solana CLI keypair JSON file")
	rootCmd.Flags().StringVarP(&mintID, "mint", "m", "", "NFT mint address")
	rootCmd.Flags().BoolVar(&withTime, "timestamp", false, "Sign a timestamp instead of the mint id")
	rootCmd.Flags().Int64Var(&timestamp, "at", 0, "Timestamp to sign in ms (default: now)")
	_ = rootCmd.MarkFlagRequired("keypair")
	_ = rootCmd.MarkFlagRequired("mint")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// request mirrors the POST /tier3 body.
type request struct {
	Address   string `json:"address"`
	MintID    string `json:"mint_id"`
	Signature string `json:"signature"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

func runSign(cmd *cobra.Command, _ []string) error {
	key, err := readKeypair(keypairPath)
	if err != nil {
		return err
	}
	if _, err := solana.ParsePublicKey(mintID); err != nil {
		return fmt.Errorf("mint: %w", err)
	}

	var wallet solana.PublicKey
	copy(wallet[:], key.Public().(ed25519.PublicKey))

	out := request{Address: wallet.String(), MintID: mintID}
	message := mintID
	if withTime {
		ts := timestamp
		if ts == 0 {
			ts = time.Now().UnixMilli()
		}
		out.Timestamp = &ts
		message = strconv.FormatInt(ts, 10)
	}

	if out.Signature, err = verify.Sign(key, message); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// readKeypair loads the 64-byte JSON array written by solana-keygen.
func readKeypair(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keypair: %w", err)
	}

	var raw []byte
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("decode keypair %s: %w", path, err)
	}
	for _, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("decode keypair %s: byte out of range: %d", path, v)
		}
		raw = append(raw, byte(v))
	}

	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("keypair %s: %d bytes, want %d", path, len(raw), ed25519.PrivateKeySize)
	}
	return ed25519.PrivateKey(raw), nil
}
