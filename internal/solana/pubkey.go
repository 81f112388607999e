package solana

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PublicKeySize is the length of a Solana address in bytes.
const PublicKeySize = 32

// Well-known program IDs.
const (
	TokenProgramID                  = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenAccountProgramID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	MetaplexProgramID               = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
)

// PDA derivation limits enforced by the runtime.
const (
	maxSeeds      = 16
	maxSeedLength = 32
	pdaMarker     = "ProgramDerivedAddress"
)

// ErrNoViableBump is returned when no bump seed yields an off-curve address.
var ErrNoViableBump = errors.New("unable to find a viable program address bump seed")

// PublicKey is a 32-byte ledger address.
type PublicKey [PublicKeySize]byte

// ParsePublicKey decodes a base58 address.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	decoded, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("decode base58 address: %w", err)
	}
	if len(decoded) != PublicKeySize {
		return pk, fmt.Errorf("invalid address length: %d", len(decoded))
	}
	copy(pk[:], decoded)
	return pk, nil
}

// MustParsePublicKey is ParsePublicKey for compile-time constants.
func MustParsePublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic(fmt.Sprintf("invalid public key %q: %v", s, err))
	}
	return pk
}

// String returns the base58 encoding.
func (pk PublicKey) String() string {
	return base58.Encode(pk[:])
}

// Bytes returns a copy of the raw key bytes.
func (pk PublicKey) Bytes() []byte {
	b := make([]byte, PublicKeySize)
	copy(b, pk[:])
	return b
}

// IsOnCurve reports whether the key is a valid ed25519 point.
func (pk PublicKey) IsOnCurve() bool {
	return isOnCurve(pk[:])
}

// FindProgramAddress derives a Program Derived Address using the Solana algorithm.
// It returns the address and the bump seed that produced it.
func FindProgramAddress(seeds [][]byte, programID PublicKey) (PublicKey, uint8, error) {
	if len(seeds) > maxSeeds-1 {
		return PublicKey{}, 0, fmt.Errorf("too many seeds: %d", len(seeds))
	}
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return PublicKey{}, 0, fmt.Errorf("seed exceeds %d bytes", maxSeedLength)
		}
	}

	// sha256(seeds || bump || programID || marker), bump from 255 down,
	// first off-curve hash wins.
	for bump := 255; bump > 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{byte(bump)})
		h.Write(programID[:])
		h.Write([]byte(pdaMarker))

		var candidate PublicKey
		copy(candidate[:], h.Sum(nil))

		if !isOnCurve(candidate[:]) {
			return candidate, uint8(bump), nil
		}
	}

	return PublicKey{}, 0, ErrNoViableBump
}

// AssociatedTokenAddress returns the canonical token account for (wallet, mint).
// Seeds: [wallet, token_program_id, mint] under the associated token program.
func AssociatedTokenAddress(wallet, mint PublicKey) (PublicKey, error) {
	tokenProgram := MustParsePublicKey(TokenProgramID)
	ataProgram := MustParsePublicKey(AssociatedTokenAccountProgramID)

	addr, _, err := FindProgramAddress([][]byte{wallet[:], tokenProgram[:], mint[:]}, ataProgram)
	if err != nil {
		return PublicKey{}, fmt.Errorf("derive associated token address: %w", err)
	}
	return addr, nil
}

// MetadataAddress returns the Metaplex metadata account for a mint.
// Seeds: ["metadata", metaplex_program_id, mint]
func MetadataAddress(mint PublicKey) (PublicKey, error) {
	program := MustParsePublicKey(MetaplexProgramID)

	addr, _, err := FindProgramAddress([][]byte{[]byte("metadata"), program[:], mint[:]}, program)
	if err != nil {
		return PublicKey{}, fmt.Errorf("derive metadata address: %w", err)
	}
	return addr, nil
}

func isOnCurve(point []byte) bool {
	if len(point) != PublicKeySize {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
