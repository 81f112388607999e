package upgrade

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nestquest/internal/domain"
	"nestquest/internal/metadata"
	"nestquest/internal/oracle"
	"nestquest/internal/publish"
	"nestquest/internal/solana"
	"nestquest/internal/solana/stub"
	"nestquest/internal/storage/memory"
	"nestquest/internal/verify"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

// scenario is a ledger, document host and storage set up for one wallet and mint.
type scenario struct {
	key    ed25519.PrivateKey
	wallet solana.PublicKey
	mint   solana.PublicKey

	rpc     *stub.RPCClient
	server  *httptest.Server
	doc     *domain.OffchainMetadata
	store   *publish.MemoryStore
	records *memory.UpgradeRecordStore
	evals   *memory.EvaluationStore
}

func keyFromSeed(b byte) (ed25519.PrivateKey, solana.PublicKey) {
	key := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{b}, ed25519.SeedSize))
	var pk solana.PublicKey
	copy(pk[:], key.Public().(ed25519.PublicKey))
	return key, pk
}

// newScenario builds the happy path: the wallet owns the mint, has staked
// stakeAmount for stakeAge, and the mint's document is tier 2 with the given body.
func newScenario(t *testing.T, stakeAmount uint64, stakeAge time.Duration, body string) *scenario {
	t.Helper()

	s := &scenario{
		rpc:     stub.NewRPCClient(),
		store:   publish.NewMemoryStore(),
		records: memory.NewUpgradeRecordStore(),
		evals:   memory.NewEvaluationStore(),
	}
	s.key, s.wallet = keyFromSeed(7)
	_, s.mint = keyFromSeed(9)

	s.doc = &domain.OffchainMetadata{
		Name:                 "NestQuest Hatchling #42",
		Symbol:               "NEST",
		Description:          "After weeks of waiting the hatchling has emerged.",
		SellerFeeBasisPoints: 500,
		Image:                "https://gfxnestquest.s3.ap-south-1.amazonaws.com/img/tier2/red.png",
		ExternalURL:          "https://app.goosefx.io",
		Attributes: []domain.Attribute{
			{TraitType: "Body", Value: body},
			{TraitType: "Background", Value: "Sky"},
		},
		Collection: domain.Collection{Name: "NestQuest", Family: "GooseFX"},
		Properties: domain.Properties{
			Files:    []domain.PropertiesFile{{URI: "https://example.com/t2.png", Type: "image/png"}},
			Category: "image",
			Creators: []domain.Creator{{Address: s.wallet.String(), Share: 100}},
		},
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.doc)
	}))
	t.Cleanup(s.server.Close)

	ata, err := solana.AssociatedTokenAddress(s.wallet, s.mint)
	require.NoError(t, err)
	s.rpc.AddBalance(ata.String(), &solana.TokenAmount{Amount: "1", Decimals: 0, UIAmountString: "1"})

	stakeAddr, err := oracle.StakeAddress(s.wallet)
	require.NoError(t, err)
	stakeData := make([]byte, 128)
	binary.LittleEndian.PutUint64(stakeData[56:64], stakeAmount)
	s.rpc.AddAccount(stakeAddr.String(), stakeData)
	created := fixedNow.Add(-stakeAge).Unix()
	later := fixedNow.Add(-time.Hour).Unix()
	s.rpc.AddSignatures(stakeAddr.String(), []solana.SignatureInfo{
		{Signature: "stake-create", Slot: 10, BlockTime: &created},
		{Signature: "stake-topup", Slot: 20, BlockTime: &later},
	})

	metaAddr, err := solana.MetadataAddress(s.mint)
	require.NoError(t, err)
	metaData, err := metadata.EncodeOnchain(&domain.OnchainMetadata{
		UpdateAuthority: s.wallet.String(),
		Mint:            s.mint.String(),
		Name:            "NestQuest #42\x00\x00\x00",
		Symbol:          "NEST",
		URI:             s.server.URL + "/metadata/42.json",
	})
	require.NoError(t, err)
	s.rpc.AddAccount(metaAddr.String(), metaData)

	return s
}

func (s *scenario) pipeline(mutators ...func(*Options)) *Pipeline {
	opts := Options{
		RPC:         s.rpc,
		Fetcher:     metadata.NewHTTPFetcher(time.Second),
		Store:       s.store,
		Records:     s.records,
		Evaluations: s.evals,
		Now:         func() time.Time { return fixedNow },
	}
	for _, m := range mutators {
		m(&opts)
	}
	return New(opts)
}

// request returns a request signed over the mint id.
func (s *scenario) request(t *testing.T) *domain.UpgradeRequest {
	t.Helper()
	sig, err := verify.Sign(s.key, s.mint.String())
	require.NoError(t, err)
	return &domain.UpgradeRequest{
		Wallet:    s.wallet.String(),
		Mint:      s.mint.String(),
		Signature: sig,
	}
}

// timedRequest returns a request carrying ts and signed over its decimal form.
func (s *scenario) timedRequest(t *testing.T, ts int64) *domain.UpgradeRequest {
	t.Helper()
	sig, err := verify.Sign(s.key, strconv.FormatInt(ts, 10))
	require.NoError(t, err)
	return &domain.UpgradeRequest{
		Wallet:    s.wallet.String(),
		Mint:      s.mint.String(),
		Signature: sig,
		Timestamp: &ts,
	}
}
