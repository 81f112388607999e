package verify

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nestquest/internal/domain"
	"nestquest/internal/solana"
)

func newKey(t *testing.T) (solana.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	var pk solana.PublicKey
	copy(pk[:], pub)
	return pk, priv
}

func TestVerifySignature_RoundTrip(t *testing.T) {
	messages := []string{
		"",
		"7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
		"1700000000000",
		"multi\nline",
	}

	for _, msg := range messages {
		pub, priv := newKey(t)
		sig, err := Sign(priv, msg)
		require.NoError(t, err)

		assert.NoError(t, VerifySignature(msg, sig, pub), "message %q", msg)
	}
}

func TestVerifySignature_WrongKey(t *testing.T) {
	_, priv := newKey(t)
	other, _ := newKey(t)

	sig, err := Sign(priv, "mint")
	require.NoError(t, err)

	err = VerifySignature("mint", sig, other)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestVerifySignature_MutatedMessage(t *testing.T) {
	pub, priv := newKey(t)

	sig, err := Sign(priv, "mint-a")
	require.NoError(t, err)

	assert.ErrorIs(t, VerifySignature("mint-b", sig, pub), domain.ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature("mint-a ", sig, pub), domain.ErrInvalidSignature)
}

func TestVerifySignature_RequiresPrefix(t *testing.T) {
	pub, priv := newKey(t)

	// Signed without the application prefix.
	raw := hex.EncodeToString(ed25519.Sign(priv, []byte("mint")))

	assert.ErrorIs(t, VerifySignature("mint", raw, pub), domain.ErrInvalidSignature)
}

func TestVerifySignature_MalformedHex(t *testing.T) {
	pub, _ := newKey(t)

	tests := []struct {
		name string
		sig  string
	}{
		{"not hex", "zz"},
		{"too short", hex.EncodeToString(make([]byte, 63))},
		{"too long", hex.EncodeToString(make([]byte, 65))},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, VerifySignature("mint", tt.sig, pub), domain.ErrInvalidSignature)
		})
	}
}

func TestSign_InvalidKey(t *testing.T) {
	_, err := Sign(ed25519.PrivateKey{1, 2, 3}, "msg")
	assert.Error(t, err)
}
