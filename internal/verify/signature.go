// Package verify authenticates upgrade requests: detached-signature checks
// and the replay freshness window.
package verify

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"nestquest/internal/domain"
	"nestquest/internal/solana"
)

// MessagePrefix is prepended to every signed message by the wallet frontend.
const MessagePrefix = "NestQuest verify:\n"

// SignedPayload returns the exact bytes a wallet signs for message.
func SignedPayload(message string) []byte {
	return []byte(MessagePrefix + message)
}

// VerifySignature checks a hex-encoded ed25519 signature over
// MessagePrefix+message against the signer's address.
func VerifySignature(message, signatureHex string, signer solana.PublicKey) error {
	sig, err := hex.DecodeString(signatureHex)
	if err != nil {
		return domain.Wrap(domain.KindInvalidSignature, err, "decode signature hex")
	}

	if len(sig) != ed25519.SignatureSize {
		return domain.Errorf(domain.KindInvalidSignature, "signature length %d, want %d", len(sig), ed25519.SignatureSize)
	}

	if !ed25519.Verify(ed25519.PublicKey(signer[:]), SignedPayload(message), sig) {
		return domain.Errorf(domain.KindInvalidSignature, "signature does not verify")
	}

	return nil
}

// Sign produces the hex signature a wallet would return for message.
func Sign(key ed25519.PrivateKey, message string) (string, error) {
	if len(key) != ed25519.PrivateKeySize {
		return "", fmt.Errorf("invalid private key length: %d", len(key))
	}
	return hex.EncodeToString(ed25519.Sign(key, SignedPayload(message))), nil
}
