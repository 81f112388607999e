// Package metadata resolves and upgrades NFT metadata.
package metadata

import (
	"encoding/binary"
	"fmt"
	"strings"

	"nestquest/internal/domain"
	"nestquest/internal/solana"
)

// metadataV1Key is the account discriminator of a Metaplex MetadataV1 record.
const metadataV1Key = 4

// Borsh string length caps for the Metaplex data section.
const (
	maxNameLen   = 32
	maxSymbolLen = 10
	maxURILen    = 200
)

// DecodeOnchain parses a Metaplex Token Metadata account.
// Layout:
// - key: u8 (4 for MetadataV1)
// - updateAuthority: Pubkey (32 bytes)
// - mint: Pubkey (32 bytes)
// - name, symbol, uri: borsh strings (u32 LE length + bytes), null padded
// - sellerFeeBasisPoints: u16 LE
func DecodeOnchain(data []byte) (*domain.OnchainMetadata, error) {
	r := &borshReader{data: data}

	key, err := r.u8()
	if err != nil {
		return nil, decodeErr(err)
	}
	if key != metadataV1Key {
		return nil, domain.Errorf(domain.KindDecodeError, "unexpected metadata key %d", key)
	}

	authority, err := r.pubkey()
	if err != nil {
		return nil, decodeErr(err)
	}
	mint, err := r.pubkey()
	if err != nil {
		return nil, decodeErr(err)
	}

	name, err := r.str(maxNameLen)
	if err != nil {
		return nil, decodeErr(fmt.Errorf("name: %w", err))
	}
	symbol, err := r.str(maxSymbolLen)
	if err != nil {
		return nil, decodeErr(fmt.Errorf("symbol: %w", err))
	}
	uri, err := r.str(maxURILen)
	if err != nil {
		return nil, decodeErr(fmt.Errorf("uri: %w", err))
	}
	fee, err := r.u16()
	if err != nil {
		return nil, decodeErr(fmt.Errorf("seller fee: %w", err))
	}

	return &domain.OnchainMetadata{
		UpdateAuthority:      authority.String(),
		Mint:                 mint.String(),
		Name:                 strings.TrimRight(name, "\x00"),
		Symbol:               strings.TrimRight(symbol, "\x00"),
		URI:                  strings.TrimRight(uri, "\x00"),
		SellerFeeBasisPoints: fee,
	}, nil
}

func decodeErr(err error) error {
	return domain.Wrap(domain.KindDecodeError, err, "metaplex metadata")
}

// borshReader reads little-endian borsh primitives.
type borshReader struct {
	data   []byte
	offset int
}

func (r *borshReader) take(n int) ([]byte, error) {
	if n < 0 || r.offset+n > len(r.data) {
		return nil, fmt.Errorf("need %d bytes at offset %d, have %d", n, r.offset, len(r.data))
	}
	b := r.data[r.offset : r.offset+n]
	r.offset += n
	return b, nil
}

func (r *borshReader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *borshReader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *borshReader) pubkey() (solana.PublicKey, error) {
	b, err := r.take(solana.PublicKeySize)
	if err != nil {
		return solana.PublicKey{}, err
	}
	var pk solana.PublicKey
	copy(pk[:], b)
	return pk, nil
}

func (r *borshReader) str(maxLen int) (string, error) {
	lb, err := r.take(4)
	if err != nil {
		return "", err
	}
	n := binary.LittleEndian.Uint32(lb)
	if int(n) > maxLen {
		return "", fmt.Errorf("length %d exceeds %d", n, maxLen)
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EncodeOnchain is the inverse of DecodeOnchain, used to build fixtures.
func EncodeOnchain(m *domain.OnchainMetadata) ([]byte, error) {
	authority, err := solana.ParsePublicKey(m.UpdateAuthority)
	if err != nil {
		return nil, fmt.Errorf("update authority: %w", err)
	}
	mint, err := solana.ParsePublicKey(m.Mint)
	if err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}

	out := []byte{metadataV1Key}
	out = append(out, authority.Bytes()...)
	out = append(out, mint.Bytes()...)
	for _, s := range []string{m.Name, m.Symbol, m.URI} {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(s)))
		out = append(out, s...)
	}
	out = binary.LittleEndian.AppendUint16(out, m.SellerFeeBasisPoints)
	return out, nil
}
