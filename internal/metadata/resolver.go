package metadata

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"nestquest/internal/domain"
	"nestquest/internal/logging"
	"nestquest/internal/solana"
)

// Tier2Marker appears in the description of every tier-2 document.
const Tier2Marker = "hatchling has emerged"

// Resolved is a tier-2 document together with where it came from.
type Resolved struct {
	Onchain    *domain.OnchainMetadata
	Document   *domain.OffchainMetadata
	Identifier uint64
}

// Resolver locates, fetches and validates the metadata of a mint.
type Resolver struct {
	rpc     solana.RPCClient
	fetcher Fetcher
	logger  *zap.Logger
}

// NewResolver creates a resolver.
func NewResolver(rpc solana.RPCClient, fetcher Fetcher, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{rpc: rpc, fetcher: fetcher, logger: logger}
}

// Onchain reads and decodes the Metaplex metadata account of mint.
func (r *Resolver) Onchain(ctx context.Context, mint solana.PublicKey) (*domain.OnchainMetadata, error) {
	addr, err := solana.MetadataAddress(mint)
	if err != nil {
		return nil, domain.Wrap(domain.KindMalformedInput, err, "derive metadata account")
	}

	info, err := r.rpc.GetAccountInfo(ctx, addr.String())
	if err != nil {
		return nil, domain.Wrap(domain.KindOracleUnavailable, err, "get metadata account")
	}
	if info == nil {
		return nil, domain.Errorf(domain.KindMetadataNotFound, "no metadata account %s", addr)
	}

	data, err := info.DecodeData()
	if err != nil {
		return nil, decodeErr(err)
	}
	return DecodeOnchain(data)
}

// Resolve returns the tier-2 document of mint and its cross-checked identifier.
func (r *Resolver) Resolve(ctx context.Context, mint solana.PublicKey) (*Resolved, error) {
	onchain, err := r.Onchain(ctx, mint)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("fetching offchain metadata",
		logging.WithMint(mint.String()),
		logging.WithURI(onchain.URI),
	)

	doc, err := r.fetcher.Fetch(ctx, onchain.URI)
	if err != nil {
		return nil, err
	}

	if !strings.Contains(doc.Description, Tier2Marker) {
		return nil, domain.Errorf(domain.KindWrongTier, "%q is not tier 2", doc.Name)
	}

	id, err := CrossCheckIdentifier(onchain.Name, onchain.URI)
	if err != nil {
		return nil, err
	}

	return &Resolved{
		Onchain:    onchain,
		Document:   doc,
		Identifier: id,
	}, nil
}
