package logging

import (
	"time"

	"go.uber.org/zap"

	"nestquest/internal/domain"
)

// Log Fields.
const (
	FieldRequestID  = "requestID"
	FieldWallet     = "wallet"
	FieldMint       = "mint"
	FieldIdentifier = "identifier"
	FieldKind       = "kind"
	FieldStage      = "stage"
	FieldDuration   = "duration"
	FieldObjectKey  = "objectKey"
	FieldURI        = "uri"
	FieldPages      = "pages"
	FieldAddress    = "address"
)

// WithRequestID sets the request id field.
func WithRequestID(value string) zap.Field {
	return zap.String(FieldRequestID, value)
}

// WithWallet sets the wallet field.
func WithWallet(value string) zap.Field {
	return zap.String(FieldWallet, value)
}

// WithMint sets the mint field.
func WithMint(value string) zap.Field {
	return zap.String(FieldMint, value)
}

// WithIdentifier sets the NFT identifier field.
func WithIdentifier(value uint64) zap.Field {
	return zap.Uint64(FieldIdentifier, value)
}

// WithKind sets the rejection kind field.
func WithKind(value domain.Kind) zap.Field {
	return zap.String(FieldKind, string(value))
}

// WithStage sets the pipeline stage field.
func WithStage(value string) zap.Field {
	return zap.String(FieldStage, value)
}

// WithDuration sets the duration field.
func WithDuration(value time.Duration) zap.Field {
	return zap.Duration(FieldDuration, value)
}

// WithObjectKey sets the storage key field.
func WithObjectKey(value string) zap.Field {
	return zap.String(FieldObjectKey, value)
}

// WithURI sets the uri field.
func WithURI(value string) zap.Field {
	return zap.String(FieldURI, value)
}

// WithPages sets the history pages field.
func WithPages(value int) zap.Field {
	return zap.Int(FieldPages, value)
}

// WithAddress sets a derived ledger address field.
func WithAddress(value string) zap.Field {
	return zap.String(FieldAddress, value)
}
