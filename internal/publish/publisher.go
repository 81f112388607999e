// Package publish writes upgraded metadata documents to object storage.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nestquest/internal/domain"
	"nestquest/internal/logging"
	"nestquest/internal/observability"
)

// Storage defaults.
const (
	DefaultBucket = "gfxnestquest"
	DefaultRegion = "ap-south-1"
	KeyPrefix     = "metadata/"
	ContentType   = "application/json"
)

// ObjectStore is an overwrite-on-put blob store.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// ObjectKey returns the storage key of an identifier's document.
func ObjectKey(id uint64) string {
	return fmt.Sprintf("%s%d.json", KeyPrefix, id)
}

// Publisher serializes documents and writes them under ObjectKey.
type Publisher struct {
	store  ObjectStore
	logger *zap.Logger
}

// NewPublisher creates a publisher.
func NewPublisher(store ObjectStore, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{store: store, logger: logger}
}

// Publish writes doc to metadata/{id}.json, replacing any previous object, and
// returns the key.
func (p *Publisher) Publish(ctx context.Context, id uint64, doc *domain.OffchainMetadata) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", domain.Wrap(domain.KindStorageUnavailable, err, "marshal document")
	}

	key := ObjectKey(id)
	start := time.Now()
	if err := p.store.Put(ctx, key, body, ContentType); err != nil {
		return "", domain.Wrap(domain.KindStorageUnavailable, err, "put "+key)
	}

	observability.RecordPublish()
	p.logger.Info("document published",
		logging.WithIdentifier(id),
		logging.WithObjectKey(key),
		logging.WithDuration(time.Since(start)),
	)
	return key, nil
}
