// Package api exposes the upgrade pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"nestquest/internal/domain"
	"nestquest/internal/logging"
	"nestquest/internal/storage"
	"nestquest/internal/upgrade"
)

// maxBodySize bounds POST /tier3 bodies.
const maxBodySize = 64 << 10

// Evaluator runs one upgrade request end to end.
type Evaluator interface {
	EvaluateAndPublish(ctx context.Context, req *domain.UpgradeRequest) (uint64, error)
}

// UpgradeBody is the POST /tier3 request body.
type UpgradeBody struct {
	Address   string `json:"address"`
	MintID    string `json:"mint_id"`
	Signature string `json:"signature"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

// Message is the response envelope of POST /tier3.
type Message struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// UpgradeRecordView is the JSON form of a stored upgrade record.
type UpgradeRecordView struct {
	Identifier  uint64 `json:"identifier"`
	Mint        string `json:"mint"`
	Wallet      string `json:"wallet"`
	ObjectKey   string `json:"object_key"`
	PublishedAt int64  `json:"published_at"`
}

// Handler serves the upgrade endpoints.
type Handler struct {
	evaluator Evaluator
	records   storage.UpgradeRecordStore
	logger    *zap.Logger
}

// NewHandler creates a Handler. records may be nil, which disables GET /upgrades.
func NewHandler(evaluator Evaluator, records storage.UpgradeRecordStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{evaluator: evaluator, records: records, logger: logger}
}

// Tier3 handles POST /tier3.
func (h *Handler) Tier3(w http.ResponseWriter, r *http.Request) {
	var body UpgradeBody
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(&body); err != nil {
		h.logger.Warn("undecodable upgrade body",
			logging.WithRequestID(upgrade.RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		writeMessage(w, http.StatusBadRequest, domain.KindMalformedInput.PublicReason())
		return
	}

	id, err := h.evaluator.EvaluateAndPublish(r.Context(), &domain.UpgradeRequest{
		Wallet:    body.Address,
		Mint:      body.MintID,
		Signature: body.Signature,
		Timestamp: body.Timestamp,
	})

	res := upgrade.Result(id, err)
	if !res.OK {
		writeMessage(w, http.StatusBadRequest, res.Reason)
		return
	}
	writeMessage(w, http.StatusOK, "OK")
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// GetUpgrade handles GET /upgrades/{identifier}.
func (h *Handler) GetUpgrade(w http.ResponseWriter, r *http.Request) {
	if h.records == nil {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}

	identifier, err := strconv.ParseUint(mux.Vars(r)["identifier"], 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, domain.KindMalformedInput.PublicReason())
		return
	}

	rec, err := h.records.GetByIdentifier(r.Context(), identifier)
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load upgrade record",
			logging.WithRequestID(upgrade.RequestIDFrom(r.Context())),
			logging.WithIdentifier(identifier),
			zap.Error(err),
		)
		writeMessage(w, http.StatusInternalServerError, domain.KindStorageUnavailable.PublicReason())
		return
	}

	writeJSON(w, http.StatusOK, UpgradeRecordView{
		Identifier:  rec.Identifier,
		Mint:        rec.Mint,
		Wallet:      rec.Wallet,
		ObjectKey:   rec.ObjectKey,
		PublishedAt: rec.PublishedAt,
	})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Message{Code: status, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
