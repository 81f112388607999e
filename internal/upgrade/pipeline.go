// Package upgrade runs the tier-3 eligibility pipeline.
// Flow: signature → replay → ownership → stake → metadata → upgrade → publish
package upgrade

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"nestquest/internal/domain"
	"nestquest/internal/idhash"
	"nestquest/internal/logging"
	"nestquest/internal/metadata"
	"nestquest/internal/observability"
	"nestquest/internal/oracle"
	"nestquest/internal/publish"
	"nestquest/internal/solana"
	"nestquest/internal/storage"
	"nestquest/internal/verify"
)

// Stage names used in logs and metrics.
const (
	StageInput     = "input"
	StageSignature = "signature"
	StageReplay    = "replay"
	StageOwnership = "ownership"
	StageStake     = "stake"
	StageMetadata  = "metadata"
	StageUpgrade   = "upgrade"
	StagePublish   = "publish"
)

// Defaults.
const (
	DefaultTimeout     = 30 * time.Second
	persistenceTimeout = 5 * time.Second
)

// Pipeline evaluates upgrade requests and publishes tier-3 documents.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	ownership *oracle.OwnershipOracle
	stake     *oracle.StakeOracle
	resolver  *metadata.Resolver
	publisher *publish.Publisher
	replay    *verify.ReplayGuard

	records     storage.UpgradeRecordStore
	evaluations storage.EvaluationStore

	logger           *zap.Logger
	now              func() time.Time
	timeout          time.Duration
	requireTimestamp bool
}

// Options for creating a Pipeline.
type Options struct {
	// Required collaborators
	RPC     solana.RPCClient
	Fetcher metadata.Fetcher
	Store   publish.ObjectStore

	// Optional persistence; nil disables it
	Records     storage.UpgradeRecordStore
	Evaluations storage.EvaluationStore

	Logger *zap.Logger
	Now    func() time.Time

	Timeout          time.Duration // overall deadline, 0 uses DefaultTimeout
	ReplayWindow     time.Duration // 0 uses verify.DefaultReplayWindow
	RequireTimestamp bool

	// Stake oracle tuning, zero values use the oracle defaults
	HistoryPageSize int
	MaxHistoryPages int
}

// New creates a new Pipeline.
func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Pipeline{
		ownership: oracle.NewOwnershipOracle(opts.RPC),
		stake: oracle.NewStakeOracle(oracle.StakeOptions{
			RPC:      opts.RPC,
			Logger:   logger,
			Now:      now,
			PageSize: opts.HistoryPageSize,
			MaxPages: opts.MaxHistoryPages,
		}),
		resolver:         metadata.NewResolver(opts.RPC, opts.Fetcher, logger),
		publisher:        publish.NewPublisher(opts.Store, logger),
		replay:           verify.NewReplayGuard(opts.ReplayWindow, now),
		records:          opts.Records,
		evaluations:      opts.Evaluations,
		logger:           logger,
		now:              now,
		timeout:          timeout,
		requireTimestamp: opts.RequireTimestamp,
	}
}

// EvaluateAndPublish runs every eligibility stage in order and, if all pass,
// publishes the upgraded document. It returns the NFT identifier on success
// and a *domain.Error on the first failing stage.
func (p *Pipeline) EvaluateAndPublish(ctx context.Context, req *domain.UpgradeRequest) (uint64, error) {
	if req == nil {
		req = &domain.UpgradeRequest{}
	}
	start := p.now()
	requestID := RequestIDFrom(ctx)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	id, err := p.run(ctx, req)
	if err != nil {
		err = classify(err)
	}

	elapsed := p.now().Sub(start)
	outcome := Outcome(err)
	observability.RecordEvaluation(outcome, elapsed.Seconds())

	fields := []zap.Field{
		logging.WithRequestID(requestID),
		logging.WithWallet(req.Wallet),
		logging.WithMint(req.Mint),
		logging.WithDuration(elapsed),
	}
	if err != nil {
		kind, _ := domain.KindOf(err)
		p.logger.Warn("upgrade rejected", append(fields, logging.WithKind(kind), zap.Error(err))...)
	} else {
		p.logger.Info("upgrade published", append(fields, logging.WithIdentifier(id))...)
	}

	p.recordEvaluation(ctx, &domain.Evaluation{
		ID:          idhash.ComputeEvaluationID(requestID, req.Wallet, req.Mint, start.UnixMilli()),
		RequestID:   requestID,
		Wallet:      req.Wallet,
		Mint:        req.Mint,
		Outcome:     outcome,
		Identifier:  id,
		DurationMs:  elapsed.Milliseconds(),
		EvaluatedAt: start.UnixMilli(),
	})

	return id, err
}

func (p *Pipeline) run(ctx context.Context, req *domain.UpgradeRequest) (uint64, error) {
	wallet, mint, err := p.parse(req)
	if err != nil {
		return 0, err
	}

	message := req.Mint
	if req.HasTimestamp() {
		message = strconv.FormatInt(*req.Timestamp, 10)
	}

	if err := p.stage(StageSignature, func() error {
		return verify.VerifySignature(message, req.Signature, wallet)
	}); err != nil {
		return 0, err
	}

	if req.HasTimestamp() {
		if err := p.stage(StageReplay, func() error {
			return p.replay.Check(*req.Timestamp)
		}); err != nil {
			return 0, err
		}
	}

	if err := p.stage(StageOwnership, func() error {
		return p.ownership.CheckOwnership(ctx, wallet, mint)
	}); err != nil {
		return 0, err
	}

	if err := p.stage(StageStake, func() error {
		_, err := p.stake.Check(ctx, wallet)
		return err
	}); err != nil {
		return 0, err
	}

	var resolved *metadata.Resolved
	if err := p.stage(StageMetadata, func() error {
		var err error
		resolved, err = p.resolver.Resolve(ctx, mint)
		return err
	}); err != nil {
		return 0, err
	}

	if err := p.stage(StageUpgrade, func() error {
		return metadata.Upgrade(resolved.Document)
	}); err != nil {
		return 0, err
	}

	var key string
	if err := p.stage(StagePublish, func() error {
		var err error
		key, err = p.publisher.Publish(ctx, resolved.Identifier, resolved.Document)
		return err
	}); err != nil {
		return 0, err
	}

	p.recordUpgrade(ctx, &domain.UpgradeRecord{
		ID:          idhash.ComputeUpgradeID(resolved.Identifier, req.Mint),
		Identifier:  resolved.Identifier,
		Mint:        req.Mint,
		Wallet:      req.Wallet,
		ObjectKey:   key,
		PublishedAt: p.now().UnixMilli(),
	})

	return resolved.Identifier, nil
}

// parse validates the request shape before any signature or ledger work.
func (p *Pipeline) parse(req *domain.UpgradeRequest) (solana.PublicKey, solana.PublicKey, error) {
	var wallet, mint solana.PublicKey

	err := p.stage(StageInput, func() error {
		if req.Signature == "" {
			return domain.Errorf(domain.KindMalformedInput, "missing signature")
		}
		if p.requireTimestamp && !req.HasTimestamp() {
			return domain.Errorf(domain.KindMalformedInput, "missing timestamp")
		}

		var err error
		if wallet, err = solana.ParsePublicKey(req.Wallet); err != nil {
			return domain.Wrap(domain.KindMalformedInput, err, "wallet address")
		}
		if mint, err = solana.ParsePublicKey(req.Mint); err != nil {
			return domain.Wrap(domain.KindMalformedInput, err, "mint address")
		}
		return nil
	})
	return wallet, mint, err
}

// stage times fn under name.
func (p *Pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	observability.RecordStage(name, time.Since(start).Seconds())
	if err != nil {
		p.logger.Debug("stage failed", logging.WithStage(name), zap.Error(err))
	}
	return err
}

// recordUpgrade upserts the audit row. Failures are logged only.
func (p *Pipeline) recordUpgrade(ctx context.Context, rec *domain.UpgradeRecord) {
	if p.records == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistenceTimeout)
	defer cancel()

	if err := p.records.Upsert(ctx, rec); err != nil {
		p.logger.Error("failed to record upgrade",
			logging.WithIdentifier(rec.Identifier),
			logging.WithObjectKey(rec.ObjectKey),
			zap.Error(err),
		)
	}
}

// recordEvaluation appends to the evaluation log. Failures are logged only.
func (p *Pipeline) recordEvaluation(ctx context.Context, e *domain.Evaluation) {
	if p.evaluations == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistenceTimeout)
	defer cancel()

	if err := p.evaluations.Insert(ctx, e); err != nil {
		p.logger.Error("failed to record evaluation",
			logging.WithRequestID(e.RequestID),
			zap.Error(err),
		)
	}
}

// classify makes sure every returned error carries a kind.
func classify(err error) error {
	if _, ok := domain.KindOf(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.Wrap(domain.KindOracleUnavailable, err, "deadline")
	}
	return domain.Wrap(domain.KindOracleUnavailable, err, "unclassified")
}

// Outcome returns domain.OutcomeOK for nil or the error's kind.
func Outcome(err error) string {
	if err == nil {
		return domain.OutcomeOK
	}
	if kind, ok := domain.KindOf(err); ok {
		return string(kind)
	}
	return "Unknown"
}

// Result converts an EvaluateAndPublish return into an EligibilityResult.
func Result(id uint64, err error) domain.EligibilityResult {
	if err == nil {
		return domain.EligibilityResult{OK: true, Identifier: id}
	}
	kind, _ := domain.KindOf(err)
	return domain.EligibilityResult{Kind: kind, Reason: kind.PublicReason()}
}
