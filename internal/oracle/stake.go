package oracle

import (
	"context"
	"encoding/binary"
	"time"

	"go.uber.org/zap"

	"nestquest/internal/domain"
	"nestquest/internal/logging"
	"nestquest/internal/solana"
)

// Staking program constants.
const (
	StakeSeed                = "GFX-STAKINGACCOUNT"
	MinStakeAmount    uint64 = 25_000_000_000
	MinStakeAge              = 7 * 24 * time.Hour
	stakeAmountOffset        = 56
	stakeAmountEnd           = 64
)

var (
	// StakeProgramID owns the staking accounts.
	StakeProgramID = solana.MustParsePublicKey("8KJx48PYGHVC9fxzRRtYp4x4CM2HyYCm2EjVuAP4vvrx")
	// StakeControllerID is the controller every staking account is derived under.
	StakeControllerID = solana.MustParsePublicKey("8CxKnuJeoeQXFwiG6XiGY2akBjvJA5k3bE52BfnuEmNQ")
)

// StakeOptions contains configuration for creating a StakeOracle.
type StakeOptions struct {
	RPC      solana.RPCClient
	Logger   *zap.Logger
	Now      func() time.Time
	MinStake uint64        // 0 uses MinStakeAmount
	MinAge   time.Duration // 0 uses MinStakeAge
	PageSize int           // 0 uses solana.MaxSignaturesLimit
	MaxPages int           // 0 uses DefaultMaxHistoryPages
}

// StakeOracle reads a wallet's staking account balance and age.
type StakeOracle struct {
	rpc      solana.RPCClient
	logger   *zap.Logger
	now      func() time.Time
	minStake uint64
	minAge   time.Duration
	history  *HistoryScanner
}

// NewStakeOracle creates a stake oracle.
func NewStakeOracle(opts StakeOptions) *StakeOracle {
	o := &StakeOracle{
		rpc:      opts.RPC,
		logger:   opts.Logger,
		now:      opts.Now,
		minStake: opts.MinStake,
		minAge:   opts.MinAge,
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.minStake == 0 {
		o.minStake = MinStakeAmount
	}
	if o.minAge == 0 {
		o.minAge = MinStakeAge
	}
	o.history = NewHistoryScanner(opts.RPC, opts.PageSize, opts.MaxPages)
	return o
}

// StakeAddress derives the staking account of wallet.
func StakeAddress(wallet solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte(StakeSeed),
		StakeControllerID.Bytes(),
		wallet.Bytes(),
	}, StakeProgramID)
	return addr, err
}

// CheckBalance returns the staked amount, failing with InsufficientStake below the minimum.
func (o *StakeOracle) CheckBalance(ctx context.Context, stake solana.PublicKey) (uint64, error) {
	info, err := o.rpc.GetAccountInfo(ctx, stake.String())
	if err != nil {
		return 0, domain.Wrap(domain.KindOracleUnavailable, err, "get stake account")
	}
	if info == nil {
		return 0, domain.Errorf(domain.KindInsufficientStake, "stake account %s does not exist", stake)
	}

	data, err := info.DecodeData()
	if err != nil {
		return 0, domain.Wrap(domain.KindDecodeError, err, "stake account data")
	}
	if len(data) < stakeAmountEnd {
		return 0, domain.Errorf(domain.KindDecodeError, "stake account data too short: %d bytes", len(data))
	}

	amount := binary.LittleEndian.Uint64(data[stakeAmountOffset:stakeAmountEnd])
	if amount < o.minStake {
		return amount, domain.Errorf(domain.KindInsufficientStake, "staked %d, need %d", amount, o.minStake)
	}
	return amount, nil
}

// CheckDuration returns the creation time of the staking account, failing with
// InsufficientStakeDuration when it is younger than the minimum age.
func (o *StakeOracle) CheckDuration(ctx context.Context, stake solana.PublicKey) (int64, error) {
	earliest, pages, err := o.history.EarliestBlockTime(ctx, stake.String())
	o.logger.Debug("stake history scanned",
		logging.WithAddress(stake.String()),
		logging.WithPages(pages),
	)
	if err != nil {
		return 0, err
	}

	age := o.now().Sub(time.Unix(earliest, 0))
	if age < o.minAge {
		return earliest, domain.Errorf(domain.KindInsufficientStakeDuration, "staked for %s, need %s", age.Truncate(time.Second), o.minAge)
	}
	return earliest, nil
}

// Check runs the balance check and then the duration check for wallet.
func (o *StakeOracle) Check(ctx context.Context, wallet solana.PublicKey) (*domain.StakeAccountView, error) {
	stake, err := StakeAddress(wallet)
	if err != nil {
		return nil, domain.Wrap(domain.KindMalformedInput, err, "derive stake account")
	}

	balance, err := o.CheckBalance(ctx, stake)
	if err != nil {
		return nil, err
	}

	created, err := o.CheckDuration(ctx, stake)
	if err != nil {
		return nil, err
	}

	return &domain.StakeAccountView{
		Address:   stake.String(),
		Balance:   balance,
		CreatedAt: created,
	}, nil
}
