package domain

// StakeAccountView is what the ledger shows about a wallet's staking account.
type StakeAccountView struct {
	Address   string
	Balance   uint64
	CreatedAt int64 // unix seconds of the earliest transaction
}
