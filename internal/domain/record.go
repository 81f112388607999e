package domain

// UpgradeRecord is the audit row written after a successful publish.
// Corresponds to upgrade_records table in PostgreSQL.
type UpgradeRecord struct {
	ID          string // idhash.ComputeUpgradeID
	Identifier  uint64 // numeric NFT id, also the object key suffix
	Mint        string
	Wallet      string
	ObjectKey   string // metadata/{identifier}.json
	PublishedAt int64  // ms
	CreatedAt   int64  // ms, set by store
}

// Outcome values for Evaluation.Outcome besides a failure Kind.
const OutcomeOK = "OK"

// Evaluation is one pipeline execution, success or failure.
// Corresponds to eligibility_evaluations table in ClickHouse.
type Evaluation struct {
	ID          string
	RequestID   string
	Wallet      string
	Mint        string
	Outcome     string // OutcomeOK or a Kind string
	Identifier  uint64 // zero unless published
	DurationMs  int64
	EvaluatedAt int64 // ms
}
