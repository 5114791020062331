package domain

import (
	"time"

	id "chainpass/pkg/domain"
)

// ActivitySignals are the per-network observations scoring is computed from.
// They are ephemeral: recomputed on demand, never persisted as ledger state.
type ActivitySignals struct {
	HasDeployedContract   bool `json:"has_deployed_contract"`
	HasRollupInteraction  bool `json:"has_rollup_interaction"`
	TransactionCount      int  `json:"transaction_count"`
	HasMainnetInteraction bool `json:"has_mainnet_interaction"`
}

// ScoreResult pairs a computed score with its tier plus the observability
// surface for partial failures.
type ScoreResult struct {
	Address id.Address      `json:"address"`
	Signals ActivitySignals `json:"signals"`
	Score   int             `json:"score"`
	Tier    Tier            `json:"tier"`

	// Partial is set when at least one source failed and contributed
	// absent signals instead of aborting the computation.
	Partial       bool      `json:"partial"`
	FailedSources []string  `json:"failed_sources,omitempty"`
	EvaluatedAt   time.Time `json:"evaluated_at"`
}
