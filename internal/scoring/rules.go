// Package scoring computes a reputation score and tier from observed account
// activity across multiple independent chains. The rules are pure functions;
// the service layer owns orchestration, caching, and failure policy.
package scoring

import "chainpass/internal/domain"

// Score weights. Their sum is 100, which makes 100 the natural ceiling of
// ScoreSignals - an invariant of the rule set, not a clamp.
const (
	weightDeployedContract   = 40
	weightRollupInteraction  = 30
	weightTransactionVolume  = 20
	weightMainnetInteraction = 10

	// transactionVolumeThreshold is strict: exactly this many transactions
	// does not award the volume weight.
	transactionVolumeThreshold = 100
)

// Tier boundaries, inclusive-lower.
const (
	silverFloor = 50
	goldFloor   = 100
)

// ScoreSignals derives the score from an aggregated signal set. Pure and
// deterministic: identical signals always produce identical scores.
func ScoreSignals(signals domain.ActivitySignals) int {
	score := 0
	if signals.HasDeployedContract {
		score += weightDeployedContract
	}
	if signals.HasRollupInteraction {
		score += weightRollupInteraction
	}
	if signals.TransactionCount > transactionVolumeThreshold {
		score += weightTransactionVolume
	}
	if signals.HasMainnetInteraction {
		score += weightMainnetInteraction
	}
	return score
}

// TierForScore classifies a score: [0,49] Bronze, [50,99] Silver,
// [100,+inf) Gold.
func TierForScore(score int) domain.Tier {
	switch {
	case score >= goldFloor:
		return domain.TierGold
	case score >= silverFloor:
		return domain.TierSilver
	default:
		return domain.TierBronze
	}
}

// sourceObservation pairs one source's signals with its network role.
type sourceObservation struct {
	name    string
	mainnet bool
	signals domain.ActivitySignals
}

// aggregate merges per-network observations:
//   - HasDeployedContract: true if any network reports it
//   - HasRollupInteraction: true if any non-mainnet network reports it
//   - TransactionCount: sum across all networks
//   - HasMainnetInteraction: the designated mainnet network's signal only
func aggregate(observations []sourceObservation) domain.ActivitySignals {
	var agg domain.ActivitySignals
	for _, obs := range observations {
		if obs.signals.HasDeployedContract {
			agg.HasDeployedContract = true
		}
		if !obs.mainnet && obs.signals.HasRollupInteraction {
			agg.HasRollupInteraction = true
		}
		if obs.mainnet && obs.signals.HasMainnetInteraction {
			agg.HasMainnetInteraction = true
		}
		agg.TransactionCount += obs.signals.TransactionCount
	}
	return agg
}
