// Package reputation tracks per-agent trust scores in [0, 1] with
// outcome-driven updates, periodic decay toward neutral, and tiering.
package reputation

// failurePenaltyFactor makes failed settlements sting harder than successes
// of the same weight reward.
const failurePenaltyFactor = 1.5

// neutralScore is the midpoint decay pulls every score toward.
const neutralScore = 0.5

// DefaultDecayRate retains 95% of the distance from neutral per decay pass.
const DefaultDecayRate = 0.95

// Tier is a discrete trust label derived from a score.
type Tier int

const (
	TierS Tier = iota
	TierA
	TierB
	TierRiskWarning
)

func (t Tier) String() string {
	switch t {
	case TierS:
		return "S-Tier"
	case TierA:
		return "A-Tier"
	case TierB:
		return "B-Tier"
	default:
		return "Risk-Warning"
	}
}

// Ledger holds the trust scores of every agent seen so far. Not safe for
// concurrent use; the orchestrator is the single writer per tick.
type Ledger struct {
	decayRate float64
	scores    map[string]float64
}

// NewLedger builds a ledger with the given decay retention rate. rate <= 0
// selects DefaultDecayRate.
func NewLedger(decayRate float64) *Ledger {
	if decayRate <= 0 {
		decayRate = DefaultDecayRate
	}
	return &Ledger{
		decayRate: decayRate,
		scores:    make(map[string]float64),
	}
}

// Initialize sets or resets an agent's score.
func (l *Ledger) Initialize(agentID string, score float64) {
	l.scores[agentID] = clamp01(score)
}

// Score returns an agent's current score. Unknown agents read as 1.0, a
// permissive default rather than an error.
func (l *Ledger) Score(agentID string) float64 {
	if score, ok := l.scores[agentID]; ok {
		return score
	}
	return 1.0
}

// Update moves an agent's score by the outcome of one settlement. Success
// closes a fraction weight of the remaining gap to 1.0; failure pulls toward
// zero with a harsher 1.5x penalty weight. Unknown agents are auto-initialized
// at 1.0 before the update. The result stays clamped to [0, 1].
func (l *Ledger) Update(agentID string, success bool, weight float64) float64 {
	current, ok := l.scores[agentID]
	if !ok {
		current = 1.0
	}

	var next float64
	if success {
		next = current + (1.0-current)*weight
	} else {
		next = current - current*(weight*failurePenaltyFactor)
	}

	next = clamp01(next)
	l.scores[agentID] = next
	return next
}

// ApplyTimeDecay drifts every score toward the neutral midpoint 0.5:
// scores above decay down, scores below recover up. Called periodically so
// reputations must be continuously re-earned.
func (l *Ledger) ApplyTimeDecay() {
	for agentID, score := range l.scores {
		l.scores[agentID] = neutralScore + (score-neutralScore)*l.decayRate
	}
}

// TierOf maps an agent's score to its discrete trust tier. Unknown agents
// default to a perfect score and therefore S-Tier.
func (l *Ledger) TierOf(agentID string) Tier {
	score := l.Score(agentID)
	switch {
	case score >= 0.9:
		return TierS
	case score >= 0.7:
		return TierA
	case score >= 0.4:
		return TierB
	default:
		return TierRiskWarning
	}
}

// Scores returns a copy of every tracked score.
func (l *Ledger) Scores() map[string]float64 {
	out := make(map[string]float64, len(l.scores))
	for id, score := range l.scores {
		out[id] = score
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
