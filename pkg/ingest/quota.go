package ingest

import (
	"fmt"

	"github.com/japaniel/wordfilter/pkg/dictionary"
)

// Quota policy names accepted by NewPolicy.
const (
	PolicyThreshold = "threshold"
	PolicyUnlimited = "unlimited"
)

// QuotaState is the run-local view of the lookup service's allowance.
// It is never persisted; every run starts unobserved.
type QuotaState struct {
	// Remaining is the last remaining-calls value reported by the service.
	Remaining int
	// Observed is false until the first response arrives.
	Observed bool
	// Calls counts lookups made this run.
	Calls int
}

// QuotaPolicy decides whether another lookup may be issued.
type QuotaPolicy interface {
	Exhausted(QuotaState) bool
}

// Unlimited never halts a run.
type Unlimited struct{}

func (Unlimited) Exhausted(QuotaState) bool { return false }

// Threshold halts once the last observed remaining quota is strictly below Min.
// With Min set to the service's per-window ceiling, the first response that
// reports any consumption stops the run. Observations are not averaged.
type Threshold struct {
	Min int
}

func (t Threshold) Exhausted(s QuotaState) bool {
	return s.Observed && s.Remaining < t.Min
}

// NewPolicy maps a configured policy name to a QuotaPolicy.
func NewPolicy(mode string, min int) (QuotaPolicy, error) {
	switch mode {
	case PolicyThreshold:
		return Threshold{Min: min}, nil
	case PolicyUnlimited:
		return Unlimited{}, nil
	default:
		return nil, fmt.Errorf("unknown quota policy %q", mode)
	}
}

// Quota tracks the allowance across the stages of one run. Ingestion and
// backfill share a Quota so a halt in one also stops the other.
type Quota struct {
	policy QuotaPolicy
	state  QuotaState
}

// NewQuota starts an unobserved quota governed by policy (nil means Unlimited).
func NewQuota(policy QuotaPolicy) *Quota {
	if policy == nil {
		policy = Unlimited{}
	}
	return &Quota{policy: policy}
}

// Observe records the outcome of one lookup. The remaining count is taken from
// every response, whatever its status.
func (q *Quota) Observe(res dictionary.LookupResult) {
	q.state.Calls++
	if res.QuotaObserved {
		q.state.Remaining = res.QuotaRemaining
		q.state.Observed = true
	}
}

// Exhausted reports whether the next lookup must not be issued.
func (q *Quota) Exhausted() bool {
	return q.policy.Exhausted(q.state)
}

// State returns a copy of the current quota view.
func (q *Quota) State() QuotaState {
	return q.state
}
