// Package result defines the outcome vocabulary every checker and the
// manager report through: the EquivalenceCriterion enum and the Results
// envelope that a cmd/qcecd handler marshals back over HTTP.
package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// EquivalenceCriterion is the seven-valued verdict shared by every
// checker: checkers never invent new values, and the manager's
// fallback/aggregation logic switches on these constants.
type EquivalenceCriterion int

const (
	NoInformation EquivalenceCriterion = iota
	Equivalent
	NotEquivalent
	EquivalentUpToGlobalPhase
	EquivalentUpToPhase
	ProbablyEquivalent
	ProbablyNotEquivalent
)

var names = [...]string{
	"no_information",
	"equivalent",
	"not_equivalent",
	"equivalent_up_to_global_phase",
	"equivalent_up_to_phase",
	"probably_equivalent",
	"probably_not_equivalent",
}

func (c EquivalenceCriterion) String() string {
	if int(c) < 0 || int(c) >= len(names) {
		return "unknown"
	}
	return names[c]
}

// FromString parses the wire/CLI form produced by String().
func FromString(s string) (EquivalenceCriterion, error) {
	for i, n := range names {
		if n == s {
			return EquivalenceCriterion(i), nil
		}
	}
	return NoInformation, fmt.Errorf("result: unknown equivalence criterion %q", s)
}

func (c EquivalenceCriterion) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *EquivalenceCriterion) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := FromString(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// IsEquivalent reports whether the criterion is one of the "yes" family,
// possibly up to a benign phase.
func (c EquivalenceCriterion) IsEquivalent() bool {
	switch c {
	case Equivalent, EquivalentUpToGlobalPhase, EquivalentUpToPhase, ProbablyEquivalent:
		return true
	default:
		return false
	}
}

// Results is the JSON envelope returned by manager.Run and by the
// POST /v1/verify HTTP handler.
type Results struct {
	ID            string `json:"id,omitempty"`
	EngineVersion string `json:"engine_version,omitempty"`

	Criterion      EquivalenceCriterion `json:"equivalence"`
	CheckerUsed    string               `json:"checker"`
	Qubits         int                  `json:"qubits"`
	PreprocessTime time.Duration        `json:"preprocess_time_ns"`
	CheckTime      time.Duration        `json:"check_time_ns"`
	Timeout        bool                 `json:"timeout"`
	CounterExample string               `json:"counterexample,omitempty"`
	Message        string               `json:"message,omitempty"`
	Performed      []CheckerRun         `json:"performed_checks,omitempty"`
	Warnings       []string             `json:"warnings,omitempty"`
}

// CheckerRun records one checker's individual verdict; the manager appends
// one entry per checker it actually ran before settling on the aggregate
// Results.Criterion (useful when several checkers race and disagree due to
// a bug, or simply to show the caller which fallback path was taken).
type CheckerRun struct {
	Name      string               `json:"name"`
	Criterion EquivalenceCriterion `json:"equivalence"`
	Duration  time.Duration        `json:"duration_ns"`
	Err       string               `json:"error,omitempty"`
	Details   map[string]any       `json:"details,omitempty"`
}

// Sentinel errors forming the error taxonomy. Checkers
// and the manager wrap these with fmt.Errorf("...: %w", ...) so callers can
// errors.Is against a stable set while still getting a specific message.
var (
	ErrUsage                     = errors.New("qcec: usage error")
	ErrUnsupportedDynamicCircuit = errors.New("qcec: dynamic circuit not supported by this checker")
	ErrUnsupportedByChecker      = errors.New("qcec: operation not supported by this checker")
	ErrQubitCountMismatch        = errors.New("qcec: circuits have different qubit counts")
	ErrTimeout                   = errors.New("qcec: equivalence check timed out")
	ErrInternal                  = errors.New("qcec: internal error")
)
