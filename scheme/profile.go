package scheme

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kegliz/qcec/gate"
)

// CostProfile is a CostFunction backed by a loaded table keyed on
// (gate identifier, number of controls), falling back to cost 1 for any
// combination the table doesn't mention and reporting it through the
// OnWarn hook, if one is set.
type CostProfile struct {
	table  map[profileKey]int
	onWarn func(gate string, nControls int)
}

type profileKey struct {
	gate      string
	nControls int
}

// LoadProfile parses a gate-cost profile file: one
// record per line, "<gate_identifier> <n_controls> <integer_cost>",
// blank lines and lines starting with '#' ignored. Unknown (gate,
// n_controls) pairs encountered later at Cost-time fall back to cost 1
// and are reported through the hook set with OnWarn, if any.
func LoadProfile(path string) (*CostProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scheme: loading cost profile %s: %w", path, err)
	}
	defer f.Close()

	p := &CostProfile{table: make(map[profileKey]int)}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("scheme: %s:%d: expected \"<gate> <n_controls> <cost>\", got %q", path, lineNo, line)
		}
		nControls, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("scheme: %s:%d: bad control count %q: %w", path, lineNo, fields[1], err)
		}
		cost, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("scheme: %s:%d: bad cost %q: %w", path, lineNo, fields[2], err)
		}
		p.table[profileKey{strings.ToUpper(fields[0]), nControls}] = cost
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scheme: reading %s: %w", path, err)
	}
	return p, nil
}

// OnWarn overrides the callback invoked for an unmatched (gate,
// n_controls) pair; by default LoadProfile callers get a silent
// fallback to cost 1 unless they wire a logger in through this hook
// (the manager does, when it builds a GateCost scheme from a profile).
func (p *CostProfile) OnWarn(fn func(gate string, nControls int)) { p.onWarn = fn }

// CostFunc adapts the profile into a scheme.CostFunction, matching
// unknown gate identifiers against cost 1 and invoking the profile's
// warn hook.
func (p *CostProfile) CostFunc() CostFunction {
	return func(op gate.Operation) int {
		key := profileKey{strings.ToUpper(op.Type()), len(op.Controls())}
		if cost, ok := p.table[key]; ok {
			return cost
		}
		if p.onWarn != nil {
			p.onWarn(op.Type(), len(op.Controls()))
		}
		return 1
	}
}
