package manager

import (
	"context"
	"testing"
	"time"

	"github.com/kegliz/qcec/circuit"
	"github.com/kegliz/qcec/internal/config"
	"github.com/kegliz/qcec/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quickConfig() *config.Configuration {
	cfg := config.Default()
	cfg.Execution.Parallel = false
	cfg.Execution.RunConstructionChecker = true
	cfg.Simulation.MaxSims = 4
	cfg.Simulation.Seed = 1
	return cfg
}

// Scenario 1: Bell-pair equality, all checkers agree.
func TestBellPairEquality(t *testing.T) {
	build := func() *circuit.Circuit {
		c, err := circuit.New(circuit.Q(2)).H(0).CNOT(0, 1).Build()
		require.NoError(t, err)
		return c
	}
	c1, c2 := build(), build()

	m, err := New(c1, c2, quickConfig(), nil)
	require.NoError(t, err)
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Criterion.IsEquivalent(), "got %s", res.Criterion)
	for _, cr := range res.Performed {
		assert.True(t, cr.Criterion.IsEquivalent(), "checker %s returned %s", cr.Name, cr.Criterion)
	}
}

// Scenario 2: Bell-pair with an injected global phase.
func TestBellPairWithGlobalPhase(t *testing.T) {
	c1, err := circuit.New(circuit.Q(2)).H(0).CNOT(0, 1).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(2)).H(0).CNOT(0, 1).Z(0).X(0).Z(0).X(0).Build()
	require.NoError(t, err)

	cfg := quickConfig()
	m, err := New(c1, c2, cfg, nil)
	require.NoError(t, err)
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Criterion.IsEquivalent(), "got %s", res.Criterion)
}

// Scenario 3: a CNOT expressed in the reversed-control basis.
func TestCNOTDirectionReversal(t *testing.T) {
	c1, err := circuit.New(circuit.Q(2)).CNOT(0, 1).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(2)).H(0).H(1).CNOT(1, 0).H(0).H(1).Build()
	require.NoError(t, err)

	m, err := New(c1, c2, quickConfig(), nil)
	require.NoError(t, err)
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Criterion.IsEquivalent(), "got %s", res.Criterion)
}

// Scenario 4: an extra Z gate must be caught as NotEquivalent.
func TestInjectedPhaseBugIsNotEquivalent(t *testing.T) {
	c1, err := circuit.New(circuit.Q(1)).X(0).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(1)).X(0).Z(0).Build()
	require.NoError(t, err)

	cfg := quickConfig()
	cfg.Execution.RunConstructionChecker = false
	cfg.Execution.RunZXChecker = false
	cfg.Simulation.StateType = config.StateComputationalBasis
	m, err := New(c1, c2, cfg, nil)
	require.NoError(t, err)
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.NotEquivalent, res.Criterion)
}

// Scenario 6: a trailing SWAP folded into the output
// permutation versus an explicit index remap should both read Equivalent.
func TestOutputPermutationMismatchElided(t *testing.T) {
	c1, err := circuit.New(circuit.Q(2)).X(0).X(1).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(2)).X(1).X(0).SWAP(0, 1).Build()
	require.NoError(t, err)

	cfg := quickConfig()
	cfg.Optimizations.ElidePermutations = true
	m, err := New(c1, c2, cfg, nil)
	require.NoError(t, err)
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Criterion.IsEquivalent(), "got %s", res.Criterion)
}

// Boundary: two empty circuits are trivially equivalent.
func TestEmptyCircuitsAreEquivalent(t *testing.T) {
	c1, err := circuit.New(circuit.Q(1)).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(1)).Build()
	require.NoError(t, err)

	m, err := New(c1, c2, quickConfig(), nil)
	require.NoError(t, err)
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Criterion.IsEquivalent(), "got %s", res.Criterion)
}

// Boundary: one empty circuit vs a self-cancelling sequence.
func TestEmptyVsSelfCancellingIsEquivalent(t *testing.T) {
	c1, err := circuit.New(circuit.Q(1)).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(1)).X(0).X(0).Build()
	require.NoError(t, err)

	m, err := New(c1, c2, quickConfig(), nil)
	require.NoError(t, err)
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Criterion.IsEquivalent(), "got %s", res.Criterion)
}

// Scenario 5: a tiny timeout must yield NoInformation unless a checker
// already settled on an equivalent verdict, and Run must return promptly
// regardless of how large the circuits are.
func TestTimeoutYieldsNoInformation(t *testing.T) {
	b1 := circuit.New(circuit.Q(2))
	b2 := circuit.New(circuit.Q(2))
	for i := 0; i < 4000; i++ {
		b1.H(0).CNOT(0, 1)
		b2.H(0).CNOT(0, 1)
	}
	c1, err := b1.Build()
	require.NoError(t, err)
	c2, err := b2.Build()
	require.NoError(t, err)

	cfg := quickConfig()
	cfg.Execution.TimeoutSeconds = 0.001
	cfg.Execution.Parallel = true
	cfg.Simulation.MaxSims = 64

	m, err := New(c1, c2, cfg, nil)
	require.NoError(t, err)

	done := make(chan *result.Results, 1)
	go func() {
		res, _ := m.Run(context.Background())
		done <- res
	}()
	select {
	case res := <-done:
		assert.True(t, res.Timeout || res.Criterion.IsEquivalent())
		if !res.Criterion.IsEquivalent() {
			assert.Equal(t, result.NoInformation, res.Criterion)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("manager.Run did not return after the configured timeout")
	}
}

func TestDisablingAllCheckersYieldsNoInformation(t *testing.T) {
	c1, err := circuit.New(circuit.Q(1)).X(0).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(1)).X(0).Build()
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Execution.RunAlternatingChecker = false
	cfg.Execution.RunSimulationChecker = false
	cfg.Execution.RunZXChecker = false
	cfg.Execution.RunConstructionChecker = false

	m, err := New(c1, c2, cfg, nil)
	require.NoError(t, err)
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.NoInformation, res.Criterion)
}

func TestLookaheadConstructionSchemeIsUsageError(t *testing.T) {
	c1, err := circuit.New(circuit.Q(1)).X(0).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(1)).X(0).Build()
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Application.ConstructionScheme = config.SchemeLookahead
	_, err = New(c1, c2, cfg, nil)
	assert.ErrorIs(t, err, result.ErrUsage)
}
