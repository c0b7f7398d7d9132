package simulation

import (
	"testing"

	"github.com/kegliz/qcec/checker/simulation/stategen"
	"github.com/kegliz/qcec/circuit"
	"github.com/kegliz/qcec/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdenticalCircuitsAreProbablyEquivalent(t *testing.T) {
	c1, err := circuit.New(circuit.Q(2)).H(0).CNOT(0, 1).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(2)).H(0).CNOT(0, 1).Build()
	require.NoError(t, err)
	ck := New(c1, c2, 0)
	ck.MaxSims = 8
	ck.Seed = 1
	verdict, err := ck.Run()
	require.NoError(t, err)
	assert.True(t, verdict.IsEquivalent(), "got %s", verdict)
}

func TestInjectedBugIsNotEquivalent(t *testing.T) {
	c1, err := circuit.New(circuit.Q(1)).X(0).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(1)).X(0).Z(0).Build()
	require.NoError(t, err)
	ck := New(c1, c2, 0)
	// Within a single computational basis round the relative phase between
	// X and X.Z is only a scalar that looks like a valid global phase; a
	// superposition input exposes it through the fidelity of one round.
	ck.StateType = stategen.Random1QBasis
	ck.MaxSims = 8
	ck.Seed = 1
	ck.StoreCEXInput = true
	ck.StoreCEXOutput = true
	verdict, err := ck.Run()
	require.NoError(t, err)
	assert.Equal(t, result.NotEquivalent, verdict)
	j := ck.JSON()
	assert.Contains(t, j, "cex_input")
	assert.Contains(t, j, "cex_output1")
	assert.Contains(t, j, "cex_output2")
}

func TestGlobalPhaseCountsAsPassingRound(t *testing.T) {
	c1, err := circuit.New(circuit.Q(1)).X(0).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(1)).Z(0).X(0).Z(0).Build()
	require.NoError(t, err)
	ck := New(c1, c2, 0)
	ck.MaxSims = 8
	ck.Seed = 1
	verdict, err := ck.Run()
	require.NoError(t, err)
	assert.Equal(t, result.ProbablyEquivalent, verdict)
	assert.Greater(t, ck.JSON()["up_to_phase_rounds"], 0)
}

func TestInputDependentPhaseIsNotEquivalent(t *testing.T) {
	// An extra Z after an X flips the sign of exactly one basis state's
	// output: each single round looks "equivalent up to phase", but the
	// phases disagree between the |0> and |1> stimuli, which the checker
	// must catch once both have been sampled.
	c1, err := circuit.New(circuit.Q(1)).X(0).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(1)).X(0).Z(0).Build()
	require.NoError(t, err)
	ck := New(c1, c2, 0)
	ck.StateType = stategen.ComputationalBasis
	ck.MaxSims = 4
	ck.Seed = 1
	verdict, err := ck.Run()
	require.NoError(t, err)
	assert.Equal(t, result.NotEquivalent, verdict)
}

func TestZeroMaxSimsYieldsNoInformation(t *testing.T) {
	c1, err := circuit.New(circuit.Q(1)).X(0).Build()
	require.NoError(t, err)
	c2, err := circuit.New(circuit.Q(1)).X(0).Build()
	require.NoError(t, err)
	ck := New(c1, c2, 0)
	ck.MaxSims = 0
	verdict, err := ck.Run()
	require.NoError(t, err)
	assert.Equal(t, result.NoInformation, verdict)
}
