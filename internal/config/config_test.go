package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesDocumentedDefaults(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.Execution.RunConstructionChecker)
	assert.True(t, cfg.Execution.RunSimulationChecker)
	assert.True(t, cfg.Execution.RunAlternatingChecker)
	assert.True(t, cfg.Execution.RunZXChecker)
	assert.True(t, cfg.Optimizations.FuseSingleQubitGates)
	assert.True(t, cfg.Optimizations.ElidePermutations)
	assert.Equal(t, SchemeProportional, cfg.Application.ConstructionScheme)
	assert.Equal(t, 1e-8, cfg.Functionality.TraceThreshold)
	assert.Equal(t, 1e-8, cfg.Simulation.FidelityThreshold)
	assert.GreaterOrEqual(t, cfg.Simulation.MaxSims, 16)
}

func TestAnythingToExecute(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.AnythingToExecute())

	cfg.Execution.RunSimulationChecker = false
	cfg.Execution.RunAlternatingChecker = false
	cfg.Execution.RunZXChecker = false
	assert.False(t, cfg.AnythingToExecute())
}

func TestOnlySingleTask(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.OnlySingleTask())

	cfg.Execution.RunSimulationChecker = false
	cfg.Execution.RunAlternatingChecker = false
	assert.True(t, cfg.OnlySingleTask())
	assert.True(t, cfg.OnlyZXCheckerConfigured())
}

func TestLoadWithNoFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Simulation.FidelityThreshold, cfg.Simulation.FidelityThreshold)
}
