// Package config loads the equivalence checker's runtime configuration:
// which checkers run, the pre-check optimizations applied to each
// circuit, which application scheme paces each checker's gate
// consumption, and the thresholds the simulation/functionality/
// parameterized checks use. Values may be overridden by a YAML file
// (viper) or QCEC_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// ApplicationSchemeName selects which scheme.Scheme paces a checker.
type ApplicationSchemeName string

const (
	SchemeSequential   ApplicationSchemeName = "sequential"
	SchemeOneToOne     ApplicationSchemeName = "one_to_one"
	SchemeProportional ApplicationSchemeName = "proportional"
	SchemeGateCost     ApplicationSchemeName = "gate_cost"
	SchemeLookahead    ApplicationSchemeName = "lookahead"
)

// StateTypeName selects which stategen generator the simulation checker
// samples from.
type StateTypeName string

const (
	StateComputationalBasis StateTypeName = "computational_basis"
	StateRandom1QBasis      StateTypeName = "random_1q_basis"
	StateStabilizer         StateTypeName = "stabilizer"
)

// Execution controls which checkers run and how the manager schedules
// them.
type Execution struct {
	NumericalTolerance float64 `mapstructure:"numerical_tolerance"`
	Parallel           bool    `mapstructure:"parallel"`
	NThreads           int     `mapstructure:"nthreads"`
	TimeoutSeconds     float64 `mapstructure:"timeout_seconds"`

	RunConstructionChecker bool `mapstructure:"run_construction_checker"`
	RunSimulationChecker   bool `mapstructure:"run_simulation_checker"`
	RunAlternatingChecker  bool `mapstructure:"run_alternating_checker"`
	RunZXChecker           bool `mapstructure:"run_zx_checker"`
}

// Optimizations controls the manager's preprocessing pipeline.
type Optimizations struct {
	FixOutputPermutationMismatch     bool `mapstructure:"fix_output_permutation_mismatch"`
	FuseSingleQubitGates             bool `mapstructure:"fuse_single_qubit_gates"`
	ReconstructSWAPs                 bool `mapstructure:"reconstruct_swaps"`
	RemoveDiagonalGatesBeforeMeasure bool `mapstructure:"remove_diagonal_gates_before_measure"`
	TransformDynamicCircuit          bool `mapstructure:"transform_dynamic_circuit"`
	ReorderOperations                bool `mapstructure:"reorder_operations"`
	BackpropagateOutputPermutation   bool `mapstructure:"backpropagate_output_permutation"`
	ElidePermutations                bool `mapstructure:"elide_permutations"`
}

// Application selects and parameterizes each checker's pacing scheme.
type Application struct {
	ConstructionScheme ApplicationSchemeName `mapstructure:"construction_scheme"`
	SimulationScheme   ApplicationSchemeName `mapstructure:"simulation_scheme"`
	AlternatingScheme  ApplicationSchemeName `mapstructure:"alternating_scheme"`
	Profile            string                `mapstructure:"profile"`
}

// Functionality controls the construction/alternating checkers' final
// comparison.
type Functionality struct {
	TraceThreshold          float64 `mapstructure:"trace_threshold"`
	CheckPartialEquivalence bool    `mapstructure:"check_partial_equivalence"`
}

// Simulation controls the power-of-simulation checker.
type Simulation struct {
	FidelityThreshold float64       `mapstructure:"fidelity_threshold"`
	MaxSims           int           `mapstructure:"max_sims"`
	StateType         StateTypeName `mapstructure:"state_type"`
	Seed              int64         `mapstructure:"seed"`
	StoreCEXInput     bool          `mapstructure:"store_cex_input"`
	StoreCEXOutput    bool          `mapstructure:"store_cex_output"`
}

// Parameterized controls re-instantiation of parameterized circuits
// before the other checkers run.
type Parameterized struct {
	Tolerance                 float64 `mapstructure:"tolerance"`
	NAdditionalInstantiations int     `mapstructure:"n_additional_instantiations"`
}

// Configuration is the fully-resolved set of options governing one
// equivalence-checking run.
type Configuration struct {
	Execution     Execution     `mapstructure:"execution"`
	Optimizations Optimizations `mapstructure:"optimizations"`
	Application   Application   `mapstructure:"application"`
	Functionality Functionality `mapstructure:"functionality"`
	Simulation    Simulation    `mapstructure:"simulation"`
	Parameterized Parameterized `mapstructure:"parameterized"`
}

// AnythingToExecute reports whether at least one checker is enabled.
func (c *Configuration) AnythingToExecute() bool {
	e := c.Execution
	return e.RunConstructionChecker || e.RunSimulationChecker || e.RunAlternatingChecker || e.RunZXChecker
}

// OnlySingleTask reports whether exactly one checker is enabled.
func (c *Configuration) OnlySingleTask() bool {
	e := c.Execution
	n := 0
	for _, on := range []bool{e.RunConstructionChecker, e.RunSimulationChecker, e.RunAlternatingChecker, e.RunZXChecker} {
		if on {
			n++
		}
	}
	return n == 1
}

// OnlyZXCheckerConfigured reports whether the ZX checker is the sole
// enabled checker.
func (c *Configuration) OnlyZXCheckerConfigured() bool {
	e := c.Execution
	return e.RunZXChecker && !e.RunConstructionChecker && !e.RunSimulationChecker && !e.RunAlternatingChecker
}

// OnlySimulationCheckerConfigured reports whether the simulation checker
// is the sole enabled checker.
func (c *Configuration) OnlySimulationCheckerConfigured() bool {
	e := c.Execution
	return e.RunSimulationChecker && !e.RunConstructionChecker && !e.RunZXChecker && !e.RunAlternatingChecker
}

// computeMaxSims picks the simulation-round cap: NumCPU minus the 2
// threads reserved for the other default-enabled checkers, but never
// fewer than 16.
func computeMaxSims() int {
	const defaultMaxSims = 16
	const reserved = 2
	threads := runtime.NumCPU()
	if threads < reserved {
		return defaultMaxSims
	}
	if threads-reserved > defaultMaxSims {
		return threads - reserved
	}
	return defaultMaxSims
}

// Default returns the built-in configuration.
func Default() *Configuration {
	threads := runtime.NumCPU()
	if threads < 2 {
		threads = 2
	}
	return &Configuration{
		Execution: Execution{
			NumericalTolerance:     2e-13,
			Parallel:               true,
			NThreads:               threads,
			TimeoutSeconds:         0,
			RunConstructionChecker: false,
			RunSimulationChecker:   true,
			RunAlternatingChecker:  true,
			RunZXChecker:           true,
		},
		Optimizations: Optimizations{
			FixOutputPermutationMismatch:     false,
			FuseSingleQubitGates:             true,
			ReconstructSWAPs:                 true,
			RemoveDiagonalGatesBeforeMeasure: false,
			TransformDynamicCircuit:          false,
			ReorderOperations:                true,
			BackpropagateOutputPermutation:   false,
			ElidePermutations:                true,
		},
		Application: Application{
			ConstructionScheme: SchemeProportional,
			SimulationScheme:   SchemeProportional,
			AlternatingScheme:  SchemeProportional,
			Profile:            "",
		},
		Functionality: Functionality{
			TraceThreshold:          1e-8,
			CheckPartialEquivalence: false,
		},
		Simulation: Simulation{
			FidelityThreshold: 1e-8,
			MaxSims:           computeMaxSims(),
			StateType:         StateComputationalBasis,
			Seed:              0,
			StoreCEXInput:     false,
			StoreCEXOutput:    false,
		},
		Parameterized: Parameterized{
			Tolerance:                 1e-12,
			NAdditionalInstantiations: 0,
		},
	}
}

// Load resolves a Configuration from (in increasing priority) built-in
// defaults, an optional YAML file at path (ignored if empty or missing),
// and QCEC_-prefixed environment variables.
func Load(path string) (*Configuration, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("QCEC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config: reading %s: %w", path, err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling: %w", err)
	}
	return cfg, nil
}
