package app

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kegliz/qcec/circuit"
	"github.com/kegliz/qcec/manager"
)

// GateSpec is one program-order operation in a VerifyRequest circuit.
type GateSpec struct {
	Type   string    `json:"type"`
	Qubits []int     `json:"qubits"`
	Params []float64 `json:"params,omitempty"`
	Step   int       `json:"step"`
}

// CircuitSpec describes one side of the equivalence check.
type CircuitSpec struct {
	Qubits    int        `json:"qubits"`
	Gates     []GateSpec `json:"gates"`
	Ancillary []int      `json:"ancillary,omitempty"`
	Garbage   []int      `json:"garbage,omitempty"`
}

// VerifyRequest is the POST /v1/verify request body.
type VerifyRequest struct {
	Circuit1 CircuitSpec `json:"circuit1"`
	Circuit2 CircuitSpec `json:"circuit2"`

	TimeoutSeconds float64 `json:"timeout_seconds,omitempty"`
	Parallel       *bool   `json:"parallel,omitempty"`
}

var badRequestErrorMsg = "Bad Request - please contact the administrator"
var internalServerErrorMsg = "Internal Server Error - please contact the administrator"

// RootHandler is the handler for the / endpoint
func (a *appServer) RootHandler(c *gin.Context) {
	l, err := a.getLoggerFromContext(c)
	if err != nil {
		panic("logger not found in context")
	}
	l.Debug().Msg("serving root endpoint")
	c.JSON(http.StatusOK, gin.H{"service": "qcec", "version": a.version})
}

// HealthHandler is the handler for the /health endpoint
func (a *appServer) HealthHandler(c *gin.Context) {
	l, err := a.getLoggerFromContext(c)
	if err != nil {
		panic("logger not found in context")
	}
	l.Debug().Msg("serving health endpoint")
	c.String(http.StatusOK, "OK")
}

// VerifyCircuits is the handler for POST /v1/verify: it builds both
// circuits from the request body, runs the manager with the server's
// base Configuration (overridden by the request's timeout/parallel
// fields, if given), and returns result.Results as JSON.
func (a *appServer) VerifyCircuits(c *gin.Context) {
	l, err := a.getLoggerFromContext(c)
	if err != nil {
		panic("logger not found in context")
	}
	l.Debug().Msg("serving verify endpoint")

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Error().Err(err).Msg("binding JSON failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	c1, err := buildCircuitFromSpec(&req.Circuit1)
	if err != nil {
		l.Error().Err(err).Msg("building circuit1 failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "circuit1: " + err.Error()})
		return
	}
	c2, err := buildCircuitFromSpec(&req.Circuit2)
	if err != nil {
		l.Error().Err(err).Msg("building circuit2 failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "circuit2: " + err.Error()})
		return
	}

	cfg := *a.cfg
	if req.TimeoutSeconds > 0 {
		cfg.Execution.TimeoutSeconds = req.TimeoutSeconds
	}
	if req.Parallel != nil {
		cfg.Execution.Parallel = *req.Parallel
	}

	m, err := manager.New(c1, c2, &cfg, l)
	if err != nil {
		l.Error().Err(err).Msg("manager setup failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := m.Run(c.Request.Context())
	if err != nil {
		l.Error().Err(err).Msg("equivalence check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalServerErrorMsg})
		return
	}

	c.JSON(http.StatusOK, res)
}

// buildCircuitFromSpec converts a CircuitSpec into a circuit.Circuit,
// validating each gate's arity along the way.
func buildCircuitFromSpec(spec *CircuitSpec) (*circuit.Circuit, error) {
	b := circuit.New(circuit.Q(spec.Qubits), circuit.C(spec.Qubits))

	for _, g := range spec.Gates {
		if err := applyGate(b, g); err != nil {
			return nil, err
		}
	}
	for _, q := range spec.Ancillary {
		b.MarkAncillary(q)
	}
	for _, q := range spec.Garbage {
		b.MarkGarbage(q)
	}
	return b.Build()
}

func applyGate(b circuit.Builder, g GateSpec) error {
	arity := func(n int) error {
		if len(g.Qubits) != n {
			return fmt.Errorf("%s gate requires exactly %d qubit(s), got %d", g.Type, n, len(g.Qubits))
		}
		return nil
	}
	param := func(i int) float64 {
		if i < len(g.Params) {
			return g.Params[i]
		}
		return 0
	}

	switch g.Type {
	case "H":
		if err := arity(1); err != nil {
			return err
		}
		b.H(g.Qubits[0])
	case "X":
		if err := arity(1); err != nil {
			return err
		}
		b.X(g.Qubits[0])
	case "Y":
		if err := arity(1); err != nil {
			return err
		}
		b.Y(g.Qubits[0])
	case "Z":
		if err := arity(1); err != nil {
			return err
		}
		b.Z(g.Qubits[0])
	case "S":
		if err := arity(1); err != nil {
			return err
		}
		b.S(g.Qubits[0])
	case "SDG":
		if err := arity(1); err != nil {
			return err
		}
		b.Sdg(g.Qubits[0])
	case "T":
		if err := arity(1); err != nil {
			return err
		}
		b.T(g.Qubits[0])
	case "TDG":
		if err := arity(1); err != nil {
			return err
		}
		b.Tdg(g.Qubits[0])
	case "RX":
		if err := arity(1); err != nil {
			return err
		}
		b.RX(g.Qubits[0], param(0))
	case "RY":
		if err := arity(1); err != nil {
			return err
		}
		b.RY(g.Qubits[0], param(0))
	case "RZ":
		if err := arity(1); err != nil {
			return err
		}
		b.RZ(g.Qubits[0], param(0))
	case "CNOT", "CX":
		if err := arity(2); err != nil {
			return err
		}
		b.CNOT(g.Qubits[0], g.Qubits[1])
	case "CZ":
		if err := arity(2); err != nil {
			return err
		}
		b.CZ(g.Qubits[0], g.Qubits[1])
	case "SWAP":
		if err := arity(2); err != nil {
			return err
		}
		b.SWAP(g.Qubits[0], g.Qubits[1])
	case "TOFFOLI", "CCX":
		if err := arity(3); err != nil {
			return err
		}
		b.Toffoli(g.Qubits[0], g.Qubits[1], g.Qubits[2])
	case "FREDKIN", "CSWAP":
		if err := arity(3); err != nil {
			return err
		}
		b.Fredkin(g.Qubits[0], g.Qubits[1], g.Qubits[2])
	case "MEASURE":
		if err := arity(1); err != nil {
			return err
		}
		b.Measure(g.Qubits[0], g.Qubits[0])
	default:
		return fmt.Errorf("unsupported gate type: %s", g.Type)
	}
	return nil
}
