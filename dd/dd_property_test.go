package dd

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/kegliz/qcec/gate"
)

// singleQubitGate picks one of the seven fixed single-qubit gates the
// builtin set defines, applied to qubit q.
func singleQubitGate(name string, q int) gate.Operation {
	switch name {
	case "H":
		return gate.H(q)
	case "X":
		return gate.X(q)
	case "Y":
		return gate.Y(q)
	case "Z":
		return gate.Z(q)
	case "S":
		return gate.S(q)
	case "T":
		return gate.T(q)
	default:
		return gate.Sdg(q)
	}
}

// TestUnitaryDDTimesItsConjugateTransposeIsIdentity checks that
// ConjugateTranspose composed with Multiply recovers the identity for
// any unitary gate DD, across every builtin single-qubit gate and every
// qubit position in a 1-4 qubit package.
func TestUnitaryDDTimesItsConjugateTransposeIsIdentity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	names := []string{"H", "X", "Y", "Z", "S", "T", "Sdg"}

	properties.Property("gate * dagger(gate) == identity", prop.ForAll(
		func(nameIdx, nq, q int) bool {
			name := names[nameIdx%len(names)]
			p := NewPackage(nq, DefaultEps)
			g := p.MakeGateDD(singleQubitGate(name, q%nq))
			prod := p.Multiply(g, p.ConjugateTranspose(g))
			return p.IsCloseToIdentity(prod, 1e-6)
		},
		gen.IntRange(0, 1000),
		gen.IntRange(1, 4),
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t)
}

// TestMultiplyByIdentityIsNoOp checks that multiplying any gate DD by
// make_ident on either side leaves it unchanged up to the closeness
// tolerance, by checking the round trip gate * ident * dagger(gate) is
// again the identity (a cheap way to assert ident acts as a left/right
// unit without needing a separate matrix-equality helper).
func TestMultiplyByIdentityIsNoOp(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	names := []string{"H", "X", "Y", "Z", "S", "T", "Sdg"}

	properties.Property("gate * ident * dagger(gate) == identity", prop.ForAll(
		func(nameIdx, nq, q int) bool {
			name := names[nameIdx%len(names)]
			p := NewPackage(nq, DefaultEps)
			g := p.MakeGateDD(singleQubitGate(name, q%nq))
			ident := p.MakeIdent()
			withIdent := p.Multiply(g, ident)
			prod := p.Multiply(withIdent, p.ConjugateTranspose(g))
			return p.IsCloseToIdentity(prod, 1e-6)
		},
		gen.IntRange(0, 1000),
		gen.IntRange(1, 4),
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t)
}
