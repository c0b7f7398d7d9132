package scheme

import (
	"testing"

	"github.com/kegliz/qcec/gate"
	"github.com/stretchr/testify/assert"
)

type fakeAdvancer struct {
	ops []gate.Operation
}

func (f *fakeAdvancer) Remaining() int { return len(f.ops) }
func (f *fakeAdvancer) PeekNext() (gate.Operation, bool) {
	if len(f.ops) == 0 {
		return nil, false
	}
	return f.ops[0], true
}

func TestSequentialDrainsLeftFirst(t *testing.T) {
	left := &fakeAdvancer{ops: []gate.Operation{gate.H(0), gate.X(0)}}
	right := &fakeAdvancer{ops: []gate.Operation{gate.H(0)}}
	l, r := Sequential{}.Steps(left, right)
	assert.Equal(t, 2, l)
	assert.Equal(t, 0, r)
}

func TestOneToOneAdvancesBothByOne(t *testing.T) {
	left := &fakeAdvancer{ops: []gate.Operation{gate.H(0), gate.X(0)}}
	right := &fakeAdvancer{ops: []gate.Operation{gate.H(0)}}
	l, r := OneToOne{}.Steps(left, right)
	assert.Equal(t, 1, l)
	assert.Equal(t, 1, r)
}

func TestGateCostPairsLeftOpWithItsCost(t *testing.T) {
	left := &fakeAdvancer{ops: []gate.Operation{gate.Toffoli(0, 1, 2)}}
	right := &fakeAdvancer{ops: []gate.Operation{gate.H(0), gate.H(1), gate.CNOT(0, 1), gate.H(0)}}
	l, r := NewGateCost(DefaultCostFunction).Steps(left, right)
	assert.Equal(t, 1, l)
	assert.Equal(t, DefaultCostFunction(gate.Toffoli(0, 1, 2)), r)
}

func TestGateCostDrainsRightOnceLeftIsDone(t *testing.T) {
	left := &fakeAdvancer{}
	right := &fakeAdvancer{ops: []gate.Operation{gate.H(0), gate.H(1)}}
	l, r := NewGateCost(DefaultCostFunction).Steps(left, right)
	assert.Equal(t, 0, l)
	assert.Equal(t, 2, r)
}

func TestProportionalAdvancesLargerSideByRatio(t *testing.T) {
	left := &fakeAdvancer{ops: make([]gate.Operation, 3)}
	right := &fakeAdvancer{ops: make([]gate.Operation, 9)}
	for i := range left.ops {
		left.ops[i] = gate.H(0)
	}
	for i := range right.ops {
		right.ops[i] = gate.H(0)
	}
	l, r := Proportional{}.Steps(left, right)
	assert.Equal(t, 1, l)
	assert.Equal(t, 3, r)
}

func TestProportionalBalancedCircuitsStepOneToOne(t *testing.T) {
	left := &fakeAdvancer{ops: []gate.Operation{gate.H(0), gate.X(0)}}
	right := &fakeAdvancer{ops: []gate.Operation{gate.H(0), gate.X(0)}}
	l, r := Proportional{}.Steps(left, right)
	assert.Equal(t, 1, l)
	assert.Equal(t, 1, r)
}

func TestDefaultCostFunctionGrowsWithSpan(t *testing.T) {
	assert.Less(t, DefaultCostFunction(gate.H(0)), DefaultCostFunction(gate.CNOT(0, 1)))
	assert.Less(t, DefaultCostFunction(gate.CNOT(0, 1)), DefaultCostFunction(gate.Toffoli(0, 1, 2)))
}
