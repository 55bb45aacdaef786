package buildings

import "mlogpico/logic"

// DefaultMemoryCells is the capacity of a memory-cell block.
const DefaultMemoryCells = 64

// Memory is a bank of numeric cells. Out-of-range reads return null and
// out-of-range writes are dropped.
type Memory struct {
	logic.Unsupported
	cells []float64
}

// NewMemory returns a bank of size cells, or DefaultMemoryCells when size
// is not positive.
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = DefaultMemoryCells
	}
	return &Memory{cells: make([]float64, size)}
}

func (m *Memory) Read(_ *logic.ProcessorState, _ *logic.VM, addr logic.Value) (logic.Value, bool) {
	i, ok := addr.Index()
	if !ok || i >= len(m.cells) {
		return logic.Null, true
	}
	return logic.Num(m.cells[i]), true
}

func (m *Memory) Write(_ *logic.ProcessorState, _ *logic.VM, addr, v logic.Value) logic.Result {
	if i, ok := addr.Index(); ok && i < len(m.cells) {
		m.cells[i] = v.Num()
	}
	return logic.Ok
}

func (m *Memory) Sensor(_ *logic.ProcessorState, _ *logic.VM, a logic.Access) (logic.Value, bool) {
	if a == logic.AccessMemoryCapacity {
		return logic.Num(float64(len(m.cells))), true
	}
	return logic.Null, false
}
