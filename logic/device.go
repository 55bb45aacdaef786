package logic

// Result is the outcome of an instruction or a device hook.
type Result uint8

const (
	// Ok continues with the next instruction in the same tick.
	Ok Result = iota
	// Yield stops the processor for the rest of the current tick.
	Yield
)

func (r Result) String() string {
	if r == Yield {
		return "yield"
	}
	return "ok"
}

// Device is the capability interface implemented by hardware-backed buildings.
//
// Every hook runs synchronously inside a VM tick and must be bounded: work
// that may block returns Yield and is finished by a routine outside the VM.
// The bool result of Read and Sensor is false when the hook does not handle
// the request; the VM then falls back to its default behavior.
type Device interface {
	Read(st *ProcessorState, vm *VM, addr Value) (Value, bool)
	Write(st *ProcessorState, vm *VM, addr, v Value) Result
	Sensor(st *ProcessorState, vm *VM, a Access) (Value, bool)
	DrawFlush(st *ProcessorState, vm *VM) Result
	PrintFlush(st *ProcessorState, vm *VM) Result
}

// Unsupported provides no-op defaults for every Device hook.
// Bindings embed it and override only what they support.
type Unsupported struct{}

func (Unsupported) Read(*ProcessorState, *VM, Value) (Value, bool)    { return Null, false }
func (Unsupported) Write(*ProcessorState, *VM, Value, Value) Result   { return Ok }
func (Unsupported) Sensor(*ProcessorState, *VM, Access) (Value, bool) { return Null, false }
func (Unsupported) DrawFlush(*ProcessorState, *VM) Result             { return Ok }
func (Unsupported) PrintFlush(*ProcessorState, *VM) Result            { return Ok }
