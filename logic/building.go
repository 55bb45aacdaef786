package logic

import "fmt"

// Point is a building position on the logic grid.
type Point struct {
	X, Y int16
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Block describes a kind of building.
type Block struct {
	Name string
	ID   int
	Size int
	// Range is the link range in tiles. Zero means unlimited.
	Range float64
}

// Building is one placed block plus the device that implements its behavior.
type Building struct {
	Block    *Block
	Position Point
	Device   Device

	proc *Processor
}

// Processor returns the processor running in this building, if any.
func (b *Building) Processor() *Processor { return b.proc }

func (b *Building) String() string {
	name := "?"
	if b.Block != nil {
		name = b.Block.Name
	}
	return fmt.Sprintf("%s@%s", name, b.Position)
}
