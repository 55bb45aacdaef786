// Package buildings binds board peripherals to the logic VM as buildings.
package buildings

import "mlogpico/logic"

// Block kinds placed by the firmware. IDs are negative so they never collide
// with stock block IDs.
var (
	Processor = &logic.Block{Name: "pico-processor", ID: -1, Size: 1}
	GPIOBlock = &logic.Block{Name: "gpio", ID: -2, Size: 1}
	UARTBlock = &logic.Block{Name: "uart", ID: -3, Size: 1}
	// SerialBlock is the USB CDC serial port.
	SerialBlock  = &logic.Block{Name: "serial", ID: -4, Size: 1}
	DisplayBlock = &logic.Block{Name: "st7789vw-display", ID: -5, Size: 1}
	MemoryBlock  = &logic.Block{Name: "memory-cell", ID: -6, Size: 1}
)
