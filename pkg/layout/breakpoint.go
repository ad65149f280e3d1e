// Package layout computes card positions for a fixed viewport width.
//
// Two engines share the card model: Engine packs cards into the shortest
// column (masonry), and Pile scatters them with seeded pseudo-random
// rotations and offsets. Both are pure given their inputs; heights come
// from a Measurer so the package never touches a DOM or a network.
package layout

// Breakpoint holds the column parameters resolved for a viewport width.
type Breakpoint struct {
	Columns int
	Gap     float64 // px between columns and between stacked cards
}

// Resolve maps a viewport width in CSS pixels to column parameters.
//
// Widths up to 767px get a single column with a 16px gap; anything wider
// gets two columns with a 24px gap. There is no upper bound.
func Resolve(viewportWidth float64) Breakpoint {
	if viewportWidth <= 767 {
		return Breakpoint{Columns: 1, Gap: 16}
	}
	return Breakpoint{Columns: 2, Gap: 24}
}

// DeviceClass is the breakpoint bucket driving scatter parameters.
type DeviceClass int

const (
	Mobile DeviceClass = iota
	Tablet
	Desktop
)

// String returns the lowercase class name.
func (d DeviceClass) String() string {
	switch d {
	case Mobile:
		return "mobile"
	case Tablet:
		return "tablet"
	case Desktop:
		return "desktop"
	}
	return "unknown"
}

// ClassFor maps a viewport width in CSS pixels to a device class.
// Mobile is below 768px, tablet runs to 1023px, desktop is 1024px and up.
func ClassFor(viewportWidth float64) DeviceClass {
	switch {
	case viewportWidth < 768:
		return Mobile
	case viewportWidth < 1024:
		return Tablet
	default:
		return Desktop
	}
}
