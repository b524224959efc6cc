package batch

import "errors"

// DropReason classifies why a draw command produced no instance.
type DropReason int

const (
	DropUnknownMaterial DropReason = iota
	DropAtlasBounds
	DropPaletteRow
	DropDepthRange
	DropCapacity
	dropReasonCount
)

// String returns the reason name used in diagnostics.
func (r DropReason) String() string {
	switch r {
	case DropUnknownMaterial:
		return "unknown material"
	case DropAtlasBounds:
		return "atlas bounds"
	case DropPaletteRow:
		return "palette row"
	case DropDepthRange:
		return "depth range"
	case DropCapacity:
		return "capacity"
	default:
		return "unknown"
	}
}

// Validation errors reported for dropped commands. Wrapped errors carry the command index and kind.
var (
	ErrUnknownMaterial = errors.New("unknown material")
	ErrAtlasBounds     = errors.New("sprite rectangle outside atlas")
	ErrPaletteRow      = errors.New("palette row out of range")
	ErrDyeRow          = errors.New("dye row out of range")
	ErrDepthRange      = errors.New("depth key outside the renderable range")
)

// Stats counts what happened to the commands of the most recent Build.
type Stats struct {
	Commands   int
	Instances  int
	Groups     int
	Culled     int
	DyeCleared int
	Dropped    [dropReasonCount]int
}

// DroppedTotal returns the number of commands dropped for any reason.
func (s Stats) DroppedTotal() int {
	total := 0
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Commands += o.Commands
	s.Instances += o.Instances
	s.Groups += o.Groups
	s.Culled += o.Culled
	s.DyeCleared += o.DyeCleared
	for i := range s.Dropped {
		s.Dropped[i] += o.Dropped[i]
	}
}
