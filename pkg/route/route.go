// Package route computes orthogonal wire paths between element ports.
//
// A routed path is the unit against which signal progress is measured:
// a signal at progress t sits at fraction t of the path's total length,
// so visual speed along a wire is decoupled from its pixel distance.
package route

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceSim/pkg/netlist"
)

// Element bounding box, matching the drawn symbol size. Element
// coordinates are the top-left corner of this box.
const (
	ElementWidth  = 60
	ElementHeight = 60
)

// Point is a position in layout coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Path is an ordered polyline from a source port to a destination port
type Path struct {
	Points []Point `json:"points"`
	Length float64 `json:"length"`
}

// OutputAnchor returns the element's output position at the vertical
// center of its right edge. Flip-flop Q outputs use the same anchor.
func OutputAnchor(e netlist.Element) Point {
	return Point{X: e.X + ElementWidth, Y: e.Y + ElementHeight/2}
}

// InputAnchor returns the position of the input port at the given index.
// Flip-flops expose D at quarter height on the left edge, enable at
// three-quarter height, and the clock at bottom center; every other
// element type takes its inputs at the vertical center of the left edge.
func InputAnchor(e netlist.Element, index int) Point {
	if e.Type.IsFlipFlop() {
		switch e.InputRole(index) {
		case netlist.RoleClock:
			return Point{X: e.X + ElementWidth/2, Y: e.Y + ElementHeight}
		case netlist.RoleEnable:
			return Point{X: e.X, Y: e.Y + 0.75*ElementHeight}
		default:
			return Point{X: e.X, Y: e.Y + 0.25*ElementHeight}
		}
	}
	return Point{X: e.X, Y: e.Y + ElementHeight/2}
}

// Route resolves the path for connection c from src to dst: a Manhattan
// route through a single vertical column at the horizontal midpoint
// between the two ports, giving exactly four waypoints and two bends.
func Route(src, dst netlist.Element, c netlist.Connection) Path {
	start := OutputAnchor(src)
	end := InputAnchor(dst, dst.InputIndex(c.Name))
	midX := (start.X + end.X) / 2
	points := []Point{
		start,
		{X: midX, Y: start.Y},
		{X: midX, Y: end.Y},
		end,
	}
	return Path{Points: points, Length: length(points)}
}

func length(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += math.Hypot(points[i].X-points[i-1].X, points[i].Y-points[i-1].Y)
	}
	return total
}

// PointAt returns the position at fraction t of the path's length,
// clamping t to [0, 1].
func (p Path) PointAt(t float64) Point {
	if len(p.Points) == 0 {
		return Point{}
	}
	if t <= 0 || p.Length == 0 {
		return p.Points[0]
	}
	if t >= 1 {
		return p.Points[len(p.Points)-1]
	}
	remaining := t * p.Length
	for i := 1; i < len(p.Points); i++ {
		a, b := p.Points[i-1], p.Points[i]
		seg := math.Hypot(b.X-a.X, b.Y-a.Y)
		if seg == 0 {
			continue
		}
		if remaining <= seg {
			f := remaining / seg
			return Point{X: a.X + f*(b.X-a.X), Y: a.Y + f*(b.Y-a.Y)}
		}
		remaining -= seg
	}
	return p.Points[len(p.Points)-1]
}
