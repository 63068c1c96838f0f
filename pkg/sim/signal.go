package sim

import (
	"time"

	"github.com/OpenTraceLab/OpenTraceSim/pkg/route"
)

// Signal is one logic pulse in flight along a routed wire path. The path
// and its length are fixed at emission; Progress is the traveled fraction
// of the total length.
type Signal struct {
	Wire     string
	Progress float64
	Path     route.Path
	Born     time.Time

	// Endpoint element names, for traces and diagnostics
	From string
	To   string
}

// Position returns the signal's current location on its path.
func (s *Signal) Position() route.Point {
	return s.Path.PointAt(s.Progress)
}
