package freeze

import (
	"log"

	"github.com/bnema/wlturbo"

	"github.com/Jappie3/wayfreeze/wlproto"
)

// handlePreferredScale resizes an output's overlay when the server
// advertises a new preferred scale. The viewport maps the captured
// frame's full extent onto the output's logical size, so the overlay
// stays pixel-aligned at any fractional scale. A repeated value is a
// no-op to keep configure/commit cycles from feeding back.
func (f *Freezer) handlePreferredScale(index int, scale uint32) {
	rec := f.outputAt(index)
	if rec == nil || rec.surface == nil || rec.viewport == nil || rec.layerSurface == nil {
		log.Printf("preferred-scale event for output %d before its surface exists", index)
		return
	}
	// A surface starts at scale 1.0, so an unset value compares equal
	// to the denominator.
	current := rec.scale
	if current == 0 {
		current = wlproto.ScaleDenominator
	}
	if current == int32(scale) {
		rec.scale = int32(scale)
		return
	}

	w, h := rec.logicalWidth, rec.logicalHeight
	if err := rec.viewport.SetSource(wlturbo.NewFixed(0), wlturbo.NewFixed(0),
		wlturbo.NewFixed(float64(w)), wlturbo.NewFixed(float64(h))); err != nil {
		log.Printf("viewport source for output %d: %v", index, err)
		return
	}
	if err := rec.viewport.SetDestination(w, h); err != nil {
		log.Printf("viewport destination for output %d: %v", index, err)
		return
	}
	if err := rec.layerSurface.SetSize(uint32(w), uint32(h)); err != nil {
		log.Printf("resizing output %d: %v", index, err)
		return
	}
	if err := rec.surface.Commit(); err != nil {
		log.Printf("committing output %d: %v", index, err)
		return
	}
	rec.scale = int32(scale)
}
