package freeze

import (
	"fmt"
	"log"

	"github.com/Jappie3/wayfreeze/wlproto"
)

// createOverlays builds the presentation side for every output: an
// overlay-layer surface anchored to all four edges with an exclusive
// keyboard grab, plus the viewport and fractional-scale subscription
// that keep the frame mapped 1:1 onto the output.
func (f *Freezer) createOverlays() error {
	log.Printf("> Creating %d layer surface(s)", len(f.outputs))

	for _, rec := range f.outputs {
		if rec.surface == nil {
			return fmt.Errorf("output %d has no surface", rec.index)
		}
		ls, err := f.newLayerSurface(rec.surface, rec.output, rec.index)
		if err != nil {
			return fmt.Errorf("layer surface for output %d: %w", rec.index, err)
		}
		if err := ls.SetAnchor(wlproto.AnchorAll); err != nil {
			return fmt.Errorf("anchoring output %d: %w", rec.index, err)
		}
		if err := ls.SetExclusiveZone(-1); err != nil {
			return fmt.Errorf("exclusive zone for output %d: %w", rec.index, err)
		}
		if err := ls.SetKeyboardInteractivity(wlproto.KeyboardInteractivityExclusive); err != nil {
			return fmt.Errorf("keyboard grab for output %d: %w", rec.index, err)
		}
		rec.layerSurface = ls
	}

	// The initial commit (no buffer yet) asks the server for a
	// configure; the viewport and scale subscription ride along.
	for _, rec := range f.outputs {
		if err := rec.surface.Commit(); err != nil {
			return fmt.Errorf("committing output %d: %w", rec.index, err)
		}
		vp, err := f.newViewport(rec.surface)
		if err != nil {
			return fmt.Errorf("viewport for output %d: %w", rec.index, err)
		}
		rec.viewport = vp
		sub, err := f.newScaleSub(rec.surface, rec.index)
		if err != nil {
			return fmt.Errorf("scale subscription for output %d: %w", rec.index, err)
		}
		rec.scaleSub = sub
	}
	return nil
}

// handleConfigure acknowledges the first configure for an output's
// layer surface; later configures for the same surface are left
// unacknowledged. Presentation happens once the frame is also ready.
func (f *Freezer) handleConfigure(index int, serial uint32) {
	rec := f.outputAt(index)
	if rec == nil || rec.layerSurface == nil {
		log.Printf("configure for unknown output %d", index)
		return
	}
	if rec.configured {
		return
	}
	if err := rec.layerSurface.AckConfigure(serial); err != nil {
		log.Printf("acknowledging configure for output %d: %v", index, err)
		return
	}
	rec.configured = true
	rec.configuredSerial = serial
	if rec.frameReady {
		f.present(rec)
	}
}

// present attaches the captured frame to the output's surface and
// commits it. It runs once per output, from whichever of configure or
// frame-ready happens second.
func (f *Freezer) present(rec *outputRec) {
	if rec.presented || rec.buffer == nil || rec.surface == nil {
		return
	}
	rec.state = stateSurfaceConfigured

	// Acknowledged state is committed buffer-less first; the frame goes
	// up in a second commit.
	if err := rec.surface.Commit(); err != nil {
		log.Printf("committing output %d: %v", rec.index, err)
		return
	}
	if err := rec.surface.Attach(rec.buffer, 0, 0); err != nil {
		log.Printf("attaching frame to output %d: %v", rec.index, err)
		return
	}
	if err := rec.surface.SetBufferScale(1); err != nil {
		log.Printf("buffer scale for output %d: %v", rec.index, err)
		return
	}
	if err := rec.surface.SetBufferTransform(rec.transform); err != nil {
		log.Printf("buffer transform for output %d: %v", rec.index, err)
		return
	}
	if err := rec.surface.Commit(); err != nil {
		log.Printf("committing output %d: %v", rec.index, err)
		return
	}

	rec.presented = true
	rec.state = statePresented
	f.surfacesConfigured++
}

// handleClosed tears down an output's presentation objects as a unit.
// The session itself keeps running for the other outputs.
func (f *Freezer) handleClosed(index int) {
	rec := f.outputAt(index)
	if rec == nil {
		log.Printf("closed event for unknown output %d", index)
		return
	}
	log.Printf("> Layer surface for output %d closed", index)
	if rec.scaleSub != nil {
		rec.scaleSub.Destroy()
		rec.scaleSub = nil
	}
	if rec.viewport != nil {
		rec.viewport.Destroy()
		rec.viewport = nil
	}
	if rec.layerSurface != nil {
		rec.layerSurface.Destroy()
		rec.layerSurface = nil
	}
	if rec.surface != nil {
		rec.surface.Destroy()
		rec.surface = nil
	}
	rec.state = stateClosed
}
