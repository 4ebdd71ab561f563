package freeze

import (
	"log"

	"github.com/bnema/wlturbo"
)

// outputState tracks where a single output is in its lifecycle. The
// happy path only ever moves forward.
type outputState int

const (
	stateDiscovered outputState = iota
	stateGeometryKnown
	stateCaptureRequested
	stateBufferDescribed
	stateCopySubmitted
	stateFrameReady
	stateSurfaceConfigured
	statePresented
	stateClosed
	stateFailed
)

func (s outputState) String() string {
	switch s {
	case stateDiscovered:
		return "discovered"
	case stateGeometryKnown:
		return "geometry-known"
	case stateCaptureRequested:
		return "capture-requested"
	case stateBufferDescribed:
		return "buffer-described"
	case stateCopySubmitted:
		return "copy-submitted"
	case stateFrameReady:
		return "frame-ready"
	case stateSurfaceConfigured:
		return "surface-configured"
	case statePresented:
		return "presented"
	case stateClosed:
		return "closed"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// outputRec collects everything wayfreeze holds per output: geometry,
// the capture pipeline objects and the presentation objects. Records
// are indexed by discovery order.
type outputRec struct {
	index  int
	output wlturbo.Object
	state  outputState

	physWidth, physHeight       int32
	transform                   int32
	logicalWidth, logicalHeight int32
	scale                       int32 // 1/120ths of a unit, 0 until advertised

	surface      surface
	layerSurface layerSurface
	viewport     viewport
	scaleSub     scaleSubscription
	pool         capturePool
	buffer       wlturbo.Object
	frame        captureFrame

	frameReady       bool
	configured       bool
	configuredSerial uint32
	presented        bool
}

func (f *Freezer) addOutput(o wlturbo.Object) *outputRec {
	rec := &outputRec{index: len(f.outputs), output: o, state: stateDiscovered}
	f.outputs = append(f.outputs, rec)
	return rec
}

func (f *Freezer) outputAt(index int) *outputRec {
	if index < 0 || index >= len(f.outputs) {
		return nil
	}
	return f.outputs[index]
}

func (f *Freezer) handleOutputMode(index int, width, height int32) {
	rec := f.outputAt(index)
	if rec == nil {
		log.Printf("mode event for unknown output %d", index)
		return
	}
	rec.physWidth, rec.physHeight = width, height
}

// handleOutputGeometry records the transform and kicks off the rest of
// the inventory: an xdg_output for the logical size and the surface
// the overlay will later be built on.
func (f *Freezer) handleOutputGeometry(index int, transform int32) {
	rec := f.outputAt(index)
	if rec == nil {
		log.Printf("geometry event for unknown output %d", index)
		return
	}
	rec.transform = transform

	if err := f.newXdgOutput(rec.output, index); err != nil {
		log.Printf("output %d: %v", index, err)
		return
	}
	if rec.surface == nil {
		s, err := f.newSurface()
		if err != nil {
			log.Printf("output %d: %v", index, err)
			return
		}
		rec.surface = s
	}
}

func (f *Freezer) handleLogicalSize(index int, width, height int32) {
	rec := f.outputAt(index)
	if rec == nil {
		log.Printf("logical-size event for unknown output %d", index)
		return
	}
	rec.logicalWidth, rec.logicalHeight = width, height
	if rec.state == stateDiscovered {
		rec.state = stateGeometryKnown
		f.geometryReady++
	}
}
