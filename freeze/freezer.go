// Package freeze drives the screen-freeze session: it inventories
// outputs, captures every one of them, raises an input-grabbing
// overlay per output showing its captured frame, and tears everything
// down when the user presses Escape or releases a pointer button.
package freeze

import (
	"fmt"
	"log"
	"time"

	"github.com/bnema/wlturbo"

	"github.com/Jappie3/wayfreeze/config"
	"github.com/Jappie3/wayfreeze/input"
	"github.com/Jappie3/wayfreeze/wlproto"
)

// Freezer owns all per-session state. It is single-goroutine: every
// handler runs from the dispatch loop, so no field needs locking.
type Freezer struct {
	opts *config.Options

	caps    capabilities
	outputs []*outputRec
	keymap  *input.Keymap

	// Readiness counters; each is bumped exactly once per output and
	// never exceeds len(outputs).
	geometryReady      int
	framesReady        int
	surfacesConfigured int

	// Set by the exit triggers (Escape press, pointer button release)
	// and by unrecoverable capture failures.
	exit bool

	dispatch   func() error
	roundtrip  func() error
	sleep      func(d time.Duration)
	spawn      func(cmd string) error
	readKeymap func(fd int, size uint32) ([]byte, error)

	newSurface      func() (surface, error)
	newXdgOutput    func(output wlturbo.Object, index int) error
	newPool         func(size int64) (capturePool, error)
	newCaptureFrame func(output wlturbo.Object, index int, overlayCursor int32) (captureFrame, error)
	newLayerSurface func(surf surface, output wlturbo.Object, index int) (layerSurface, error)
	newViewport     func(surf surface) (viewport, error)
	newScaleSub     func(surf surface, index int) (scaleSubscription, error)
}

// New wires a Freezer to a connected display: registry handlers for
// every capability are registered, but nothing is bound until the
// initial roundtrip inside Freeze.
func New(d *wlturbo.Display, opts *config.Options) *Freezer {
	f := &Freezer{
		opts:   opts,
		keymap: input.Default(),
	}
	f.bindHooks(d)
	f.registerGlobals(d)
	return f
}

// Freeze runs the session to completion. It returns nil on a
// deliberate exit (user input, or a capture failure already logged at
// its source) and an error when the session cannot proceed at all.
func (f *Freezer) Freeze() error {
	if err := f.roundtrip(); err != nil {
		return fmt.Errorf("initial roundtrip: %w", err)
	}
	log.Printf("> Received all globals")

	n := len(f.outputs)
	if n == 0 {
		return fmt.Errorf("no outputs found")
	}
	if err := f.requireCapabilities(); err != nil {
		return err
	}

	for f.geometryReady < n && !f.exit {
		if err := f.dispatch(); err != nil {
			return fmt.Errorf("waiting for output geometry: %w", err)
		}
	}
	if f.exit {
		return nil
	}

	if err := f.requestCaptures(); err != nil {
		return err
	}

	for f.framesReady < n && !f.exit {
		if err := f.dispatch(); err != nil {
			return fmt.Errorf("waiting for captured frames: %w", err)
		}
	}
	if f.exit {
		return nil
	}

	if f.opts.BeforeFreezeCmd != "" {
		log.Printf("> Running before-freeze command: %s", f.opts.BeforeFreezeCmd)
		if err := f.spawn(f.opts.BeforeFreezeCmd); err != nil {
			log.Printf("Failed to run before-freeze command: %v", err)
		}
		f.sleep(f.opts.BeforeDelay())
	}

	if err := f.createOverlays(); err != nil {
		return err
	}

	for f.surfacesConfigured < n && !f.exit {
		if err := f.dispatch(); err != nil {
			return fmt.Errorf("waiting for surface configuration: %w", err)
		}
	}
	if !f.exit {
		log.Printf("> Screen frozen")
	}

	if f.opts.AfterFreezeCmd != "" && !f.exit {
		f.sleep(f.opts.AfterDelay())
		log.Printf("> Running after-freeze command: %s", f.opts.AfterFreezeCmd)
		if err := f.spawn(f.opts.AfterFreezeCmd); err != nil {
			log.Printf("Failed to run after-freeze command: %v", err)
		}
	}

	for !f.exit {
		if err := f.dispatch(); err != nil {
			return fmt.Errorf("event loop: %w", err)
		}
	}
	return nil
}

// handleKeymap swaps the evdev core table for the compositor's own
// layout when a description is delivered. Without an fd, or when the
// description cannot be compiled, the core table stays in effect.
func (f *Freezer) handleKeymap(format, size uint32, fd int) {
	if format != wlproto.KeymapFormatXkbV1 {
		log.Printf("Could not recognize keyboard format %d", format)
		return
	}
	if fd < 0 {
		return
	}
	desc, err := f.readKeymap(fd, size)
	if err != nil {
		log.Printf("Failed to read keymap: %v", err)
		return
	}
	km, err := input.Compile(desc)
	if err != nil {
		log.Printf("Failed to compile keymap: %v", err)
		return
	}
	f.keymap = km
}

func (f *Freezer) handleKey(key, state uint32) {
	if state != wlproto.KeyPressed {
		return
	}
	if f.keymap.IsEscape(key) {
		log.Printf("> Escape pressed - exiting...")
		f.exit = true
	}
}

func (f *Freezer) handlePointerButton(state uint32) {
	if state != wlproto.PointerButtonReleased {
		return
	}
	log.Printf("> Mouse button released - exiting...")
	f.exit = true
}
