package freeze

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/bnema/wlturbo"

	"github.com/Jappie3/wayfreeze/input"
	"github.com/Jappie3/wayfreeze/shm"
	"github.com/Jappie3/wayfreeze/wlproto"
)

// The state machine talks to the server through these narrow
// interfaces rather than the wlproto concretes, so tests can drive it
// with recording fakes.

type surface interface {
	wlturbo.Object
	Attach(buf wlturbo.Object, x, y int32) error
	Commit() error
	SetBufferScale(scale int32) error
	SetBufferTransform(transform int32) error
	Destroy() error
}

type layerSurface interface {
	SetSize(width, height uint32) error
	SetAnchor(anchor uint32) error
	SetExclusiveZone(zone int32) error
	SetKeyboardInteractivity(mode uint32) error
	AckConfigure(serial uint32) error
	Destroy() error
}

type viewport interface {
	SetSource(x, y, width, height wlturbo.Fixed) error
	SetDestination(width, height int32) error
	Destroy() error
}

type captureFrame interface {
	Copy(buf wlturbo.Object) error
	Destroy() error
}

type capturePool interface {
	CreateBuffer(width, height, stride int32, format uint32) (wlturbo.Object, error)
	Destroy() error
}

type scaleSubscription interface {
	Destroy() error
}

func errMissing(iface string) error {
	return fmt.Errorf("required capability %s is not bound", iface)
}

// bindHooks points every creation and side-effect hook at the real
// Wayland connection. Tests replace individual hooks with fakes.
func (f *Freezer) bindHooks(d *wlturbo.Display) {
	f.dispatch = d.Dispatch
	f.roundtrip = d.Roundtrip
	f.sleep = time.Sleep
	f.spawn = func(cmd string) error {
		return exec.Command("sh", "-c", cmd).Start()
	}
	f.readKeymap = input.MapDescription

	f.newSurface = func() (surface, error) {
		if f.caps.compositor == nil {
			return nil, errMissing(wlproto.CompositorInterface)
		}
		return f.caps.compositor.CreateSurface()
	}

	f.newXdgOutput = func(output wlturbo.Object, index int) error {
		if f.caps.xdgOutputs == nil {
			return errMissing(wlproto.XdgOutputManagerInterface)
		}
		x, err := f.caps.xdgOutputs.GetXdgOutput(output)
		if err != nil {
			return err
		}
		x.LogicalSize = func(width, height int32) {
			f.handleLogicalSize(index, width, height)
		}
		return nil
	}

	f.newPool = func(size int64) (capturePool, error) {
		if f.caps.shm == nil {
			return nil, errMissing(wlproto.ShmInterface)
		}
		return shm.NewPool(f.caps.shm, size)
	}

	f.newCaptureFrame = func(output wlturbo.Object, index int, overlayCursor int32) (captureFrame, error) {
		if f.caps.screencopy == nil {
			return nil, errMissing(wlproto.ScreencopyManagerInterface)
		}
		frame, err := f.caps.screencopy.CaptureOutput(overlayCursor, output)
		if err != nil {
			return nil, err
		}
		frame.Buffer = func(format, width, height, stride uint32) {
			f.handleFrameBuffer(index, format, width, height, stride)
		}
		frame.BufferDone = func() { f.handleFrameBufferDone(index) }
		frame.Ready = func() { f.handleFrameReady(index) }
		frame.Failed = func() { f.handleFrameFailed(index) }
		return frame, nil
	}

	f.newLayerSurface = func(surf surface, output wlturbo.Object, index int) (layerSurface, error) {
		if f.caps.layerShell == nil {
			return nil, errMissing(wlproto.LayerShellInterface)
		}
		ls, err := f.caps.layerShell.GetLayerSurface(surf, output, wlproto.LayerOverlay, "wayfreeze")
		if err != nil {
			return nil, err
		}
		ls.Configure = func(serial, width, height uint32) {
			f.handleConfigure(index, serial)
		}
		ls.Closed = func() { f.handleClosed(index) }
		return ls, nil
	}

	f.newViewport = func(surf surface) (viewport, error) {
		if f.caps.viewporter == nil {
			return nil, errMissing(wlproto.ViewporterInterface)
		}
		return f.caps.viewporter.GetViewport(surf)
	}

	f.newScaleSub = func(surf surface, index int) (scaleSubscription, error) {
		if f.caps.fractional == nil {
			return nil, errMissing(wlproto.FractionalScaleManagerInterface)
		}
		sub, err := f.caps.fractional.GetFractionalScale(surf)
		if err != nil {
			return nil, err
		}
		sub.PreferredScale = func(scale uint32) {
			f.handlePreferredScale(index, scale)
		}
		return sub, nil
	}
}
