package freeze

import (
	"encoding/binary"
	"fmt"
	"log"
	"strings"

	"github.com/bnema/wlturbo"

	"github.com/Jappie3/wayfreeze/wlproto"
)

// capabilities holds the singleton globals the session needs, plus the
// registry name each was bound under so removals can be matched.
type capabilities struct {
	compositor     *wlproto.Compositor
	compositorName uint32
	shm            *wlproto.Shm
	shmName        uint32
	seat           *wlproto.Seat
	seatName       uint32
	xdgOutputs     *wlproto.XdgOutputManager
	xdgOutputsName uint32
	viewporter     *wlproto.Viewporter
	viewporterName uint32
	fractional     *wlproto.FractionalScaleManager
	fractionalName uint32
	screencopy     *wlproto.ScreencopyManager
	screencopyName uint32
	layerShell     *wlproto.LayerShell
	layerShellName uint32

	pointer  *wlproto.Pointer
	keyboard *wlproto.Keyboard
}

// registerGlobals installs a registry handler per capability. Each
// singleton is bound at most once; extra advertisements are ignored.
func (f *Freezer) registerGlobals(d *wlturbo.Display) {
	reg := d.Registry()

	reg.AddHandler(wlproto.CompositorInterface, func(_ *wlturbo.Registry, name, version uint32) {
		if f.caps.compositor != nil {
			return
		}
		c, err := wlproto.BindCompositor(d, name, version)
		if err != nil {
			log.Printf("Failed to bind %s: %v", wlproto.CompositorInterface, err)
			return
		}
		logBound(wlproto.CompositorInterface, version)
		f.caps.compositor = c
		f.caps.compositorName = name
	})

	reg.AddHandler(wlproto.ShmInterface, func(_ *wlturbo.Registry, name, version uint32) {
		if f.caps.shm != nil {
			return
		}
		s, err := wlproto.BindShm(d, name, version)
		if err != nil {
			log.Printf("Failed to bind %s: %v", wlproto.ShmInterface, err)
			return
		}
		logBound(wlproto.ShmInterface, version)
		f.caps.shm = s
		f.caps.shmName = name
	})

	reg.AddHandler(wlproto.SeatInterface, func(_ *wlturbo.Registry, name, version uint32) {
		if f.caps.seat != nil {
			return
		}
		f.bindSeat(d, name, version)
	})

	reg.AddHandler(wlproto.XdgOutputManagerInterface, func(_ *wlturbo.Registry, name, version uint32) {
		if f.caps.xdgOutputs != nil {
			return
		}
		m, err := wlproto.BindXdgOutputManager(d, name, version)
		if err != nil {
			log.Printf("Failed to bind %s: %v", wlproto.XdgOutputManagerInterface, err)
			return
		}
		logBound(wlproto.XdgOutputManagerInterface, version)
		f.caps.xdgOutputs = m
		f.caps.xdgOutputsName = name
	})

	reg.AddHandler(wlproto.ViewporterInterface, func(_ *wlturbo.Registry, name, version uint32) {
		if f.caps.viewporter != nil {
			return
		}
		v, err := wlproto.BindViewporter(d, name, version)
		if err != nil {
			log.Printf("Failed to bind %s: %v", wlproto.ViewporterInterface, err)
			return
		}
		logBound(wlproto.ViewporterInterface, version)
		f.caps.viewporter = v
		f.caps.viewporterName = name
	})

	reg.AddHandler(wlproto.FractionalScaleManagerInterface, func(_ *wlturbo.Registry, name, version uint32) {
		if f.caps.fractional != nil {
			return
		}
		m, err := wlproto.BindFractionalScaleManager(d, name, version)
		if err != nil {
			log.Printf("Failed to bind %s: %v", wlproto.FractionalScaleManagerInterface, err)
			return
		}
		logBound(wlproto.FractionalScaleManagerInterface, version)
		f.caps.fractional = m
		f.caps.fractionalName = name
	})

	reg.AddHandler(wlproto.ScreencopyManagerInterface, func(_ *wlturbo.Registry, name, version uint32) {
		if f.caps.screencopy != nil {
			return
		}
		m, err := wlproto.BindScreencopyManager(d, name, version)
		if err != nil {
			log.Printf("Failed to bind %s: %v", wlproto.ScreencopyManagerInterface, err)
			return
		}
		logBound(wlproto.ScreencopyManagerInterface, version)
		f.caps.screencopy = m
		f.caps.screencopyName = name
	})

	reg.AddHandler(wlproto.LayerShellInterface, func(_ *wlturbo.Registry, name, version uint32) {
		if f.caps.layerShell != nil {
			return
		}
		l, err := wlproto.BindLayerShell(d, name, version)
		if err != nil {
			log.Printf("Failed to bind %s: %v", wlproto.LayerShellInterface, err)
			return
		}
		logBound(wlproto.LayerShellInterface, version)
		f.caps.layerShell = l
		f.caps.layerShellName = name
	})

	reg.AddHandler(wlproto.OutputInterface, func(_ *wlturbo.Registry, name, version uint32) {
		f.bindOutput(d, name, version)
	})

	// wl_registry.global_remove; the transport only forwards global
	// announcements, removals arrive as raw events.
	d.AddListener(reg.ID(), 1, f.handleGlobalRemove)
}

func logBound(iface string, version uint32) {
	log.Printf("> Bound: %s v%d", iface, version)
}

func (f *Freezer) bindSeat(d *wlturbo.Display, name, version uint32) {
	seat, err := wlproto.BindSeat(d, name, version)
	if err != nil {
		log.Printf("Failed to bind %s: %v", wlproto.SeatInterface, err)
		return
	}
	logBound(wlproto.SeatInterface, version)

	ptr, err := seat.GetPointer()
	if err != nil {
		log.Printf("Failed to get pointer: %v", err)
	} else {
		ptr.Button = func(serial, time, button, state uint32) {
			f.handlePointerButton(state)
		}
		f.caps.pointer = ptr
	}

	kb, err := seat.GetKeyboard()
	if err != nil {
		log.Printf("Failed to get keyboard: %v", err)
	} else {
		kb.Keymap = f.handleKeymap
		kb.Key = func(serial, time, key, state uint32) {
			f.handleKey(key, state)
		}
		f.caps.keyboard = kb
	}

	f.caps.seat = seat
	f.caps.seatName = name
}

// wl_output globals are not singletons; every advertisement becomes a
// tracked output.
func (f *Freezer) bindOutput(d *wlturbo.Display, name, version uint32) {
	o, err := wlproto.BindOutput(d, name, version)
	if err != nil {
		log.Printf("Failed to bind %s: %v", wlproto.OutputInterface, err)
		return
	}
	rec := f.addOutput(o)
	o.Mode = func(flags uint32, width, height, refresh int32) {
		f.handleOutputMode(rec.index, width, height)
	}
	o.Geometry = func(x, y, physWidth, physHeight, subpixel int32, make, model string, transform int32) {
		f.handleOutputGeometry(rec.index, transform)
	}
	log.Printf("> Bound: %s v%d (output %d)", wlproto.OutputInterface, version, rec.index)
}

// requireCapabilities reports which of the eight required globals the
// server never advertised, so a missing protocol fails fast instead of
// stalling a wait loop.
func (f *Freezer) requireCapabilities() error {
	var missing []string
	if f.caps.compositor == nil {
		missing = append(missing, wlproto.CompositorInterface)
	}
	if f.caps.shm == nil {
		missing = append(missing, wlproto.ShmInterface)
	}
	if f.caps.seat == nil {
		missing = append(missing, wlproto.SeatInterface)
	}
	if f.caps.xdgOutputs == nil {
		missing = append(missing, wlproto.XdgOutputManagerInterface)
	}
	if f.caps.viewporter == nil {
		missing = append(missing, wlproto.ViewporterInterface)
	}
	if f.caps.fractional == nil {
		missing = append(missing, wlproto.FractionalScaleManagerInterface)
	}
	if f.caps.screencopy == nil {
		missing = append(missing, wlproto.ScreencopyManagerInterface)
	}
	if f.caps.layerShell == nil {
		missing = append(missing, wlproto.LayerShellInterface)
	}
	if len(missing) > 0 {
		return fmt.Errorf("compositor does not support: %s", strings.Join(missing, ", "))
	}
	return nil
}

// handleGlobalRemove clears a bound capability the server revoked
// mid-run. No rebinding is attempted; anything that still needs the
// capability fails closed on its next use instead of talking to a
// stale handle.
func (f *Freezer) handleGlobalRemove(data []byte) {
	if len(data) < 4 {
		return
	}
	name := binary.LittleEndian.Uint32(data)

	switch {
	case f.caps.compositor != nil && name == f.caps.compositorName:
		f.caps.compositor = nil
		logRemoved(wlproto.CompositorInterface)
	case f.caps.shm != nil && name == f.caps.shmName:
		f.caps.shm = nil
		logRemoved(wlproto.ShmInterface)
	case f.caps.seat != nil && name == f.caps.seatName:
		f.caps.seat = nil
		logRemoved(wlproto.SeatInterface)
	case f.caps.xdgOutputs != nil && name == f.caps.xdgOutputsName:
		f.caps.xdgOutputs = nil
		logRemoved(wlproto.XdgOutputManagerInterface)
	case f.caps.viewporter != nil && name == f.caps.viewporterName:
		f.caps.viewporter = nil
		logRemoved(wlproto.ViewporterInterface)
	case f.caps.fractional != nil && name == f.caps.fractionalName:
		f.caps.fractional = nil
		logRemoved(wlproto.FractionalScaleManagerInterface)
	case f.caps.screencopy != nil && name == f.caps.screencopyName:
		f.caps.screencopy = nil
		logRemoved(wlproto.ScreencopyManagerInterface)
	case f.caps.layerShell != nil && name == f.caps.layerShellName:
		f.caps.layerShell = nil
		logRemoved(wlproto.LayerShellInterface)
	}
}

func logRemoved(iface string) {
	log.Printf("Warning: %s was removed by the server", iface)
}
