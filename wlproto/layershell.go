package wlproto

import (
	"fmt"

	"github.com/bnema/wlturbo"
)

// LayerShellInterface is the zwlr_layer_shell_v1 global, the factory
// for surfaces rendered above or below normal windows.
const LayerShellInterface = "zwlr_layer_shell_v1"

const (
	opLayerShellGetLayerSurface = 0
)

const (
	opLayerSurfaceSetSize                  = 0
	opLayerSurfaceSetAnchor                = 1
	opLayerSurfaceSetExclusiveZone         = 2
	opLayerSurfaceSetKeyboardInteractivity = 4
	opLayerSurfaceAckConfigure             = 6
	opLayerSurfaceDestroy                  = 7
)

const (
	evLayerSurfaceConfigure = 0
	evLayerSurfaceClosed    = 1
)

// Shell layers (zwlr_layer_shell_v1.layer).
const (
	LayerBackground uint32 = 0
	LayerBottom     uint32 = 1
	LayerTop        uint32 = 2
	LayerOverlay    uint32 = 3
)

// Anchor edges (zwlr_layer_surface_v1.anchor), bitwise-combinable.
const (
	AnchorTop    uint32 = 1
	AnchorBottom uint32 = 2
	AnchorLeft   uint32 = 4
	AnchorRight  uint32 = 8
	AnchorAll           = AnchorTop | AnchorBottom | AnchorLeft | AnchorRight
)

// Keyboard interactivity modes (zwlr_layer_surface_v1.keyboard_interactivity).
const (
	KeyboardInteractivityNone      uint32 = 0
	KeyboardInteractivityExclusive uint32 = 1
	KeyboardInteractivityOnDemand  uint32 = 2
)

// LayerShell wraps the zwlr_layer_shell_v1 global.
type LayerShell struct {
	id uint32
	d  *wlturbo.Display
}

// BindLayerShell binds the advertised zwlr_layer_shell_v1 global.
func BindLayerShell(d *wlturbo.Display, name, version uint32) (*LayerShell, error) {
	id, err := d.Registry().BindID(name, LayerShellInterface, version)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", LayerShellInterface, err)
	}
	return &LayerShell{id: id, d: d}, nil
}

// ID returns the layer shell's object ID.
func (l *LayerShell) ID() uint32 { return l.id }

// GetLayerSurface turns a plain surface into a layer surface anchored
// to the given output.
func (l *LayerShell) GetLayerSurface(surface, output wlturbo.Object, layer uint32, namespace string) (*LayerSurface, error) {
	id := l.d.AllocateID()
	if err := l.d.SendRequest(l.id, opLayerShellGetLayerSurface, id, surface, output, layer, namespace); err != nil {
		return nil, fmt.Errorf("zwlr_layer_shell_v1.get_layer_surface: %w", err)
	}
	ls := &LayerSurface{id: id, d: l.d}
	l.d.AddListener(id, evLayerSurfaceConfigure, ls.handleConfigure)
	l.d.AddListener(id, evLayerSurfaceClosed, ls.handleClosed)
	return ls, nil
}

// LayerSurface wraps a zwlr_layer_surface_v1.
type LayerSurface struct {
	// Configure delivers a size the server wants the surface to take.
	// It must be acknowledged before the next buffer-carrying commit.
	Configure func(serial, width, height uint32)
	// Closed means the server no longer accepts commits on this
	// surface; the client should destroy it.
	Closed func()

	id uint32
	d  *wlturbo.Display
}

// ID returns the layer surface's object ID.
func (s *LayerSurface) ID() uint32 { return s.id }

// SetSize requests a surface size in logical pixels. Zero on an axis
// anchored on both sides lets the server choose.
func (s *LayerSurface) SetSize(width, height uint32) error {
	return s.d.SendRequest(s.id, opLayerSurfaceSetSize, width, height)
}

// SetAnchor anchors the surface to a set of output edges.
func (s *LayerSurface) SetAnchor(anchor uint32) error {
	return s.d.SendRequest(s.id, opLayerSurfaceSetAnchor, anchor)
}

// SetExclusiveZone sets the surface's exclusive zone; -1 extends the
// surface over any exclusive zones of other surfaces on the anchored
// edges.
func (s *LayerSurface) SetExclusiveZone(zone int32) error {
	return s.d.SendRequest(s.id, opLayerSurfaceSetExclusiveZone, zone)
}

// SetKeyboardInteractivity sets how the surface takes keyboard focus.
func (s *LayerSurface) SetKeyboardInteractivity(mode uint32) error {
	return s.d.SendRequest(s.id, opLayerSurfaceSetKeyboardInteractivity, mode)
}

// AckConfigure acknowledges a configure event by its serial.
func (s *LayerSurface) AckConfigure(serial uint32) error {
	return s.d.SendRequest(s.id, opLayerSurfaceAckConfigure, serial)
}

// Destroy deletes the layer surface.
func (s *LayerSurface) Destroy() error {
	return s.d.SendRequest(s.id, opLayerSurfaceDestroy)
}

func (s *LayerSurface) handleConfigure(data []byte) {
	if s.Configure == nil {
		return
	}
	r := eventReader{data: data}
	serial := r.uint32()
	width := r.uint32()
	height := r.uint32()
	s.Configure(serial, width, height)
}

func (s *LayerSurface) handleClosed(data []byte) {
	if s.Closed != nil {
		s.Closed()
	}
}
