package wlproto

import (
	"fmt"

	"github.com/bnema/wlturbo"
)

// ViewporterInterface is the wp_viewporter global, the crop-and-scale
// extension factory.
const ViewporterInterface = "wp_viewporter"

const (
	opViewporterDestroy     = 0
	opViewporterGetViewport = 1
)

const (
	opViewportDestroy        = 0
	opViewportSetSource      = 1
	opViewportSetDestination = 2
)

// Viewporter wraps the wp_viewporter global.
type Viewporter struct {
	id uint32
	d  *wlturbo.Display
}

// BindViewporter binds the advertised wp_viewporter global.
func BindViewporter(d *wlturbo.Display, name, version uint32) (*Viewporter, error) {
	id, err := d.Registry().BindID(name, ViewporterInterface, version)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", ViewporterInterface, err)
	}
	return &Viewporter{id: id, d: d}, nil
}

// ID returns the viewporter's object ID.
func (v *Viewporter) ID() uint32 { return v.id }

// GetViewport creates the crop-and-scale extension for a surface.
func (v *Viewporter) GetViewport(surface wlturbo.Object) (*Viewport, error) {
	id := v.d.AllocateID()
	if err := v.d.SendRequest(v.id, opViewporterGetViewport, id, surface); err != nil {
		return nil, fmt.Errorf("wp_viewporter.get_viewport: %w", err)
	}
	return &Viewport{id: id, d: v.d}, nil
}

// Viewport wraps a wp_viewport.
type Viewport struct {
	id uint32
	d  *wlturbo.Display
}

// ID returns the viewport's object ID.
func (v *Viewport) ID() uint32 { return v.id }

// SetSource sets the rectangle of the buffer that is presented,
// in surface-local fixed-point coordinates.
func (v *Viewport) SetSource(x, y, width, height wlturbo.Fixed) error {
	return v.d.SendRequest(v.id, opViewportSetSource, x, y, width, height)
}

// SetDestination sets the surface size the source rectangle is scaled
// to, in logical pixels.
func (v *Viewport) SetDestination(width, height int32) error {
	return v.d.SendRequest(v.id, opViewportSetDestination, width, height)
}

// Destroy deletes the viewport.
func (v *Viewport) Destroy() error {
	return v.d.SendRequest(v.id, opViewportDestroy)
}
