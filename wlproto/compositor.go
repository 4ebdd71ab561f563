package wlproto

import (
	"fmt"

	"github.com/bnema/wlturbo"
)

// CompositorInterface is the wl_compositor global interface name.
const CompositorInterface = "wl_compositor"

const (
	opCompositorCreateSurface = 0
)

const (
	opSurfaceDestroy            = 0
	opSurfaceAttach             = 1
	opSurfaceCommit             = 6
	opSurfaceSetBufferTransform = 7
	opSurfaceSetBufferScale     = 8
)

// Compositor wraps the wl_compositor global, the surface factory.
type Compositor struct {
	id uint32
	d  *wlturbo.Display
}

// BindCompositor binds the advertised wl_compositor global.
func BindCompositor(d *wlturbo.Display, name, version uint32) (*Compositor, error) {
	id, err := d.Registry().BindID(name, CompositorInterface, version)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", CompositorInterface, err)
	}
	return &Compositor{id: id, d: d}, nil
}

// ID returns the compositor's object ID.
func (c *Compositor) ID() uint32 { return c.id }

// CreateSurface asks the compositor for a new wl_surface.
func (c *Compositor) CreateSurface() (*Surface, error) {
	id := c.d.AllocateID()
	if err := c.d.SendRequest(c.id, opCompositorCreateSurface, id); err != nil {
		return nil, fmt.Errorf("wl_compositor.create_surface: %w", err)
	}
	return &Surface{id: id, d: c.d}, nil
}

// Surface wraps a wl_surface, the canvas a buffer is attached to and
// committed for display.
type Surface struct {
	id uint32
	d  *wlturbo.Display
}

// ID returns the surface's object ID.
func (s *Surface) ID() uint32 { return s.id }

// Attach sets the surface's pending buffer. The attachment only takes
// effect on the next Commit.
func (s *Surface) Attach(buf wlturbo.Object, x, y int32) error {
	return s.d.SendRequest(s.id, opSurfaceAttach, buf, x, y)
}

// Commit applies the surface's pending state.
func (s *Surface) Commit() error {
	return s.d.SendRequest(s.id, opSurfaceCommit)
}

// SetBufferTransform declares the transform the attached buffer's
// contents were rendered with, one of the Transform* constants.
func (s *Surface) SetBufferTransform(transform int32) error {
	return s.d.SendRequest(s.id, opSurfaceSetBufferTransform, transform)
}

// SetBufferScale declares the scale the attached buffer was rendered at.
func (s *Surface) SetBufferScale(scale int32) error {
	return s.d.SendRequest(s.id, opSurfaceSetBufferScale, scale)
}

// Destroy deletes the surface.
func (s *Surface) Destroy() error {
	return s.d.SendRequest(s.id, opSurfaceDestroy)
}
