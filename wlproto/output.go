package wlproto

import (
	"fmt"

	"github.com/bnema/wlturbo"
)

// OutputInterface is the wl_output global interface name. One global
// is advertised per connected monitor.
const OutputInterface = "wl_output"

const (
	evOutputGeometry = 0
	evOutputMode     = 1
)

// Display transforms, as reported by wl_output.geometry.
const (
	TransformNormal     = 0
	Transform90         = 1
	Transform180        = 2
	Transform270        = 3
	TransformFlipped    = 4
	TransformFlipped90  = 5
	TransformFlipped180 = 6
	TransformFlipped270 = 7
)

// Output wraps one wl_output global.
type Output struct {
	// Geometry delivers the output's position, physical (millimeter)
	// dimensions and buffer transform.
	Geometry func(x, y, physWidth, physHeight, subpixel int32, make, model string, transform int32)
	// Mode delivers one display mode; width and height are the mode's
	// dimensions in hardware pixels.
	Mode func(flags uint32, width, height, refresh int32)

	id uint32
	d  *wlturbo.Display
}

// BindOutput binds an advertised wl_output global.
func BindOutput(d *wlturbo.Display, name, version uint32) (*Output, error) {
	id, err := d.Registry().BindID(name, OutputInterface, version)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", OutputInterface, err)
	}
	o := &Output{id: id, d: d}
	d.AddListener(id, evOutputGeometry, o.handleGeometry)
	d.AddListener(id, evOutputMode, o.handleMode)
	return o, nil
}

// ID returns the output's object ID.
func (o *Output) ID() uint32 { return o.id }

func (o *Output) handleGeometry(data []byte) {
	if o.Geometry == nil {
		return
	}
	r := eventReader{data: data}
	x := r.int32()
	y := r.int32()
	physW := r.int32()
	physH := r.int32()
	subpixel := r.int32()
	mk := r.string()
	model := r.string()
	transform := r.int32()
	o.Geometry(x, y, physW, physH, subpixel, mk, model, transform)
}

func (o *Output) handleMode(data []byte) {
	if o.Mode == nil {
		return
	}
	r := eventReader{data: data}
	flags := r.uint32()
	width := r.int32()
	height := r.int32()
	refresh := r.int32()
	o.Mode(flags, width, height, refresh)
}
