package wlproto

import (
	"fmt"

	"github.com/bnema/wlturbo"
)

// FractionalScaleManagerInterface is the wp_fractional_scale_manager_v1
// global, through which the compositor communicates preferred
// fractional scales per surface.
const FractionalScaleManagerInterface = "wp_fractional_scale_manager_v1"

// ScaleDenominator is the unit of preferred-scale values: a scale of
// 120 means 1.0, 180 means 1.5.
const ScaleDenominator = 120

const (
	opFractionalScaleManagerDestroy  = 0
	opFractionalScaleManagerGetScale = 1
)

const (
	opFractionalScaleDestroy   = 0
	evFractionalScalePreferred = 0
)

// FractionalScaleManager wraps the wp_fractional_scale_manager_v1 global.
type FractionalScaleManager struct {
	id uint32
	d  *wlturbo.Display
}

// BindFractionalScaleManager binds the advertised
// wp_fractional_scale_manager_v1 global.
func BindFractionalScaleManager(d *wlturbo.Display, name, version uint32) (*FractionalScaleManager, error) {
	id, err := d.Registry().BindID(name, FractionalScaleManagerInterface, version)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", FractionalScaleManagerInterface, err)
	}
	return &FractionalScaleManager{id: id, d: d}, nil
}

// ID returns the manager's object ID.
func (m *FractionalScaleManager) ID() uint32 { return m.id }

// GetFractionalScale subscribes a surface to preferred-scale
// notifications.
func (m *FractionalScaleManager) GetFractionalScale(surface wlturbo.Object) (*FractionalScale, error) {
	id := m.d.AllocateID()
	if err := m.d.SendRequest(m.id, opFractionalScaleManagerGetScale, id, surface); err != nil {
		return nil, fmt.Errorf("wp_fractional_scale_manager_v1.get_fractional_scale: %w", err)
	}
	f := &FractionalScale{id: id, d: m.d}
	m.d.AddListener(id, evFractionalScalePreferred, f.handlePreferredScale)
	return f, nil
}

// FractionalScale wraps a wp_fractional_scale_v1.
type FractionalScale struct {
	// PreferredScale delivers the compositor's preferred scale for the
	// surface, in 1/120ths of a scale factor.
	PreferredScale func(scale uint32)

	id uint32
	d  *wlturbo.Display
}

// ID returns the subscription's object ID.
func (f *FractionalScale) ID() uint32 { return f.id }

// Destroy deletes the subscription.
func (f *FractionalScale) Destroy() error {
	return f.d.SendRequest(f.id, opFractionalScaleDestroy)
}

func (f *FractionalScale) handlePreferredScale(data []byte) {
	if f.PreferredScale == nil {
		return
	}
	r := eventReader{data: data}
	f.PreferredScale(r.uint32())
}
