package wlproto

import (
	"fmt"

	"github.com/bnema/wlturbo"
)

// XdgOutputManagerInterface is the zxdg_output_manager_v1 global, the
// extension that exposes an output's logical (layout-space) geometry.
const XdgOutputManagerInterface = "zxdg_output_manager_v1"

const (
	opXdgOutputManagerDestroy      = 0
	opXdgOutputManagerGetXdgOutput = 1
)

const (
	evXdgOutputLogicalSize = 1
)

// XdgOutputManager wraps the zxdg_output_manager_v1 global.
type XdgOutputManager struct {
	id uint32
	d  *wlturbo.Display
}

// BindXdgOutputManager binds the advertised zxdg_output_manager_v1 global.
func BindXdgOutputManager(d *wlturbo.Display, name, version uint32) (*XdgOutputManager, error) {
	id, err := d.Registry().BindID(name, XdgOutputManagerInterface, version)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", XdgOutputManagerInterface, err)
	}
	return &XdgOutputManager{id: id, d: d}, nil
}

// ID returns the manager's object ID.
func (m *XdgOutputManager) ID() uint32 { return m.id }

// GetXdgOutput creates the logical-geometry extension object for the
// given wl_output.
func (m *XdgOutputManager) GetXdgOutput(output wlturbo.Object) (*XdgOutput, error) {
	id := m.d.AllocateID()
	if err := m.d.SendRequest(m.id, opXdgOutputManagerGetXdgOutput, id, output); err != nil {
		return nil, fmt.Errorf("zxdg_output_manager_v1.get_xdg_output: %w", err)
	}
	x := &XdgOutput{id: id, d: m.d}
	m.d.AddListener(id, evXdgOutputLogicalSize, x.handleLogicalSize)
	return x, nil
}

// XdgOutput wraps a zxdg_output_v1.
type XdgOutput struct {
	// LogicalSize delivers the output's size in the global compositor
	// space, after transform and scaling.
	LogicalSize func(width, height int32)

	id uint32
	d  *wlturbo.Display
}

// ID returns the xdg-output's object ID.
func (x *XdgOutput) ID() uint32 { return x.id }

func (x *XdgOutput) handleLogicalSize(data []byte) {
	if x.LogicalSize == nil {
		return
	}
	r := eventReader{data: data}
	width := r.int32()
	height := r.int32()
	x.LogicalSize(width, height)
}
