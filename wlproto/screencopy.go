package wlproto

import (
	"fmt"

	"github.com/bnema/wlturbo"
)

// ScreencopyManagerInterface is the zwlr_screencopy_manager_v1 global,
// the factory for output capture jobs.
const ScreencopyManagerInterface = "zwlr_screencopy_manager_v1"

const (
	opScreencopyManagerCaptureOutput = 0
)

const (
	opScreencopyFrameCopy    = 0
	opScreencopyFrameDestroy = 1
)

const (
	evScreencopyFrameBuffer     = 0
	evScreencopyFrameReady      = 2
	evScreencopyFrameFailed     = 3
	evScreencopyFrameBufferDone = 6
)

// ScreencopyManager wraps the zwlr_screencopy_manager_v1 global.
type ScreencopyManager struct {
	id uint32
	d  *wlturbo.Display
}

// BindScreencopyManager binds the advertised zwlr_screencopy_manager_v1
// global.
func BindScreencopyManager(d *wlturbo.Display, name, version uint32) (*ScreencopyManager, error) {
	id, err := d.Registry().BindID(name, ScreencopyManagerInterface, version)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", ScreencopyManagerInterface, err)
	}
	return &ScreencopyManager{id: id, d: d}, nil
}

// ID returns the manager's object ID.
func (m *ScreencopyManager) ID() uint32 { return m.id }

// CaptureOutput starts a capture job for one output. overlayCursor
// non-zero composites the pointer cursor into the captured frame.
func (m *ScreencopyManager) CaptureOutput(overlayCursor int32, output wlturbo.Object) (*ScreencopyFrame, error) {
	id := m.d.AllocateID()
	if err := m.d.SendRequest(m.id, opScreencopyManagerCaptureOutput, id, overlayCursor, output); err != nil {
		return nil, fmt.Errorf("zwlr_screencopy_manager_v1.capture_output: %w", err)
	}
	f := &ScreencopyFrame{id: id, d: m.d}
	m.d.AddListener(id, evScreencopyFrameBuffer, f.handleBuffer)
	m.d.AddListener(id, evScreencopyFrameReady, f.handleReady)
	m.d.AddListener(id, evScreencopyFrameFailed, f.handleFailed)
	m.d.AddListener(id, evScreencopyFrameBufferDone, f.handleBufferDone)
	return f, nil
}

// ScreencopyFrame wraps one zwlr_screencopy_frame_v1 capture job.
type ScreencopyFrame struct {
	// Buffer announces the shm buffer parameters the server requires
	// for this frame. The reported stride is authoritative and may
	// exceed width*4.
	Buffer func(format, width, height, stride uint32)
	// BufferDone means all buffer parameter events were sent and the
	// copy may be submitted.
	BufferDone func()
	// Ready means the copy completed and the buffer holds the frame.
	Ready func()
	// Failed means the capture cannot be completed.
	Failed func()

	id uint32
	d  *wlturbo.Display
}

// ID returns the frame's object ID.
func (f *ScreencopyFrame) ID() uint32 { return f.id }

// Copy asks the server to copy the captured frame into the buffer.
func (f *ScreencopyFrame) Copy(buf wlturbo.Object) error {
	return f.d.SendRequest(f.id, opScreencopyFrameCopy, buf)
}

// Destroy deletes the capture job.
func (f *ScreencopyFrame) Destroy() error {
	return f.d.SendRequest(f.id, opScreencopyFrameDestroy)
}

func (f *ScreencopyFrame) handleBuffer(data []byte) {
	if f.Buffer == nil {
		return
	}
	r := eventReader{data: data}
	format := r.uint32()
	width := r.uint32()
	height := r.uint32()
	stride := r.uint32()
	f.Buffer(format, width, height, stride)
}

func (f *ScreencopyFrame) handleReady(data []byte) {
	if f.Ready != nil {
		f.Ready()
	}
}

func (f *ScreencopyFrame) handleFailed(data []byte) {
	if f.Failed != nil {
		f.Failed()
	}
}

func (f *ScreencopyFrame) handleBufferDone(data []byte) {
	if f.BufferDone != nil {
		f.BufferDone()
	}
}
