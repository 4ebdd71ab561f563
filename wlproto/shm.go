package wlproto

import (
	"fmt"
	"os"

	"github.com/bnema/wlturbo"
)

// ShmInterface is the wl_shm global interface name, the shared-memory
// buffer factory.
const ShmInterface = "wl_shm"

const (
	opShmCreatePool = 0
)

const (
	opShmPoolCreateBuffer = 0
	opShmPoolDestroy      = 1
	opShmPoolResize       = 2
)

const (
	opBufferDestroy = 0
	evBufferRelease = 0
)

// Pixel formats (wl_shm.format). The first two are fixed enum values;
// the rest follow the drm fourcc codes.
const (
	FormatARGB8888 uint32 = 0
	FormatXRGB8888 uint32 = 1
	FormatABGR8888 uint32 = 0x34324241
	FormatXBGR8888 uint32 = 0x34324258
)

// Shm wraps the wl_shm global.
type Shm struct {
	id uint32
	d  *wlturbo.Display
}

// BindShm binds the advertised wl_shm global.
func BindShm(d *wlturbo.Display, name, version uint32) (*Shm, error) {
	id, err := d.Registry().BindID(name, ShmInterface, version)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", ShmInterface, err)
	}
	return &Shm{id: id, d: d}, nil
}

// ID returns the shm global's object ID.
func (s *Shm) ID() uint32 { return s.id }

// CreatePool shares the given file with the server as a buffer pool.
// The file must be at least size bytes long.
func (s *Shm) CreatePool(f *os.File, size int32) (*ShmPool, error) {
	id := s.d.AllocateID()
	fds := []int{int(f.Fd())}
	if err := s.d.SendRequestWithFDs(s.id, opShmCreatePool, fds, id, size); err != nil {
		return nil, fmt.Errorf("wl_shm.create_pool: %w", err)
	}
	return &ShmPool{id: id, d: s.d, size: size}, nil
}

// ShmPool wraps a wl_shm_pool, a server-side view of a shared file
// that buffers are carved from.
type ShmPool struct {
	id   uint32
	d    *wlturbo.Display
	size int32
}

// ID returns the pool's object ID.
func (p *ShmPool) ID() uint32 { return p.id }

// Size returns the pool's current size in bytes.
func (p *ShmPool) Size() int32 { return p.size }

// CreateBuffer carves a buffer out of the pool. offset plus
// stride*height must fit inside the pool.
func (p *ShmPool) CreateBuffer(offset, width, height, stride int32, format uint32) (*Buffer, error) {
	id := p.d.AllocateID()
	if err := p.d.SendRequest(p.id, opShmPoolCreateBuffer, id, offset, width, height, stride, format); err != nil {
		return nil, fmt.Errorf("wl_shm_pool.create_buffer: %w", err)
	}
	b := &Buffer{id: id, d: p.d}
	p.d.AddListener(id, evBufferRelease, b.handleRelease)
	return b, nil
}

// Resize grows the pool. The backing file must already have been
// enlarged; pools can never shrink.
func (p *ShmPool) Resize(size int32) error {
	if err := p.d.SendRequest(p.id, opShmPoolResize, size); err != nil {
		return fmt.Errorf("wl_shm_pool.resize: %w", err)
	}
	p.size = size
	return nil
}

// Destroy deletes the pool. Buffers carved from it stay valid until
// they are destroyed themselves.
func (p *ShmPool) Destroy() error {
	return p.d.SendRequest(p.id, opShmPoolDestroy)
}

// Buffer wraps a wl_buffer.
type Buffer struct {
	// Release fires when the server is done reading the buffer and it
	// is safe to reuse or discard its storage.
	Release func()

	id uint32
	d  *wlturbo.Display
}

// ID returns the buffer's object ID.
func (b *Buffer) ID() uint32 { return b.id }

// Destroy deletes the buffer.
func (b *Buffer) Destroy() error {
	return b.d.SendRequest(b.id, opBufferDestroy)
}

func (b *Buffer) handleRelease(data []byte) {
	if b.Release != nil {
		b.Release()
	}
}
