// Package shm manages the shared-memory resources behind capture
// buffers: an anonymous backing file per output, the wl_shm_pool
// wrapping it, and the single buffer carved from that pool.
package shm

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/Jappie3/wayfreeze/wlproto"

	"github.com/bnema/wlturbo"
)

// PoolSize returns the byte size of a pool derived from an output's
// pixel dimensions: one 32-bit pixel per sample.
func PoolSize(width, height int32) int64 {
	return int64(width) * int64(height) * 4
}

// BufferSize returns the byte size of a buffer from the server's
// reported stride and height. The stride is authoritative; it may
// exceed width*4 due to server-side padding and must never be
// recomputed from the width.
func BufferSize(stride, height uint32) int64 {
	return int64(stride) * int64(height)
}

// CreateBackingFile creates an anonymous file of exactly size bytes,
// suitable for sharing with the compositor. It lives only for the
// process lifetime and is never linked into the filesystem.
func CreateBackingFile(size int64) (*os.File, error) {
	fd, err := unix.MemfdCreate("wayfreeze-shm", unix.MFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("creating shm backing file: %w", err)
	}
	if err := unix.Ftruncate(fd, size); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("sizing shm backing file to %d bytes: %w", size, err)
	}
	return os.NewFile(uintptr(fd), "wayfreeze-shm"), nil
}

// Pool owns one backing file, its server-side pool, and the one
// buffer carved from it. Destruction order is enforced here: the
// buffer goes before the pool, and the pool is only destroyed once
// the server has released the buffer.
type Pool struct {
	file     *os.File
	size     int64
	pool     *wlproto.ShmPool
	buffer   *wlproto.Buffer
	released bool

	// Set when Destroy ran while the server still held the buffer;
	// the release handler finishes the teardown.
	teardownWanted bool
}

// NewPool allocates a backing file of the given size and shares it
// with the server through wl_shm.
func NewPool(s *wlproto.Shm, size int64) (*Pool, error) {
	file, err := CreateBackingFile(size)
	if err != nil {
		return nil, err
	}
	wp, err := s.CreatePool(file, int32(size))
	if err != nil {
		file.Close()
		return nil, err
	}
	return &Pool{file: file, size: size, pool: wp}, nil
}

// Size returns the pool's current size in bytes.
func (p *Pool) Size() int64 { return p.size }

// CreateBuffer carves the pool's single buffer at offset 0 with the
// given parameters. If stride*height exceeds the pool (the server may
// pad rows beyond the size the pool was derived from), the backing
// file and pool are grown first; pools can never shrink.
func (p *Pool) CreateBuffer(width, height, stride int32, format uint32) (wlturbo.Object, error) {
	if p.buffer != nil {
		return nil, fmt.Errorf("pool already holds a buffer")
	}
	need := BufferSize(uint32(stride), uint32(height))
	if need > p.size {
		if err := p.grow(need); err != nil {
			return nil, err
		}
	}
	buf, err := p.pool.CreateBuffer(0, width, height, stride, format)
	if err != nil {
		return nil, err
	}
	buf.Release = func() {
		p.released = true
		if p.teardownWanted {
			p.teardown()
		}
	}
	p.buffer = buf
	return buf, nil
}

func (p *Pool) grow(size int64) error {
	if err := unix.Ftruncate(int(p.file.Fd()), size); err != nil {
		return fmt.Errorf("growing shm backing file to %d bytes: %w", size, err)
	}
	if err := p.pool.Resize(int32(size)); err != nil {
		return err
	}
	p.size = size
	return nil
}

// Released reports whether the server has signalled that the pool's
// buffer is safe to reuse or discard.
func (p *Pool) Released() bool { return p.released }

// Destroy tears the pool down: buffer first, then the pool, then the
// backing file. While the server still holds the buffer the teardown
// is deferred until the release signal arrives, so storage is never
// yanked out from under a presented surface. Safe to call when no
// buffer was ever carved.
func (p *Pool) Destroy() error {
	if p.buffer != nil && !p.released {
		p.teardownWanted = true
		return nil
	}
	return p.teardown()
}

func (p *Pool) teardown() error {
	if p.buffer != nil {
		if err := p.buffer.Destroy(); err != nil {
			return err
		}
		p.buffer = nil
	}
	if p.pool != nil {
		if err := p.pool.Destroy(); err != nil {
			return err
		}
		p.pool = nil
	}
	return p.file.Close()
}
