package freeze

import (
	"fmt"
	"log"

	"github.com/Jappie3/wayfreeze/shm"
	"github.com/Jappie3/wayfreeze/wlproto"
)

// requestCaptures starts a screencopy frame per output, each backed by
// a pool sized for the output's full physical extent. The server then
// describes the buffer parameters it wants before any copy happens.
func (f *Freezer) requestCaptures() error {
	log.Printf("> Processing %d output(s)", len(f.outputs))

	overlayCursor := int32(1)
	if f.opts.HideCursor {
		overlayCursor = 0
	}

	for _, rec := range f.outputs {
		pool, err := f.newPool(shm.PoolSize(rec.physWidth, rec.physHeight))
		if err != nil {
			return fmt.Errorf("shm pool for output %d: %w", rec.index, err)
		}
		rec.pool = pool

		frame, err := f.newCaptureFrame(rec.output, rec.index, overlayCursor)
		if err != nil {
			return fmt.Errorf("capture of output %d: %w", rec.index, err)
		}
		rec.frame = frame
		rec.state = stateCaptureRequested
	}
	return nil
}

func supportedFormat(format uint32) bool {
	switch format {
	case wlproto.FormatARGB8888, wlproto.FormatXRGB8888,
		wlproto.FormatABGR8888, wlproto.FormatXBGR8888:
		return true
	}
	return false
}

// handleFrameBuffer answers the server's buffer parameters with a
// wl_buffer carved from the output's pool. The server-chosen stride
// may exceed width*4; the pool grows to fit when it does.
func (f *Freezer) handleFrameBuffer(index int, format, width, height, stride uint32) {
	rec := f.outputAt(index)
	if rec == nil || rec.pool == nil {
		log.Printf("buffer parameters for unknown output %d", index)
		return
	}
	if !supportedFormat(format) {
		log.Printf("Unsupported pixel format %#x for output %d", format, index)
		rec.state = stateFailed
		f.exit = true
		return
	}

	buf, err := rec.pool.CreateBuffer(int32(width), int32(height), int32(stride), format)
	if err != nil {
		log.Printf("buffer for output %d: %v", index, err)
		rec.state = stateFailed
		f.exit = true
		return
	}
	rec.buffer = buf
	if rec.state == stateCaptureRequested {
		rec.state = stateBufferDescribed
	}
}

// handleFrameBufferDone means the server is finished describing buffer
// options; the copy into our buffer can be submitted.
func (f *Freezer) handleFrameBufferDone(index int) {
	rec := f.outputAt(index)
	if rec == nil || rec.frame == nil {
		log.Printf("buffer-done for unknown output %d", index)
		return
	}
	if rec.buffer == nil {
		log.Printf("buffer-done for output %d before any buffer parameters", index)
		return
	}
	if err := rec.frame.Copy(rec.buffer); err != nil {
		log.Printf("copy for output %d: %v", index, err)
		rec.state = stateFailed
		f.exit = true
		return
	}
	if rec.state == stateBufferDescribed {
		rec.state = stateCopySubmitted
	}
}

func (f *Freezer) handleFrameReady(index int) {
	rec := f.outputAt(index)
	if rec == nil {
		log.Printf("frame-ready for unknown output %d", index)
		return
	}
	if rec.frameReady {
		return
	}
	rec.frameReady = true
	if rec.state == stateCopySubmitted {
		rec.state = stateFrameReady
	}
	f.framesReady++
	if rec.configured {
		f.present(rec)
	}
}

// A failed capture aborts the whole run: a frozen screen with one live
// monitor would be worse than no freeze at all.
func (f *Freezer) handleFrameFailed(index int) {
	rec := f.outputAt(index)
	if rec == nil {
		log.Printf("frame-failed for unknown output %d", index)
		return
	}
	log.Printf("Failed to capture output %d", index)
	rec.state = stateFailed
	f.exit = true
}
