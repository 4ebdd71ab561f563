package freeze

import (
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/bnema/wlturbo"

	"github.com/Jappie3/wayfreeze/config"
	"github.com/Jappie3/wayfreeze/input"
	"github.com/Jappie3/wayfreeze/wlproto"
)

type fakeObject uint32

func (o fakeObject) ID() uint32 { return uint32(o) }

// fakeSurface records every request in order so tests can assert on
// commit/attach ordering.
type fakeSurface struct {
	id  uint32
	ops []string
}

func (s *fakeSurface) ID() uint32 { return s.id }
func (s *fakeSurface) Attach(buf wlturbo.Object, x, y int32) error {
	s.ops = append(s.ops, fmt.Sprintf("attach:%d", buf.ID()))
	return nil
}
func (s *fakeSurface) Commit() error {
	s.ops = append(s.ops, "commit")
	return nil
}
func (s *fakeSurface) SetBufferScale(scale int32) error {
	s.ops = append(s.ops, fmt.Sprintf("buffer-scale:%d", scale))
	return nil
}
func (s *fakeSurface) SetBufferTransform(transform int32) error {
	s.ops = append(s.ops, fmt.Sprintf("buffer-transform:%d", transform))
	return nil
}
func (s *fakeSurface) Destroy() error {
	s.ops = append(s.ops, "destroy")
	return nil
}

func (s *fakeSurface) commits() int {
	n := 0
	for _, op := range s.ops {
		if op == "commit" {
			n++
		}
	}
	return n
}

type fakeLayerSurface struct {
	acks      []uint32
	sizes     [][2]uint32
	anchors   []uint32
	zones     []int32
	keyboards []uint32
	destroyed bool
}

func (l *fakeLayerSurface) SetSize(width, height uint32) error {
	l.sizes = append(l.sizes, [2]uint32{width, height})
	return nil
}
func (l *fakeLayerSurface) SetAnchor(anchor uint32) error {
	l.anchors = append(l.anchors, anchor)
	return nil
}
func (l *fakeLayerSurface) SetExclusiveZone(zone int32) error {
	l.zones = append(l.zones, zone)
	return nil
}
func (l *fakeLayerSurface) SetKeyboardInteractivity(mode uint32) error {
	l.keyboards = append(l.keyboards, mode)
	return nil
}
func (l *fakeLayerSurface) AckConfigure(serial uint32) error {
	l.acks = append(l.acks, serial)
	return nil
}
func (l *fakeLayerSurface) Destroy() error {
	l.destroyed = true
	return nil
}

type fakeViewport struct {
	sources   int
	dests     [][2]int32
	destroyed bool
}

func (v *fakeViewport) SetSource(x, y, width, height wlturbo.Fixed) error {
	v.sources++
	return nil
}
func (v *fakeViewport) SetDestination(width, height int32) error {
	v.dests = append(v.dests, [2]int32{width, height})
	return nil
}
func (v *fakeViewport) Destroy() error {
	v.destroyed = true
	return nil
}

type fakeFrame struct {
	copied    []uint32
	destroyed bool
}

func (f *fakeFrame) Copy(buf wlturbo.Object) error {
	f.copied = append(f.copied, buf.ID())
	return nil
}
func (f *fakeFrame) Destroy() error {
	f.destroyed = true
	return nil
}

type bufferParams struct {
	width, height, stride int32
	format                uint32
}

type fakePool struct {
	size      int64
	created   []bufferParams
	buf       fakeObject
	destroyed bool
}

func (p *fakePool) CreateBuffer(width, height, stride int32, format uint32) (wlturbo.Object, error) {
	p.created = append(p.created, bufferParams{width, height, stride, format})
	return p.buf, nil
}
func (p *fakePool) Destroy() error {
	p.destroyed = true
	return nil
}

type fakeScaleSub struct{ destroyed bool }

func (s *fakeScaleSub) Destroy() error {
	s.destroyed = true
	return nil
}

// harness wires a Freezer to recording fakes and collects everything
// the state machine creates, indexed by output.
type harness struct {
	f         *Freezer
	surfaces  []*fakeSurface
	layers    []*fakeLayerSurface
	viewports []*fakeViewport
	scaleSubs []*fakeScaleSub
	pools     []*fakePool
	frames    []*fakeFrame
	spawned   []string
	slept     []time.Duration
}

func newHarness(opts *config.Options) *harness {
	h := &harness{}
	f := &Freezer{opts: opts, keymap: input.Default()}

	// Non-nil capability handles so the required-capability check
	// passes; the creation hooks below never touch them.
	f.caps = capabilities{
		compositor: &wlproto.Compositor{},
		shm:        &wlproto.Shm{},
		seat:       &wlproto.Seat{},
		xdgOutputs: &wlproto.XdgOutputManager{},
		viewporter: &wlproto.Viewporter{},
		fractional: &wlproto.FractionalScaleManager{},
		screencopy: &wlproto.ScreencopyManager{},
		layerShell: &wlproto.LayerShell{},
	}

	f.sleep = func(d time.Duration) { h.slept = append(h.slept, d) }
	f.readKeymap = func(fd int, size uint32) ([]byte, error) {
		return nil, fmt.Errorf("no keymap source")
	}
	f.spawn = func(cmd string) error {
		h.spawned = append(h.spawned, cmd)
		return nil
	}
	f.newSurface = func() (surface, error) {
		s := &fakeSurface{id: uint32(1000 + len(h.surfaces))}
		h.surfaces = append(h.surfaces, s)
		return s, nil
	}
	f.newXdgOutput = func(output wlturbo.Object, index int) error { return nil }
	f.newPool = func(size int64) (capturePool, error) {
		p := &fakePool{size: size, buf: fakeObject(2000 + len(h.pools))}
		h.pools = append(h.pools, p)
		return p, nil
	}
	f.newCaptureFrame = func(output wlturbo.Object, index int, overlayCursor int32) (captureFrame, error) {
		fr := &fakeFrame{}
		h.frames = append(h.frames, fr)
		return fr, nil
	}
	f.newLayerSurface = func(surf surface, output wlturbo.Object, index int) (layerSurface, error) {
		ls := &fakeLayerSurface{}
		h.layers = append(h.layers, ls)
		return ls, nil
	}
	f.newViewport = func(surf surface) (viewport, error) {
		vp := &fakeViewport{}
		h.viewports = append(h.viewports, vp)
		return vp, nil
	}
	f.newScaleSub = func(surf surface, index int) (scaleSubscription, error) {
		sub := &fakeScaleSub{}
		h.scaleSubs = append(h.scaleSubs, sub)
		return sub, nil
	}
	h.f = f
	return h
}

// addOutput walks a new output through discovery: mode, geometry and
// logical size, same order the server sends them.
func (h *harness) addOutput(physW, physH, logW, logH int32) int {
	rec := h.f.addOutput(fakeObject(100 + len(h.f.outputs)))
	h.f.handleOutputMode(rec.index, physW, physH)
	h.f.handleOutputGeometry(rec.index, wlproto.TransformNormal)
	h.f.handleLogicalSize(rec.index, logW, logH)
	return rec.index
}

// captureOutput replays the server side of a successful capture for
// one output: buffer parameters, buffer-done, ready.
func (h *harness) captureOutput(t *testing.T, index int, w, hgt uint32) {
	t.Helper()
	h.f.handleFrameBuffer(index, wlproto.FormatXRGB8888, w, hgt, w*4)
	h.f.handleFrameBufferDone(index)
	h.f.handleFrameReady(index)
}

// script returns dispatch/roundtrip hooks that pop one step per call
// and fail the test when the machine asks for events the script does
// not have.
func (h *harness) script(t *testing.T, roundtrip func(), steps ...func()) {
	t.Helper()
	h.f.roundtrip = func() error {
		roundtrip()
		return nil
	}
	h.f.dispatch = func() error {
		if len(steps) == 0 {
			return fmt.Errorf("dispatch called with no scripted events left")
		}
		step := steps[0]
		steps = steps[1:]
		step()
		return nil
	}
}

func TestGeometryCounter(t *testing.T) {
	h := newHarness(config.Default())

	h.addOutput(1920, 1080, 1920, 1080)
	if h.f.geometryReady != 1 {
		t.Fatalf("geometryReady = %d, want 1", h.f.geometryReady)
	}

	// A repeated logical-size event must not bump the counter again.
	h.f.handleLogicalSize(0, 1920, 1080)
	if h.f.geometryReady != 1 {
		t.Errorf("geometryReady after duplicate = %d, want 1", h.f.geometryReady)
	}

	h.addOutput(2560, 1440, 2560, 1440)
	if h.f.geometryReady != 2 {
		t.Errorf("geometryReady = %d, want 2", h.f.geometryReady)
	}
	if len(h.surfaces) != 2 {
		t.Errorf("surfaces created = %d, want 2", len(h.surfaces))
	}
}

func TestFramesCounter(t *testing.T) {
	h := newHarness(config.Default())
	h.addOutput(1920, 1080, 1920, 1080)
	if err := h.f.requestCaptures(); err != nil {
		t.Fatalf("requestCaptures: %v", err)
	}

	h.captureOutput(t, 0, 1920, 1080)
	if h.f.framesReady != 1 {
		t.Fatalf("framesReady = %d, want 1", h.f.framesReady)
	}

	// Duplicate ready must not double-count.
	h.f.handleFrameReady(0)
	if h.f.framesReady != 1 {
		t.Errorf("framesReady after duplicate = %d, want 1", h.f.framesReady)
	}
}

func TestServerStrideRespected(t *testing.T) {
	h := newHarness(config.Default())
	h.addOutput(1920, 1080, 1920, 1080)
	if err := h.f.requestCaptures(); err != nil {
		t.Fatalf("requestCaptures: %v", err)
	}

	// Server pads rows: stride 7936 > 1920*4.
	h.f.handleFrameBuffer(0, wlproto.FormatARGB8888, 1920, 1080, 7936)

	created := h.pools[0].created
	if len(created) != 1 {
		t.Fatalf("buffers created = %d, want 1", len(created))
	}
	if created[0].stride != 7936 {
		t.Errorf("stride = %d, want the server-reported 7936", created[0].stride)
	}
}

func TestUnsupportedFormatAborts(t *testing.T) {
	h := newHarness(config.Default())
	h.addOutput(1920, 1080, 1920, 1080)
	if err := h.f.requestCaptures(); err != nil {
		t.Fatalf("requestCaptures: %v", err)
	}

	h.f.handleFrameBuffer(0, 0x48344241 /* some packed float format */, 1920, 1080, 1920*8)

	if !h.f.exit {
		t.Error("unsupported format should set the exit flag")
	}
	if len(h.pools[0].created) != 0 {
		t.Error("no buffer should be created for an unsupported format")
	}
	if h.f.outputs[0].state != stateFailed {
		t.Errorf("state = %v, want failed", h.f.outputs[0].state)
	}
}

func TestCaptureFailureAborts(t *testing.T) {
	h := newHarness(config.Default())
	h.addOutput(1920, 1080, 1920, 1080)
	if err := h.f.requestCaptures(); err != nil {
		t.Fatalf("requestCaptures: %v", err)
	}

	h.f.handleFrameFailed(0)

	if !h.f.exit {
		t.Error("capture failure should set the exit flag")
	}
	if h.f.outputs[0].state != stateFailed {
		t.Errorf("state = %v, want failed", h.f.outputs[0].state)
	}
}

// TestPresentOrdering covers the commit discipline: the buffer is only
// attached after the surface's configure has been acknowledged AND the
// frame is ready, with a buffer-less commit in between.
func TestPresentOrdering(t *testing.T) {
	h := newHarness(config.Default())
	h.addOutput(1920, 1080, 1920, 1080)
	if err := h.f.requestCaptures(); err != nil {
		t.Fatalf("requestCaptures: %v", err)
	}
	h.captureOutput(t, 0, 1920, 1080)
	if err := h.f.createOverlays(); err != nil {
		t.Fatalf("createOverlays: %v", err)
	}

	surf := h.surfaces[0]
	preConfigure := len(surf.ops)

	h.f.handleConfigure(0, 42)

	want := []string{"commit", "attach:2000", "buffer-scale:1", "buffer-transform:0", "commit"}
	got := surf.ops[preConfigure:]
	if len(got) != len(want) {
		t.Fatalf("ops after configure = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ops after configure = %v, want %v", got, want)
		}
	}

	if h.f.surfacesConfigured != 1 {
		t.Errorf("surfacesConfigured = %d, want 1", h.f.surfacesConfigured)
	}
	if h.f.outputs[0].state != statePresented {
		t.Errorf("state = %v, want presented", h.f.outputs[0].state)
	}
}

// TestConfigureBeforeFrame drives the events in the opposite order:
// the configure arrives first, presentation waits for the frame.
func TestConfigureBeforeFrame(t *testing.T) {
	h := newHarness(config.Default())
	h.addOutput(1920, 1080, 1920, 1080)
	if err := h.f.requestCaptures(); err != nil {
		t.Fatalf("requestCaptures: %v", err)
	}
	if err := h.f.createOverlays(); err != nil {
		t.Fatalf("createOverlays: %v", err)
	}

	h.f.handleConfigure(0, 7)
	if h.f.surfacesConfigured != 0 {
		t.Fatal("must not present before the frame is ready")
	}

	h.captureOutput(t, 0, 1920, 1080)
	if h.f.surfacesConfigured != 1 {
		t.Errorf("surfacesConfigured = %d, want 1", h.f.surfacesConfigured)
	}
}

func TestFirstAckWins(t *testing.T) {
	h := newHarness(config.Default())
	h.addOutput(1920, 1080, 1920, 1080)
	if err := h.f.requestCaptures(); err != nil {
		t.Fatalf("requestCaptures: %v", err)
	}
	h.captureOutput(t, 0, 1920, 1080)
	if err := h.f.createOverlays(); err != nil {
		t.Fatalf("createOverlays: %v", err)
	}

	h.f.handleConfigure(0, 5)
	h.f.handleConfigure(0, 6)
	h.f.handleConfigure(0, 7)

	ls := h.layers[0]
	if len(ls.acks) != 1 || ls.acks[0] != 5 {
		t.Errorf("acks = %v, want exactly [5]", ls.acks)
	}
	if got := h.f.outputs[0].configuredSerial; got != 5 {
		t.Errorf("configuredSerial = %d, want 5", got)
	}
	if h.f.surfacesConfigured != 1 {
		t.Errorf("surfacesConfigured = %d, want 1", h.f.surfacesConfigured)
	}
}

func TestOverlayAttributes(t *testing.T) {
	h := newHarness(config.Default())
	h.addOutput(1920, 1080, 1920, 1080)
	if err := h.f.requestCaptures(); err != nil {
		t.Fatalf("requestCaptures: %v", err)
	}
	if err := h.f.createOverlays(); err != nil {
		t.Fatalf("createOverlays: %v", err)
	}

	ls := h.layers[0]
	if len(ls.anchors) != 1 || ls.anchors[0] != wlproto.AnchorAll {
		t.Errorf("anchors = %v, want all four edges", ls.anchors)
	}
	if len(ls.zones) != 1 || ls.zones[0] != -1 {
		t.Errorf("exclusive zones = %v, want [-1]", ls.zones)
	}
	if len(ls.keyboards) != 1 || ls.keyboards[0] != wlproto.KeyboardInteractivityExclusive {
		t.Errorf("keyboard interactivity = %v, want exclusive", ls.keyboards)
	}
	if got := h.surfaces[0].commits(); got != 1 {
		t.Errorf("commits before configure = %d, want the initial buffer-less one", got)
	}
}

func TestScaleChanges(t *testing.T) {
	h := newHarness(config.Default())
	h.addOutput(2560, 1440, 2560, 1440)
	if err := h.f.requestCaptures(); err != nil {
		t.Fatalf("requestCaptures: %v", err)
	}
	h.captureOutput(t, 0, 2560, 1440)
	if err := h.f.createOverlays(); err != nil {
		t.Fatalf("createOverlays: %v", err)
	}
	h.f.handleConfigure(0, 1)

	base := h.surfaces[0].commits()

	// Scale 1.0 matches the implicit starting scale: no re-commit.
	h.f.handlePreferredScale(0, 120)
	if got := h.surfaces[0].commits(); got != base {
		t.Fatalf("commits after scale 120 = %d, want %d", got, base)
	}

	// 1.5 is a change: one resize, one commit.
	h.f.handlePreferredScale(0, 180)
	if got := h.surfaces[0].commits(); got != base+1 {
		t.Errorf("commits after scale 180 = %d, want %d", got, base+1)
	}
	ls := h.layers[0]
	if len(ls.sizes) != 1 || ls.sizes[0] != [2]uint32{2560, 1440} {
		t.Errorf("sizes = %v, want one resize to 2560x1440", ls.sizes)
	}
	if h.viewports[0].sources != 1 {
		t.Errorf("viewport sources set = %d, want 1", h.viewports[0].sources)
	}
	if len(h.viewports[0].dests) != 1 || h.viewports[0].dests[0] != [2]int32{2560, 1440} {
		t.Errorf("viewport destinations = %v, want [[2560 1440]]", h.viewports[0].dests)
	}

	// Repeating the same value must not re-commit.
	h.f.handlePreferredScale(0, 180)
	if got := h.surfaces[0].commits(); got != base+1 {
		t.Errorf("commits after repeated scale = %d, want %d", got, base+1)
	}
}

// A layout that moves Escape off its evdev position: keycode 9 types
// grave, keycode 24 is Escape.
const remappedKeymap = `xkb_keymap {
	xkb_keycodes "remap" {
		<TLDE> = 9;
		<AD01> = 24;
	};
	xkb_symbols "remap(custom)" {
		key <TLDE> { [ grave, asciitilde ] };
		key <AD01> { [ Escape ] };
	};
};`

// TestKeymapCompiled checks that a delivered keymap description
// replaces the evdev core table, so a compositor-remapped Escape is
// honored and the stale evdev position is not.
func TestKeymapCompiled(t *testing.T) {
	h := newHarness(config.Default())
	desc := []byte(remappedKeymap)
	h.f.readKeymap = func(fd int, size uint32) ([]byte, error) {
		if fd != 5 {
			t.Errorf("readKeymap fd = %d, want 5", fd)
		}
		if size != uint32(len(desc)) {
			t.Errorf("readKeymap size = %d, want %d", size, len(desc))
		}
		return desc, nil
	}

	h.f.handleKeymap(wlproto.KeymapFormatXkbV1, uint32(len(desc)), 5)

	h.f.handleKey(1, wlproto.KeyPressed) // keycode 9, no longer Escape
	if h.f.exit {
		t.Fatal("remapped layout: keycode 9 must not exit")
	}
	h.f.handleKey(16, wlproto.KeyPressed) // keycode 24, now Escape
	if !h.f.exit {
		t.Error("remapped Escape must trigger exit")
	}
}

// TestKeymapFallback covers the paths that keep the evdev core table:
// no description fd, an unreadable description, an uncompilable one,
// and an unknown keymap format.
func TestKeymapFallback(t *testing.T) {
	tests := []struct {
		name   string
		format uint32
		fd     int
		desc   []byte
	}{
		{"no fd surfaced", wlproto.KeymapFormatXkbV1, -1, nil},
		{"read failure", wlproto.KeymapFormatXkbV1, 5, nil},
		{"uncompilable description", wlproto.KeymapFormatXkbV1, 5, []byte("not an xkb keymap")},
		{"unknown format", wlproto.KeymapFormatNone, 5, []byte(remappedKeymap)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(config.Default())
			if tt.desc != nil {
				h.f.readKeymap = func(fd int, size uint32) ([]byte, error) {
					return tt.desc, nil
				}
			}

			h.f.handleKeymap(tt.format, 64, tt.fd)

			h.f.handleKey(1, wlproto.KeyPressed) // evdev Escape
			if !h.f.exit {
				t.Error("evdev core table must stay in effect")
			}
		})
	}
}

func TestExitTriggers(t *testing.T) {
	tests := []struct {
		name string
		fire func(f *Freezer)
		want bool
	}{
		{"escape press", func(f *Freezer) { f.handleKey(1, wlproto.KeyPressed) }, true},
		{"escape release", func(f *Freezer) { f.handleKey(1, wlproto.KeyReleased) }, false},
		{"other key press", func(f *Freezer) { f.handleKey(30, wlproto.KeyPressed) }, false},
		{"button release", func(f *Freezer) { f.handlePointerButton(wlproto.PointerButtonReleased) }, true},
		{"button press", func(f *Freezer) { f.handlePointerButton(wlproto.PointerButtonPressed) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(config.Default())
			tt.fire(h.f)
			if h.f.exit != tt.want {
				t.Errorf("exit = %v, want %v", h.f.exit, tt.want)
			}
		})
	}
}

func TestZeroOutputsFatal(t *testing.T) {
	h := newHarness(config.Default())
	h.script(t, func() {})

	err := h.f.Freeze()
	if err == nil {
		t.Fatal("Freeze should fail with zero outputs")
	}
	if len(h.pools) != 0 {
		t.Error("no capture must be requested when there are no outputs")
	}
}

func TestMissingCapabilityFatal(t *testing.T) {
	h := newHarness(config.Default())
	h.f.caps.screencopy = nil
	h.script(t, func() {
		h.addOutput(1920, 1080, 1920, 1080)
	})

	if err := h.f.Freeze(); err == nil {
		t.Fatal("Freeze should fail when a required capability is missing")
	}
}

func TestHideCursorFlag(t *testing.T) {
	tests := []struct {
		name string
		hide bool
		want int32
	}{
		{"cursor shown", false, 1},
		{"cursor hidden", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := config.Default()
			opts.HideCursor = tt.hide
			h := newHarness(opts)
			var got int32 = -1
			h.f.newCaptureFrame = func(output wlturbo.Object, index int, overlayCursor int32) (captureFrame, error) {
				got = overlayCursor
				return &fakeFrame{}, nil
			}
			h.addOutput(1920, 1080, 1920, 1080)
			if err := h.f.requestCaptures(); err != nil {
				t.Fatalf("requestCaptures: %v", err)
			}
			if got != tt.want {
				t.Errorf("overlay_cursor = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFreezeCommands(t *testing.T) {
	opts := config.Default()
	opts.BeforeFreezeCmd = "notify-send before"
	opts.BeforeFreezeTimeout = 50
	opts.AfterFreezeCmd = "notify-send after"
	opts.AfterFreezeTimeout = 75

	h := newHarness(opts)
	h.script(t,
		func() { h.addOutput(1920, 1080, 1920, 1080) },
		func() { h.captureOutput(t, 0, 1920, 1080) },
		func() { h.f.handleConfigure(0, 1) },
		func() { h.f.handleKey(1, wlproto.KeyPressed) },
	)

	if err := h.f.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	if len(h.spawned) != 2 || h.spawned[0] != "notify-send before" || h.spawned[1] != "notify-send after" {
		t.Errorf("spawned = %v, want before then after", h.spawned)
	}
	if len(h.slept) != 2 || h.slept[0] != 50*time.Millisecond || h.slept[1] != 75*time.Millisecond {
		t.Errorf("slept = %v, want [50ms 75ms]", h.slept)
	}
}

// TestCloseTearsDownUnit checks that a server-side close destroys all
// four presentation objects of that output together.
func TestCloseTearsDownUnit(t *testing.T) {
	h := newHarness(config.Default())
	h.addOutput(1920, 1080, 1920, 1080)
	if err := h.f.requestCaptures(); err != nil {
		t.Fatalf("requestCaptures: %v", err)
	}
	if err := h.f.createOverlays(); err != nil {
		t.Fatalf("createOverlays: %v", err)
	}

	h.f.handleClosed(0)

	if !h.scaleSubs[0].destroyed || !h.viewports[0].destroyed || !h.layers[0].destroyed {
		t.Error("scale subscription, viewport and layer surface must all be destroyed")
	}
	last := h.surfaces[0].ops[len(h.surfaces[0].ops)-1]
	if last != "destroy" {
		t.Errorf("surface last op = %q, want destroy", last)
	}
	if h.f.outputs[0].state != stateClosed {
		t.Errorf("state = %v, want closed", h.f.outputs[0].state)
	}
	if h.f.exit {
		t.Error("a single closed overlay must not exit the session")
	}
}

func TestGlobalRemoveClearsHandle(t *testing.T) {
	h := newHarness(config.Default())
	h.f.caps.screencopyName = 17

	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, 17)
	h.f.handleGlobalRemove(payload)

	if h.f.caps.screencopy != nil {
		t.Error("revoked capability handle must be cleared")
	}
	if h.f.caps.layerShell == nil {
		t.Error("other capabilities must stay bound")
	}
}

// TestFreezeTwoOutputs runs the whole session against a scripted
// server with a 1920x1080 and a 2560x1440 output, including a late
// scale change on the second output.
func TestFreezeTwoOutputs(t *testing.T) {
	h := newHarness(config.Default())
	h.script(t,
		func() {
			h.addOutput(1920, 1080, 1920, 1080)
			h.addOutput(2560, 1440, 2560, 1440)
		},
		func() {
			h.captureOutput(t, 0, 1920, 1080)
			h.captureOutput(t, 1, 2560, 1440)
		},
		func() {
			h.f.handleConfigure(0, 10)
			h.f.handleConfigure(1, 11)
		},
		func() {
			h.f.handlePreferredScale(0, 120)
			h.f.handlePreferredScale(1, 120)
		},
		func() { h.f.handlePreferredScale(1, 180) },
		func() { h.f.handleKey(1, wlproto.KeyPressed) },
	)

	if err := h.f.Freeze(); err != nil {
		t.Fatalf("Freeze: %v", err)
	}

	if len(h.pools) != 2 {
		t.Fatalf("pools = %d, want 2", len(h.pools))
	}
	if h.pools[0].size != 1920*1080*4 {
		t.Errorf("pool 0 size = %d, want %d", h.pools[0].size, 1920*1080*4)
	}
	if h.pools[1].size != 2560*1440*4 {
		t.Errorf("pool 1 size = %d, want %d", h.pools[1].size, 2560*1440*4)
	}

	if got := h.frames[0].copied; len(got) != 1 || got[0] != 2000 {
		t.Errorf("frame 0 copies = %v, want its own buffer", got)
	}
	if got := h.frames[1].copied; len(got) != 1 || got[0] != 2001 {
		t.Errorf("frame 1 copies = %v, want its own buffer", got)
	}

	if h.f.surfacesConfigured != 2 {
		t.Errorf("surfacesConfigured = %d, want 2", h.f.surfacesConfigured)
	}

	// Scale 120 matches the starting scale on both outputs; only the
	// second output's change to 180 causes a resize and re-commit.
	if len(h.layers[0].sizes) != 0 {
		t.Errorf("output 0 resized %v times, want none", h.layers[0].sizes)
	}
	if len(h.layers[1].sizes) != 1 || h.layers[1].sizes[0] != [2]uint32{2560, 1440} {
		t.Errorf("output 1 sizes = %v, want one resize to 2560x1440", h.layers[1].sizes)
	}

	// commits per surface: initial buffer-less, ack, presentation.
	if got := h.surfaces[0].commits(); got != 3 {
		t.Errorf("output 0 commits = %d, want 3", got)
	}
	if got := h.surfaces[1].commits(); got != 4 {
		t.Errorf("output 1 commits = %d, want 4 (one extra for the scale change)", got)
	}

	for i, rec := range h.f.outputs {
		if rec.state != statePresented {
			t.Errorf("output %d state = %v, want presented", i, rec.state)
		}
	}
}
