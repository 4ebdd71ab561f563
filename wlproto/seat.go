package wlproto

import (
	"fmt"

	"github.com/bnema/wlturbo"
)

// SeatInterface is the wl_seat global interface name.
const SeatInterface = "wl_seat"

const (
	opSeatGetPointer  = 0
	opSeatGetKeyboard = 1
)

const (
	evPointerButton = 3
)

const (
	evKeyboardKeymap = 0
	evKeyboardKey    = 3
)

// Pointer button states (wl_pointer.button_state).
const (
	PointerButtonReleased = 0
	PointerButtonPressed  = 1
)

// Key states (wl_keyboard.key_state).
const (
	KeyReleased = 0
	KeyPressed  = 1
)

// Keymap formats (wl_keyboard.keymap_format).
const (
	KeymapFormatNone  = 0
	KeymapFormatXkbV1 = 1
)

// Seat wraps the wl_seat global, the source of input devices.
type Seat struct {
	id uint32
	d  *wlturbo.Display
}

// BindSeat binds the advertised wl_seat global.
func BindSeat(d *wlturbo.Display, name, version uint32) (*Seat, error) {
	id, err := d.Registry().BindID(name, SeatInterface, version)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", SeatInterface, err)
	}
	return &Seat{id: id, d: d}, nil
}

// ID returns the seat's object ID.
func (s *Seat) ID() uint32 { return s.id }

// GetPointer requests the seat's pointer device.
func (s *Seat) GetPointer() (*Pointer, error) {
	id := s.d.AllocateID()
	if err := s.d.SendRequest(s.id, opSeatGetPointer, id); err != nil {
		return nil, fmt.Errorf("wl_seat.get_pointer: %w", err)
	}
	p := &Pointer{id: id, d: s.d}
	s.d.AddListener(id, evPointerButton, p.handleButton)
	return p, nil
}

// GetKeyboard requests the seat's keyboard device.
func (s *Seat) GetKeyboard() (*Keyboard, error) {
	id := s.d.AllocateID()
	if err := s.d.SendRequest(s.id, opSeatGetKeyboard, id); err != nil {
		return nil, fmt.Errorf("wl_seat.get_keyboard: %w", err)
	}
	k := &Keyboard{id: id, d: s.d}
	s.d.AddListener(id, evKeyboardKeymap, k.handleKeymap)
	s.d.AddListener(id, evKeyboardKey, k.handleKey)
	return k, nil
}

// Pointer wraps a wl_pointer device.
type Pointer struct {
	// Button delivers a pointer button press or release. state is one
	// of the PointerButton* constants.
	Button func(serial, time, button, state uint32)

	id uint32
	d  *wlturbo.Display
}

// ID returns the pointer's object ID.
func (p *Pointer) ID() uint32 { return p.id }

func (p *Pointer) handleButton(data []byte) {
	if p.Button == nil {
		return
	}
	r := eventReader{data: data}
	serial := r.uint32()
	t := r.uint32()
	button := r.uint32()
	state := r.uint32()
	p.Button(serial, t, button, state)
}

// Keyboard wraps a wl_keyboard device.
type Keyboard struct {
	// Keymap announces the keyboard mapping. The map description
	// itself travels in an out-of-band file descriptor; fd is -1 when
	// the transport did not surface it alongside the event payload.
	Keymap func(format, size uint32, fd int)
	// Key delivers a raw hardware key press or release. state is one
	// of the Key* constants.
	Key func(serial, time, key, state uint32)

	id uint32
	d  *wlturbo.Display
}

// ID returns the keyboard's object ID.
func (k *Keyboard) ID() uint32 { return k.id }

func (k *Keyboard) handleKeymap(data []byte) {
	if k.Keymap == nil {
		return
	}
	r := eventReader{data: data}
	format := r.uint32()
	size := r.uint32()
	// The description fd arrives as SCM_RIGHTS ancillary data, which
	// the transport's listener path does not deliver.
	k.Keymap(format, size, -1)
}

func (k *Keyboard) handleKey(data []byte) {
	if k.Key == nil {
		return
	}
	r := eventReader{data: data}
	serial := r.uint32()
	t := r.uint32()
	key := r.uint32()
	state := r.uint32()
	k.Key(serial, t, key, state)
}
