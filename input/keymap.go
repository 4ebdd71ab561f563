// Package input decodes keyboard and pointer input into the one
// decision wayfreeze has to make: should the overlay come down.
//
// Keyboards deliver raw hardware key codes that only a keymap can turn
// into symbolic keys. MapDescription reads a keymap description from
// the file descriptor the keymap event delivers it in; Compile builds
// the needed key table from the xkb v1 text; Default supplies the
// evdev core table for when no description is available.
package input

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// EvdevOffset is the fixed distance between the raw hardware key codes
// delivered by wl_keyboard.key and xkb keycodes.
const EvdevOffset = 8

// KeysymEscape is the symbolic name of the Escape key.
const KeysymEscape = "Escape"

// evdev KEY_ESC (1) plus the xkb offset.
const defaultEscapeCode = 1 + EvdevOffset

// Keymap maps xkb keycodes to the keysym they produce at the first
// shift level.
type Keymap struct {
	syms map[uint32]string
}

var (
	keycodeRe = regexp.MustCompile(`<([A-Za-z0-9+_-]+)>\s*=\s*(\d+)\s*;`)
	aliasRe   = regexp.MustCompile(`alias\s*<([A-Za-z0-9+_-]+)>\s*=\s*<([A-Za-z0-9+_-]+)>\s*;`)
	symbolsRe = regexp.MustCompile(`(?s)key\s*<([A-Za-z0-9+_-]+)>\s*\{(.*?)\}`)
	// The keysym list is either assigned ("symbols[Group1] = [ ... ]")
	// or bare ("{ [ ... ] }"); index brackets like [Group1] must not
	// be mistaken for it.
	symListRe  = regexp.MustCompile(`symbols\s*\[[^\]]*\]\s*=\s*\[([^\]]*)\]`)
	bareListRe = regexp.MustCompile(`[{=,]\s*\[([^\]]*)\]`)
)

// MapDescription reads a keymap description delivered as a file
// descriptor: the fd is mapped read-only, its contents copied out,
// and the mapping and fd released. size comes from the keymap event
// and is authoritative; it includes the terminating NUL, which is
// stripped from the returned text.
func MapDescription(fd int, size uint32) ([]byte, error) {
	if size == 0 {
		return nil, fmt.Errorf("zero-length keymap description")
	}
	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mapping keymap description: %w", err)
	}
	desc := make([]byte, size)
	copy(desc, data)
	unix.Munmap(data)
	unix.Close(fd)
	return bytes.TrimRight(desc, "\x00"), nil
}

// Compile builds a keymap from an xkb v1 text description: the
// keycodes section maps key names to codes, the symbols section maps
// key names to keysyms, and aliases bridge the two.
func Compile(description []byte) (*Keymap, error) {
	text := string(description)

	codes := make(map[string]uint32)
	for _, m := range keycodeRe.FindAllStringSubmatch(text, -1) {
		code, err := strconv.ParseUint(m[2], 10, 32)
		if err != nil {
			continue
		}
		codes[m[1]] = uint32(code)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("keymap has no keycode definitions")
	}
	for _, m := range aliasRe.FindAllStringSubmatch(text, -1) {
		if code, ok := codes[m[2]]; ok {
			codes[m[1]] = code
		}
	}

	syms := make(map[uint32]string)
	for _, m := range symbolsRe.FindAllStringSubmatch(text, -1) {
		code, ok := codes[m[1]]
		if !ok {
			continue
		}
		level := symListRe.FindStringSubmatch(m[2])
		if level == nil {
			level = bareListRe.FindStringSubmatch(m[2])
		}
		if level == nil {
			continue
		}
		first, _, _ := strings.Cut(level[1], ",")
		if sym := strings.TrimSpace(first); sym != "" {
			syms[code] = sym
		}
	}
	if len(syms) == 0 {
		return nil, fmt.Errorf("keymap has no symbol definitions")
	}

	return &Keymap{syms: syms}, nil
}

// Default returns the evdev core table, where Escape is keycode 9.
// Correct for every compositor that speaks the xkb v1 keymap format.
func Default() *Keymap {
	return &Keymap{syms: map[uint32]string{defaultEscapeCode: KeysymEscape}}
}

// Lookup resolves an xkb keycode to its first-level keysym name, or
// "" when the keymap does not define it.
func (k *Keymap) Lookup(code uint32) string {
	return k.syms[code]
}

// IsEscape reports whether the raw hardware key code from a keyboard
// event resolves to Escape.
func (k *Keymap) IsEscape(rawKey uint32) bool {
	return k.Lookup(rawKey+EvdevOffset) == KeysymEscape
}
