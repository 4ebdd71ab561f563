package input

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

// A trimmed but structurally faithful xkb v1 keymap, the format
// compositors deliver through wl_keyboard.keymap.
const sampleKeymap = `xkb_keymap {
	xkb_keycodes "evdev+aliases(qwerty)" {
		minimum = 8;
		maximum = 255;
		<ESC>  = 9;
		<AE01> = 10;
		<AD01> = 24;
		<RTRN> = 36;
		<AC01> = 38;
		alias <LatQ> = <AD01>;
		indicator 1 = "Caps Lock";
	};
	xkb_types "complete" {
		type "TWO_LEVEL" {
			modifiers = Shift;
			map[Shift] = Level2;
			level_name[Level1] = "Base";
		};
	};
	xkb_compat "complete" {
		interpret Escape { action = Terminate(); };
	};
	xkb_symbols "pc+us+inet(evdev)" {
		name[group1] = "English (US)";
		key <ESC>  { [ Escape ] };
		key <AE01> { [ 1, exclam ] };
		key <AD01> { type = "ALPHABETIC", symbols[Group1] = [ q, Q ] };
		key <RTRN> { [ Return ] };
		key <AC01> { [ a, A ] };
	};
};`

func TestCompileLookup(t *testing.T) {
	km, err := Compile([]byte(sampleKeymap))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	tests := []struct {
		name string
		code uint32
		want string
	}{
		{"escape", 9, "Escape"},
		{"digit row", 10, "1"},
		{"letter", 24, "q"},
		{"return", 36, "Return"},
		{"undefined code", 200, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := km.Lookup(tt.code); got != tt.want {
				t.Errorf("Lookup(%d) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestCompileAlias(t *testing.T) {
	km, err := Compile([]byte(sampleKeymap))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	// <LatQ> is an alias of <AD01>; both resolve through code 24.
	if got := km.Lookup(24); got != "q" {
		t.Errorf("Lookup(24) through alias target = %q, want %q", got, "q")
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		desc string
	}{
		{"empty", ""},
		{"no keycodes", `xkb_keymap { xkb_symbols "x" { key <ESC> { [ Escape ] }; }; };`},
		{"no symbols", `xkb_keymap { xkb_keycodes "x" { <ESC> = 9; }; };`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile([]byte(tt.desc)); err == nil {
				t.Error("Compile should fail")
			}
		})
	}
}

// TestMapDescription round-trips a description through a real file
// descriptor the way the keymap event delivers one: NUL-terminated
// text, size including the terminator, fd consumed by the reader.
func TestMapDescription(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keymap")
	if err := os.WriteFile(path, []byte(sampleKeymap+"\x00"), 0o600); err != nil {
		t.Fatalf("writing keymap file: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening keymap file: %v", err)
	}
	defer f.Close()
	fd, err := unix.Dup(int(f.Fd()))
	if err != nil {
		t.Fatalf("dup: %v", err)
	}

	desc, err := MapDescription(fd, uint32(len(sampleKeymap)+1))
	if err != nil {
		t.Fatalf("MapDescription: %v", err)
	}
	if string(desc) != sampleKeymap {
		t.Error("mapped description does not match the delivered text")
	}

	km, err := Compile(desc)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := km.Lookup(9); got != "Escape" {
		t.Errorf("Lookup(9) = %q, want Escape", got)
	}
}

func TestMapDescriptionErrors(t *testing.T) {
	if _, err := MapDescription(5, 0); err == nil {
		t.Error("zero size should fail")
	}
	if _, err := MapDescription(-1, 64); err == nil {
		t.Error("bad fd should fail")
	}
}

// TestIsEscape checks the raw-hardware-code path used by key events:
// codes are offset by 8 before keymap resolution.
func TestIsEscape(t *testing.T) {
	km, err := Compile([]byte(sampleKeymap))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	tests := []struct {
		name string
		km   *Keymap
		raw  uint32
		want bool
	}{
		{"compiled escape", km, 1, true},       // raw 1 + 8 = keycode 9
		{"compiled non-escape", km, 16, false}, // keycode 24 = q
		{"default escape", Default(), 1, true},
		{"default non-escape", Default(), 28, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.km.IsEscape(tt.raw); got != tt.want {
				t.Errorf("IsEscape(%d) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
