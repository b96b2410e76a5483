package board

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smazurov/gpiosample/internal/gpio"
)

func TestResolve_BuiltinBoards(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		identity string
		name     string
		button   int
		led      int
		image    string
	}{
		{"ccimx6sbc", "ccimx6sbc", 37, 34, "ccimx6_sbc_board"},
		{"ccimx8xsbcpro", "ccimx8xsbcpro", 148, 479, "ccimx8x_sbc_pro_board"},
		{"ccimx8x-sbc-pro", "ccimx8xsbcpro", 148, 479, "ccimx8x_sbc_pro_board"},
		{"ccimx8mmdvk", "ccimx8mmdvk", 52, 51, "ccimx8x_sbc_pro_board"},
		{"  CCIMX6SBC\n", "ccimx6sbc", 37, 34, "ccimx6_sbc_board"},
	}

	for _, tt := range tests {
		t.Run(tt.identity, func(t *testing.T) {
			p, err := table.Resolve(tt.identity)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if p.Name != tt.name || p.ButtonLine != tt.button || p.LEDLine != tt.led || p.BoardImage() != tt.image {
				t.Errorf("Resolve(%q) = %+v", tt.identity, p)
			}
			if p.Polarity != ActiveHigh {
				t.Errorf("Polarity = %q, want active-high", p.Polarity)
			}
			if p.ButtonMode() != gpio.ModeEdgeBoth {
				t.Errorf("ButtonMode() = %v, want both edges", p.ButtonMode())
			}
		})
	}
}

func TestResolve_IsPure(t *testing.T) {
	table := DefaultTable()
	a, errA := table.Resolve("ccimx8mmdvk")
	b, errB := table.Resolve("ccimx8mmdvk")
	if errA != nil || errB != nil {
		t.Fatalf("Resolve() errors = %v, %v", errA, errB)
	}
	if a.Name != b.Name || a.ButtonLine != b.ButtonLine || a.LEDLine != b.LEDLine || a.Image != b.Image {
		t.Errorf("repeated Resolve() differ: %+v vs %+v", a, b)
	}
}

func TestResolve_Unknown(t *testing.T) {
	table := DefaultTable()

	for _, id := range []string{"raspberrypi4", "", "   "} {
		_, err := table.Resolve(id)
		if !errors.Is(err, ErrUnknownBoard) {
			t.Errorf("Resolve(%q) error = %v, want ErrUnknownBoard", id, err)
		}
		var berr *Error
		if !errors.As(err, &berr) || berr.Code != ErrCodeUnknownBoard {
			t.Errorf("Resolve(%q) error code = %v, want %s", id, err, ErrCodeUnknownBoard)
		}
	}
}

func TestProfile_LitLevel(t *testing.T) {
	if !(Profile{Polarity: ActiveHigh}).LitLevel() {
		t.Error("active-high LED should light on high level")
	}
	if (Profile{Polarity: ActiveLow}).LitLevel() {
		t.Error("active-low LED should light on low level")
	}
}

func TestProfile_DefaultImage(t *testing.T) {
	if got := (Profile{}).BoardImage(); got != DefaultImage {
		t.Errorf("BoardImage() = %q, want %q", got, DefaultImage)
	}
}

func TestNewTable_Validation(t *testing.T) {
	valid := Profile{
		Name:       "custom",
		Identities: []string{"custom"},
		ButtonLine: 1,
		LEDLine:    2,
		Polarity:   ActiveLow,
		ButtonEdge: EdgeFalling,
	}

	tests := []struct {
		name    string
		mutate  func(p *Profile)
		wantErr bool
	}{
		{"valid", func(*Profile) {}, false},
		{"no name", func(p *Profile) { p.Name = "" }, true},
		{"no identities", func(p *Profile) { p.Identities = nil }, true},
		{"empty identity", func(p *Profile) { p.Identities = []string{" "} }, true},
		{"bad polarity", func(p *Profile) { p.Polarity = "sideways" }, true},
		{"bad edge", func(p *Profile) { p.ButtonEdge = "none" }, true},
		{"negative line", func(p *Profile) { p.LEDLine = -1 }, true},
		{"shared line", func(p *Profile) { p.LEDLine = p.ButtonLine }, true},
		{"identity clash", func(p *Profile) { p.Identities = []string{"ccimx6sbc"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			p.Identities = append([]string(nil), valid.Identities...)
			tt.mutate(&p)
			_, err := DefaultTable().Merge(p)
			if (err != nil) != tt.wantErr {
				t.Errorf("Merge() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var berr *Error
				if !errors.As(err, &berr) || berr.Code != ErrCodeInvalidTable {
					t.Errorf("error %v is not an INVALID_TABLE board error", err)
				}
			}
		})
	}
}

func TestLoadTable_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boards.toml")
	doc := `
[[board]]
name = "ccimx6sbc"
identities = ["ccimx6sbc"]
button_line = 40
led_line = 41
polarity = "active-low"
image = "custom_board"

[[board]]
name = "ccimx93dvk"
identities = ["ccimx93-dvk"]
button_line = 10
button_chip = "gpiochip0"
button_offset = 10
led_line = 11
led_chip = "gpiochip0"
led_offset = 11
button_edge = "falling"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}

	if n := len(table.Profiles()); n != 4 {
		t.Errorf("got %d profiles, want 4", n)
	}

	p, err := table.Resolve("ccimx6sbc")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if p.ButtonLine != 40 || p.Polarity != ActiveLow || p.ButtonEdge != EdgeBoth {
		t.Errorf("override not applied: %+v", p)
	}

	p, err = table.Resolve("CCIMX93-DVK")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !p.NeedsReleasePoll() || p.Polarity != ActiveHigh || p.BoardImage() != DefaultImage {
		t.Errorf("new board = %+v", p)
	}
	if spec := p.LEDSpec(); spec.Chip != "gpiochip0" || spec.Offset != 11 {
		t.Errorf("LEDSpec() = %+v", spec)
	}
}

func TestLoadTable_Errors(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadTable() on missing file should fail")
	}
	if _, err := ParseTable([]byte("[[board]\nname=")); err == nil {
		t.Error("ParseTable() on malformed TOML should fail")
	}
	if table, err := LoadTable(""); err != nil || len(table.Profiles()) != 3 {
		t.Errorf("LoadTable(\"\") = %v, %v; want built-in table", table, err)
	}
}
