package board

import (
	"fmt"
	"sort"
	"strings"
)

// Table maps board identities to profiles. It is built once at startup
// and only read afterwards.
type Table struct {
	profiles map[string]Profile // name -> profile
	index    map[string]string  // normalized identity -> name
}

// NewTable builds a table from profiles. A later profile with the same
// name replaces an earlier one.
func NewTable(profiles ...Profile) (*Table, error) {
	t := &Table{
		profiles: make(map[string]Profile),
		index:    make(map[string]string),
	}
	for _, p := range profiles {
		if err := t.add(p); err != nil {
			return nil, NewError(ErrCodeInvalidTable, "invalid board profile", err)
		}
	}
	return t, nil
}

func (t *Table) add(p Profile) error {
	if err := p.validate(); err != nil {
		return err
	}

	if old, ok := t.profiles[p.Name]; ok {
		for _, id := range old.Identities {
			delete(t.index, normalize(id))
		}
	}

	for _, id := range p.Identities {
		key := normalize(id)
		if key == "" {
			return fmt.Errorf("board %q has an empty identity", p.Name)
		}
		if owner, taken := t.index[key]; taken && owner != p.Name {
			return fmt.Errorf("identity %q claimed by both %q and %q", id, owner, p.Name)
		}
		t.index[key] = p.Name
	}

	p.Identities = append([]string(nil), p.Identities...)
	t.profiles[p.Name] = p
	return nil
}

// Resolve returns the profile selected by identity. Matching ignores case
// and surrounding whitespace.
func (t *Table) Resolve(identity string) (Profile, error) {
	key := normalize(identity)
	if key == "" {
		return Profile{}, NewError(ErrCodeUnknownBoard, "empty board identity", ErrUnknownBoard)
	}
	name, ok := t.index[key]
	if !ok {
		return Profile{}, NewError(ErrCodeUnknownBoard, fmt.Sprintf("no profile for %q", strings.TrimSpace(identity)), ErrUnknownBoard)
	}
	return t.profiles[name], nil
}

// Profiles returns all profiles sorted by name.
func (t *Table) Profiles() []Profile {
	out := make([]Profile, 0, len(t.profiles))
	for _, p := range t.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Merge returns a new table holding t's profiles overridden by extra.
func (t *Table) Merge(extra ...Profile) (*Table, error) {
	return NewTable(append(t.Profiles(), extra...)...)
}

func normalize(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// DefaultTable returns the built-in ConnectCore boards.
func DefaultTable() *Table {
	t, err := NewTable(defaultProfiles...)
	if err != nil {
		panic(err)
	}
	return t
}

var defaultProfiles = []Profile{
	{
		Name:         "ccimx6sbc",
		Identities:   []string{"ccimx6sbc"},
		ButtonLine:   37,
		ButtonChip:   "gpiochip1",
		ButtonOffset: 5,
		LEDLine:      34,
		LEDChip:      "gpiochip1",
		LEDOffset:    2,
		Polarity:     ActiveHigh,
		ButtonEdge:   EdgeBoth,
		Image:        "ccimx6_sbc_board",
	},
	{
		Name:         "ccimx8xsbcpro",
		Identities:   []string{"ccimx8xsbcpro", "ccimx8x-sbc-pro"},
		ButtonLine:   148, // GPIO4_20
		ButtonChip:   "gpiochip4",
		ButtonOffset: 20,
		LEDLine:      479, // PTD5
		LEDChip:      "gpiochip7",
		LEDOffset:    5,
		Polarity:     ActiveHigh,
		ButtonEdge:   EdgeBoth,
		Image:        "ccimx8x_sbc_pro_board",
	},
	{
		Name:         "ccimx8mmdvk",
		Identities:   []string{"ccimx8mmdvk"},
		ButtonLine:   52, // GPIO2_IO20
		ButtonChip:   "gpiochip1",
		ButtonOffset: 20,
		LEDLine:      51, // GPIO2_IO19
		LEDChip:      "gpiochip1",
		LEDOffset:    19,
		Polarity:     ActiveHigh,
		ButtonEdge:   EdgeBoth,
		Image:        "ccimx8x_sbc_pro_board",
	},
}
