package board

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Well-known identity locations on Digi Embedded Yocto images.
const (
	MachineNamePath  = "/proc/device-tree/digi,machine,name"
	LegacyModVerPath = "/sys/kernel/ccimx6sbc/mod_ver"
	LegacyHWIDPath   = "/proc/device-tree/digi,hwid,hv"
)

// Source yields the identity string of the running board.
type Source interface {
	Identity() (string, error)
	String() string
}

// FileSource reads the identity from the first line of a pseudo-file.
type FileSource struct {
	Path string
}

func (s FileSource) Identity() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", NewError(ErrCodeNoIdentity, "cannot read "+s.Path, err)
	}
	line, _, _ := strings.Cut(string(data), "\n")
	id := strings.Trim(line, " \t\r\x00")
	if id == "" {
		return "", NewError(ErrCodeNoIdentity, s.Path+" is empty", ErrNoIdentity)
	}
	return id, nil
}

func (s FileSource) String() string { return "file:" + s.Path }

// MarkerSource reports a fixed identity when Path exists. Older kernels
// expose no machine name, only driver-specific files.
type MarkerSource struct {
	Path string
	As   string
}

func (s MarkerSource) Identity() (string, error) {
	if _, err := os.Stat(s.Path); err != nil {
		return "", NewError(ErrCodeNoIdentity, "marker "+s.Path+" not present", err)
	}
	return s.As, nil
}

func (s MarkerSource) String() string { return fmt.Sprintf("marker:%s=%s", s.Path, s.As) }

// StaticSource returns a configured identity.
type StaticSource string

func (s StaticSource) Identity() (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", NewError(ErrCodeNoIdentity, "no identity configured", ErrNoIdentity)
	}
	return string(s), nil
}

func (s StaticSource) String() string { return "static:" + string(s) }

// DefaultSources returns the detection chain used on target boards. A
// non-empty override is consulted first, then path (MachineNamePath when
// empty), then the legacy ccimx6sbc markers.
func DefaultSources(override, path string) []Source {
	if path == "" {
		path = MachineNamePath
	}
	var sources []Source
	if strings.TrimSpace(override) != "" {
		sources = append(sources, StaticSource(override))
	}
	return append(sources,
		FileSource{Path: path},
		MarkerSource{Path: LegacyModVerPath, As: "ccimx6sbc"},
		MarkerSource{Path: LegacyHWIDPath, As: "ccimx6sbc"},
	)
}

// Detect returns the first identity any source yields, together with the
// source that produced it.
func Detect(sources ...Source) (string, Source, error) {
	var errs []error
	for _, src := range sources {
		id, err := src.Identity()
		if err == nil {
			return id, src, nil
		}
		errs = append(errs, err)
	}
	return "", nil, NewError(ErrCodeNoIdentity, "board identity not found", errors.Join(append([]error{ErrNoIdentity}, errs...)...))
}

// Identify detects the identity and resolves it against t. Missing identity
// is reported as an unknown board.
func Identify(t *Table, sources ...Source) (Profile, string, error) {
	id, _, err := Detect(sources...)
	if err != nil {
		return Profile{}, "", NewError(ErrCodeUnknownBoard, "cannot identify board", errors.Join(ErrUnknownBoard, err))
	}
	p, err := t.Resolve(id)
	if err != nil {
		return Profile{}, id, err
	}
	return p, id, nil
}
