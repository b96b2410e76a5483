package board

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// tableFile is the on-disk form of a board table.
type tableFile struct {
	Boards []Profile `toml:"board"`
}

// LoadTable reads extra boards from a TOML file and merges them over the
// built-in table. A board with a built-in name replaces it. An empty path
// returns the built-in table.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewError(ErrCodeInvalidTable, "failed to read board table", err)
	}

	return ParseTable(data)
}

// ParseTable is LoadTable for an in-memory document.
func ParseTable(data []byte) (*Table, error) {
	var file tableFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, NewError(ErrCodeInvalidTable, "failed to parse board table", err)
	}

	for i := range file.Boards {
		if file.Boards[i].Polarity == "" {
			file.Boards[i].Polarity = ActiveHigh
		}
		if file.Boards[i].ButtonEdge == "" {
			file.Boards[i].ButtonEdge = EdgeBoth
		}
	}

	t, err := DefaultTable().Merge(file.Boards...)
	if err != nil {
		return nil, fmt.Errorf("merge board table: %w", err)
	}
	return t, nil
}
