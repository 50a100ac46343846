package snapshot

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
)

// Load reads a snapshot file. A missing file is not an error: the
// engine simply starts fresh.
func Load(path string) (*EngineSnapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap EngineSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
