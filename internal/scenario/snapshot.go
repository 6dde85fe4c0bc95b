package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Norgate-AV/fader/internal/config"
	"github.com/Norgate-AV/fader/internal/hud"
)

// SnapshotFile is a condition source backed by a file that another process
// rewrites with the current game conditions. The file is read on every call
// and decoded again only when its contents change.
type SnapshotFile struct {
	path   string
	format config.Format

	mu      sync.Mutex
	raw     []byte
	current hud.Conditions
}

// NewSnapshotFile creates a source reading path; the encoding follows the extension
func NewSnapshotFile(path string) *SnapshotFile {
	return &SnapshotFile{path: path, format: config.FormatFor(path)}
}

// Path returns the snapshot file path
func (f *SnapshotFile) Path() string {
	return f.path
}

// Conditions returns the conditions last written to the file
func (f *SnapshotFile) Conditions() (hud.Conditions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return hud.Conditions{}, fmt.Errorf("read snapshot: %w", err)
	}

	if f.raw != nil && bytes.Equal(data, f.raw) {
		return f.current, nil
	}

	c, err := DecodeConditions(data, f.format)
	if err != nil {
		return hud.Conditions{}, err
	}

	f.current, f.raw = c, data
	return c, nil
}

// DecodeConditions parses one conditions snapshot
func DecodeConditions(data []byte, format config.Format) (hud.Conditions, error) {
	var c hud.Conditions

	switch format {
	case config.FormatJSON:
		if err := json.Unmarshal(data, &c); err != nil {
			return hud.Conditions{}, fmt.Errorf("decode JSON snapshot: %w", err)
		}
	case config.FormatYAML:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return hud.Conditions{}, fmt.Errorf("decode YAML snapshot: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), &c); err != nil {
			return hud.Conditions{}, fmt.Errorf("decode TOML snapshot: %w", err)
		}
	}

	return c, nil
}
