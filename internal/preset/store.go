package preset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/videohub/internal/hub"
	"github.com/muurk/videohub/internal/logging"
)

const (
	// DefaultDir is where presets live when nothing else is configured
	DefaultDir = "presets"

	// DefaultName is used when a preset is saved without a name
	DefaultName = "preset"

	// Ext is the preset file extension
	Ext = ".json"
)

var (
	// ErrPresetExists is returned when saving over an existing preset without overwrite
	ErrPresetExists = errors.New("preset already exists")

	// ErrPresetNotFound is returned when a named preset has no file
	ErrPresetNotFound = errors.New("preset not found")

	// ErrInvalidPreset is returned when a file is not a valid preset document
	ErrInvalidPreset = errors.New("invalid preset")
)

// Entry describes a preset file
type Entry struct {
	Name        string
	Description string
	Path        string
	ModTime     time.Time
	Routes      int
	Err         error // set when the file could not be read
}

// Store keeps presets as <Dir>/<name>.json
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir (DefaultDir when empty)
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{Dir: dir}
}

// CleanName normalizes a preset name: surrounding blanks and a trailing
// .json are removed, and an empty name becomes DefaultName.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, Ext)
	if name == "" {
		return DefaultName, nil
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", hub.NewValidationError(fmt.Sprintf("invalid preset name %q", name))
	}
	return name, nil
}

// Path returns the file path for a preset name
func (s *Store) Path(name string) (string, error) {
	clean, err := CleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, clean+Ext), nil
}

// Exists reports whether a preset file exists
func (s *Store) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Save writes state as a preset. Saving needs a routing table, and an
// existing file is only replaced when overwrite is set.
func (s *Store) Save(name string, state *hub.State, overwrite bool) (string, error) {
	if state == nil || len(state.Routing) == 0 {
		return "", hub.NewPreconditionError("no hub data available, read the hub first")
	}

	path, err := s.Path(name)
	if err != nil {
		return "", err
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%w: %s", ErrPresetExists, path)
		}
	}

	data, err := Encode(state)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create preset directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write temporary preset file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to save preset file: %w", err)
	}

	logging.Info("Preset saved",
		zap.String("path", path),
		zap.Int("routes", len(state.Routing)),
	)
	return path, nil
}

// Load reads a preset file. The returned state's Source is the path.
func (s *Store) Load(path string) (*hub.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, path)
		}
		return nil, fmt.Errorf("failed to read preset: %w", err)
	}

	state, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	state.Source = path

	logging.Debug("Preset loaded",
		zap.String("path", path),
		zap.Int("routes", len(state.Routing)),
	)
	return state, nil
}

// LoadByName loads the preset with the given name
func (s *Store) LoadByName(name string) (*hub.State, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return s.Load(path)
}

// Delete removes a preset file
func (s *Store) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrPresetNotFound, path)
		}
		return fmt.Errorf("failed to delete preset: %w", err)
	}

	logging.Info("Preset deleted", zap.String("path", path))
	return nil
}

// List returns the presets in the store sorted by name. A missing
// directory is an empty store. Unreadable files are listed with Err set.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != Ext {
			continue
		}

		path := filepath.Join(s.Dir, de.Name())
		entry := Entry{
			Name: strings.TrimSuffix(de.Name(), Ext),
			Path: path,
		}
		if info, err := de.Info(); err == nil {
			entry.ModTime = info.ModTime()
		}

		if state, err := s.Load(path); err != nil {
			entry.Err = err
		} else {
			entry.Description = state.Description
			entry.Routes = len(state.Routing)
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}
