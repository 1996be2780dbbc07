package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// MeshSettings tunes mesh generation and publication.
type MeshSettings struct {
	// DebounceFrames is how many harvests the oldest pending update waits
	// before the queue is applied.
	DebounceFrames int `yaml:"debounce_frames"`
	// Workers is the number of concurrent mesh workers.
	Workers int `yaml:"workers"`
	// QueueSize bounds the number of chunks waiting for a worker.
	QueueSize int `yaml:"queue_size"`
	// IconsPerRow is the texture atlas width in icons.
	IconsPerRow int `yaml:"icons_per_row"`

	ClusterSize      int `yaml:"cluster_size"`
	ClustersPerChunk int `yaml:"clusters_per_chunk"`
}

// DefaultMeshSettings returns the built-in settings.
func DefaultMeshSettings() MeshSettings {
	return MeshSettings{
		DebounceFrames:   2,
		Workers:          4,
		QueueSize:        256,
		IconsPerRow:      8,
		ClusterSize:      16,
		ClustersPerChunk: 8,
	}
}

var ErrInvalidSettings = errors.New("invalid mesh settings")

// Validate checks ranges that the mesher relies on.
func (s MeshSettings) Validate() error {
	switch {
	case s.DebounceFrames < 0:
		return fmt.Errorf("%w: debounce_frames %d < 0", ErrInvalidSettings, s.DebounceFrames)
	case s.Workers < 1:
		return fmt.Errorf("%w: workers %d < 1", ErrInvalidSettings, s.Workers)
	case s.QueueSize < 0:
		return fmt.Errorf("%w: queue_size %d < 0", ErrInvalidSettings, s.QueueSize)
	case s.IconsPerRow < 1 || 32768%s.IconsPerRow != 0:
		return fmt.Errorf("%w: icons_per_row %d must divide 32768", ErrInvalidSettings, s.IconsPerRow)
	case s.ClusterSize < 2 || s.ClusterSize > 64:
		return fmt.Errorf("%w: cluster_size %d outside [2,64]", ErrInvalidSettings, s.ClusterSize)
	case s.ClustersPerChunk < 1:
		return fmt.Errorf("%w: clusters_per_chunk %d < 1", ErrInvalidSettings, s.ClustersPerChunk)
	}
	return nil
}

// Load reads mesh settings from a YAML file. Keys that are missing keep their defaults.
func Load(path string) (MeshSettings, error) {
	s := DefaultMeshSettings()
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

var (
	meshMu       sync.RWMutex
	meshSettings = DefaultMeshSettings()
)

// GetMeshSettings returns the process-wide mesh settings.
func GetMeshSettings() MeshSettings {
	meshMu.RLock()
	defer meshMu.RUnlock()
	return meshSettings
}

// SetMeshSettings replaces the process-wide mesh settings after validation.
func SetMeshSettings(s MeshSettings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	meshMu.Lock()
	defer meshMu.Unlock()
	meshSettings = s
	return nil
}

// GetDebounceFrames returns the harvest debounce delay in frames
func GetDebounceFrames() int {
	meshMu.RLock()
	defer meshMu.RUnlock()
	return meshSettings.DebounceFrames
}

// SetDebounceFrames sets the harvest debounce delay, clamped to [0, 60]
func SetDebounceFrames(frames int) {
	meshMu.Lock()
	defer meshMu.Unlock()
	if frames < 0 {
		frames = 0
	}
	if frames > 60 {
		frames = 60
	}
	meshSettings.DebounceFrames = frames
}
