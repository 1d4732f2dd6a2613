package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ScheduleDef is the definition of a single named schedule parsed from
// a YAML file: its schedule-expression text plus the action to run on
// an off→on transition. Adapted from the teacher's Job definition.
type ScheduleDef struct {
	Name         string            `yaml:"name" json:"name"`
	Expr         string            `yaml:"expr" json:"expr"`
	OnTransition string            `yaml:"on_transition" json:"on_transition,omitempty"`
	WorkingDir   string            `yaml:"working_dir" json:"working_dir,omitempty"`
	Timeout      string            `yaml:"timeout" json:"timeout,omitempty"`
	Env          map[string]string `yaml:"env" json:"env,omitempty"`
	Enabled      *bool             `yaml:"enabled" json:"enabled,omitempty"`
	Metadata     map[string]any    `yaml:"metadata" json:"metadata,omitempty"`
	FilePath     string            `yaml:"-" json:"-"`
}

// IsEnabled returns whether the schedule is enabled. Defaults to true
// if not set.
func (s *ScheduleDef) IsEnabled() bool {
	if s.Enabled == nil {
		return true
	}
	return *s.Enabled
}

// ParseTimeout parses the Timeout string into a time.Duration. Returns
// 0 if the timeout is empty.
func (s *ScheduleDef) ParseTimeout() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(s.Timeout)
}

// ParseScheduleDefYAML parses a single schedule-definition YAML payload.
func ParseScheduleDefYAML(data []byte) (*ScheduleDef, error) {
	var def ScheduleDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// MarshalScheduleDefYAML serializes a ScheduleDef to YAML.
func MarshalScheduleDefYAML(def *ScheduleDef) ([]byte, error) {
	return yaml.Marshal(def)
}

// SaveScheduleDef writes a single schedule-definition file.
func SaveScheduleDef(path string, def *ScheduleDef) error {
	data, err := MarshalScheduleDefYAML(def)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	def.FilePath = path
	return nil
}

// LoadScheduleDefs reads all *.yaml files from dir, parses each into a
// ScheduleDef, and returns the collected definitions.
func LoadScheduleDefs(dir string) ([]*ScheduleDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var defs []*ScheduleDef
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		def, err := ParseScheduleDefYAML(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		def.FilePath = path
		defs = append(defs, def)
	}

	return defs, nil
}
