package spec

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the spec file name inside a project directory.
const ProjectFile = "system.yaml"

// Load reads a project spec from a YAML file.
func Load(path string) (*ProjectSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a project spec. Unknown keys are rejected so typos in
// coefficient names surface instead of silently defaulting to zero.
func Parse(data []byte) (*ProjectSpec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var spec ProjectSpec
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing spec YAML: %w", err)
	}
	return &spec, nil
}

// LoadProject loads a project spec from a project directory.
// It looks for system.yaml in the given directory.
func LoadProject(projectDir string) (*ProjectSpec, error) {
	return Load(filepath.Join(projectDir, ProjectFile))
}
