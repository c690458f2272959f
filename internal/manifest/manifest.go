// Package manifest loads and validates module.yaml, the descriptor every
// shell module carries at its root.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// FileName is the manifest file expected at the module root.
const FileName = "module.yaml"

// ErrNotFound is returned when a directory has no manifest.
var ErrNotFound = errors.New("module manifest not found")

// Manifest describes a shell module: identity, version, and the layout of
// its sources and tests.
type Manifest struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description,omitempty"`
	Author      string   `yaml:"author,omitempty"`
	Scripts     []string `yaml:"scripts,omitempty"`
	TestDir     string   `yaml:"testDir,omitempty"`
}

// Default returns a manifest with the conventional layout filled in.
func Default(name string) *Manifest {
	return &Manifest{
		Name:    name,
		Version: "0.1.0",
		Scripts: []string{filepath.Join("src", name+".sh")},
		TestDir: "tests",
	}
}

// Load reads and validates the manifest in dir. A missing file is reported
// as ErrNotFound so callers can distinguish "not a module" from a broken
// manifest.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w in %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}

	return &m, nil
}

// Save writes the manifest to dir.
func (m *Manifest) Save(dir string) error {
	if err := m.Validate(); err != nil {
		return err
	}

	content, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}

	return os.WriteFile(filepath.Join(dir, FileName), content, 0644)
}

// Validate checks identity and version. The version must be strict semver
// so the repository can order published packages.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("module name is required")
	}
	if strings.ContainsAny(m.Name, " /\\") {
		return fmt.Errorf("module name %q must not contain spaces or path separators", m.Name)
	}
	if _, err := semver.StrictNewVersion(m.Version); err != nil {
		return fmt.Errorf("version %q is not valid semver: %w", m.Version, err)
	}
	return nil
}

// SemVer returns the parsed module version. Validate must have passed.
func (m *Manifest) SemVer() *semver.Version {
	version, err := semver.StrictNewVersion(m.Version)
	if err != nil {
		panic(err)
	}
	return version
}

// TestsPath returns the absolute test directory for a module rooted at dir,
// defaulting to "tests" when the manifest does not name one.
func (m *Manifest) TestsPath(dir string) string {
	testDir := m.TestDir
	if testDir == "" {
		testDir = "tests"
	}
	return filepath.Join(dir, testDir)
}
