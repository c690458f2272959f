package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/claco/shmod/internal/manifest"
)

// Repository is a bootstrapped local package repository rooted at a
// directory: an archives subdirectory plus the sqlite index.
type Repository struct {
	root        string
	packagesDir string
	index       *Index
	logger      *zap.Logger
}

// Bootstrap creates (or reopens) the repository rooted at root. The
// operation is idempotent: an existing repository is opened untouched.
func Bootstrap(root string, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	packagesDir := filepath.Join(root, "packages")
	if err := os.MkdirAll(packagesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create repository directory: %w", err)
	}

	index, err := NewIndex(filepath.Join(root, "index.db"))
	if err != nil {
		return nil, err
	}

	logger.Info("repository ready", zap.String("root", root))

	return &Repository{
		root:        root,
		packagesDir: packagesDir,
		index:       index,
		logger:      logger,
	}, nil
}

// Root returns the repository root directory.
func (r *Repository) Root() string {
	return r.root
}

// Publish packages the module at moduleDir and records it in the index.
// Publishing a version older than or equal to the latest published one is
// refused unless force is set; republishing the exact version with force
// overwrites the archive and updates the index row.
func (r *Repository) Publish(moduleDir string, m *manifest.Manifest, force bool) (*Package, error) {
	version := m.SemVer()

	if latest, err := r.index.Latest(m.Name); err == nil {
		latestVersion, parseErr := semver.StrictNewVersion(latest.Version)
		if parseErr == nil && !version.GreaterThan(latestVersion) && !force {
			return nil, fmt.Errorf(
				"version %s does not advance %s %s (use force to republish)",
				m.Version, m.Name, latest.Version,
			)
		}
	}

	archivePath := filepath.Join(r.packagesDir, fmt.Sprintf("%s-%s.tar.gz", m.Name, m.Version))
	if err := writeArchive(moduleDir, archivePath); err != nil {
		return nil, fmt.Errorf("failed to package %s: %w", m.Name, err)
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, err
	}

	pkg := &Package{
		Name:        m.Name,
		Version:     m.Version,
		Description: m.Description,
		ArchivePath: archivePath,
		SizeBytes:   info.Size(),
	}
	if err := r.index.Record(pkg); err != nil {
		return nil, fmt.Errorf("failed to index %s %s: %w", m.Name, m.Version, err)
	}

	r.logger.Info("published package",
		zap.String("name", m.Name),
		zap.String("version", m.Version),
		zap.Int64("bytes", pkg.SizeBytes),
	)

	return pkg, nil
}

// List returns the indexed packages, newest first within each name.
func (r *Repository) List() ([]Package, error) {
	return r.index.List()
}

// Versions returns every published version of name, newest first.
func (r *Repository) Versions(name string) ([]Package, error) {
	return r.index.Versions(name)
}

// Latest returns the most recent published version of name.
func (r *Repository) Latest(name string) (*Package, error) {
	return r.index.Latest(name)
}
