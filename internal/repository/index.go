// Package repository implements the workspace-local package repository:
// a directory of published module archives plus a sqlite index.
package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Index is the sqlite-backed catalog of published packages.
type Index struct {
	db *gorm.DB
}

// Package is one published module version in the index.
type Package struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index"`

	Name        string `gorm:"index"`
	Version     string
	Description string
	ArchivePath string
	SizeBytes   int64
}

const (
	indexSchemaVersion = 1
)

// ErrPackageNotFound is returned when a package lookup matches nothing.
var ErrPackageNotFound = errors.New("package not found")

// NewIndex opens (creating if needed) the index database at dbFilePath.
// A schema version marker is kept next to the database so future schema
// changes can trigger re-migration.
func NewIndex(dbFilePath string) (*Index, error) {
	dbFileExists := true
	if _, err := os.Stat(dbFilePath); errors.Is(err, os.ErrNotExist) {
		dbFileExists = false
	} else if err != nil {
		return nil, fmt.Errorf("error checking index db: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbFilePath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("error opening index db: %w", err)
	}

	if needsMigration(dbFileExists, dbFilePath, db) {
		if err := db.AutoMigrate(&Package{}); err != nil {
			return nil, fmt.Errorf("error auto-migrating index schema: %w", err)
		}
		if err := writeSchemaVersion(dbFilePath, indexSchemaVersion); err != nil {
			return nil, fmt.Errorf("error writing index schema version: %w", err)
		}
	}

	return &Index{
		db: db,
	}, nil
}

func needsMigration(dbFileExists bool, dbFilePath string, db *gorm.DB) bool {
	if !dbFileExists {
		return true
	}

	versionMatches, err := schemaVersionMatches(dbFilePath)
	if err != nil || !versionMatches {
		return true
	}

	// If the version marker is present but the table is missing (corruption or
	// manual deletion), re-run migrations to restore the schema.
	return !db.Migrator().HasTable(&Package{})
}

func writeSchemaVersion(dbFilePath string, version int) error {
	return os.WriteFile(schemaVersionPath(dbFilePath), []byte(strconv.Itoa(version)), 0644)
}

func schemaVersionMatches(dbFilePath string) (bool, error) {
	data, err := os.ReadFile(schemaVersionPath(dbFilePath))
	if err != nil {
		return false, err
	}
	version, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, err
	}
	if version != indexSchemaVersion {
		return false, fmt.Errorf("index schema version mismatch: got %d, want %d", version, indexSchemaVersion)
	}
	return true, nil
}

func schemaVersionPath(dbFilePath string) string {
	return filepath.Join(filepath.Dir(dbFilePath), "index_schema_version")
}

// Record inserts or updates the row for a package version.
func (index *Index) Record(pkg *Package) error {
	var existing Package
	result := index.db.Where("name = ? AND version = ?", pkg.Name, pkg.Version).First(&existing)
	if result.Error == nil {
		pkg.ID = existing.ID
		pkg.CreatedAt = existing.CreatedAt
		return index.db.Save(pkg).Error
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return index.db.Create(pkg).Error
}

// Latest returns the most recently published version of a package.
func (index *Index) Latest(name string) (*Package, error) {
	var pkg Package
	result := index.db.Where("name = ?", name).Order("created_at desc").First(&pkg)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &pkg, nil
}

// Versions returns every published version of a package, newest first.
func (index *Index) Versions(name string) ([]Package, error) {
	var packages []Package
	result := index.db.Where("name = ?", name).Order("created_at desc").Find(&packages)
	if result.Error != nil {
		return nil, result.Error
	}
	return packages, nil
}

// List returns every indexed package ordered by name, then newest first.
func (index *Index) List() ([]Package, error) {
	var packages []Package
	result := index.db.Order("name asc, created_at desc").Find(&packages)
	if result.Error != nil {
		return nil, result.Error
	}
	return packages, nil
}
