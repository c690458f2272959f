package repository

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName lists patterns excluded from published archives, one glob
// per line, matched against slash-separated paths relative to the module
// root and against each path's base name.
const IgnoreFileName = ".shmodignore"

// alwaysIgnored are excluded from every archive regardless of the ignore
// file: build output, VCS metadata, and the ignore file itself.
var alwaysIgnored = []string{"dist", ".git", IgnoreFileName}

func loadIgnorePatterns(moduleDir string) ([]string, error) {
	patterns := append([]string{}, alwaysIgnored...)

	f, err := os.Open(filepath.Join(moduleDir, IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return patterns, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}

func ignored(patterns []string, relPath string) bool {
	base := filepath.Base(relPath)
	for _, pattern := range patterns {
		if match, _ := filepath.Match(pattern, relPath); match {
			return true
		}
		if match, _ := filepath.Match(pattern, base); match {
			return true
		}
		// A directory pattern also ignores everything beneath it.
		if strings.HasPrefix(relPath, pattern+"/") {
			return true
		}
	}
	return false
}

// writeArchive packs moduleDir into a gzipped tarball at destPath, honoring
// the module's ignore file.
func writeArchive(moduleDir string, destPath string) error {
	patterns, err := loadIgnorePatterns(moduleDir)
	if err != nil {
		return err
	}

	dest, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dest.Close()

	gzipWriter := gzip.NewWriter(dest)
	defer gzipWriter.Close()

	tarWriter := tar.NewWriter(gzipWriter)
	defer tarWriter.Close()

	return filepath.Walk(moduleDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == moduleDir {
			return nil
		}

		relPath, err := filepath.Rel(moduleDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if ignored(patterns, relPath) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = relPath
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(tarWriter, f)
		return err
	})
}
