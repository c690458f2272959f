package core

import (
	"os"
	"path/filepath"
)

type Paths struct {
	HomeDir           string
	DataDir           string
	LogFile           string
	RepoDir           string
	RepoPackagesDir   string
	RepoIndexFile     string
	LatestVersionFile string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		defaultPaths = &Paths{
			HomeDir:           homeDir,
			DataDir:           filepath.Join(homeDir, ".shmod"),
			LogFile:           filepath.Join(homeDir, ".shmod", "shmod.log"),
			RepoDir:           filepath.Join(homeDir, ".shmod", "repo"),
			RepoPackagesDir:   filepath.Join(homeDir, ".shmod", "repo", "packages"),
			RepoIndexFile:     filepath.Join(homeDir, ".shmod", "repo", "index.db"),
			LatestVersionFile: filepath.Join(homeDir, ".shmod", "latest_version.txt"),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func RepoDir() string {
	ensureDefaultPaths()
	return defaultPaths.RepoDir
}

func RepoPackagesDir() string {
	ensureDefaultPaths()
	return defaultPaths.RepoPackagesDir
}

func RepoIndexFile() string {
	ensureDefaultPaths()
	return defaultPaths.RepoIndexFile
}

func LatestVersionFile() string {
	ensureDefaultPaths()
	return defaultPaths.LatestVersionFile
}

// ResetPaths clears the cached paths, forcing them to be reinitialized.
// This is primarily used for testing purposes.
func ResetPaths() {
	defaultPaths = nil
}
