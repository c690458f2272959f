// Package appupdate checks for and applies newer shmod releases.
package appupdate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/claco/shmod/internal/core"
	"github.com/claco/shmod/internal/filesystem"
)

// RepoSlug is the GitHub repository releases are fetched from.
const RepoSlug = "claco/shmod"

// CheckInBackground kicks off a non-blocking check for a newer release.
// When one is found, its version is written to the latest-version file and
// sent on the returned channel; the channel closes when the check finishes.
// Dev builds (non-semver versions) skip the check entirely.
func CheckInBackground(
	currentVersion string,
	logger *zap.Logger,
	fs filesystem.FileSystem,
	updater Updater,
) chan string {
	resultChannel := make(chan string)

	currentSemVer, err := semver.NewVersion(currentVersion)
	if err != nil {
		logger.Debug("running a dev build, skipping update check")
		close(resultChannel)
		return resultChannel
	}

	go fetchAndSaveLatestVersion(resultChannel, logger, fs, updater, currentSemVer)

	return resultChannel
}

// ReadLatestVersion returns the version recorded by a previous background
// check, or empty when none was recorded.
func ReadLatestVersion(fs filesystem.FileSystem) string {
	file, err := fs.Open(core.LatestVersionFile())
	if err != nil {
		return ""
	}
	defer file.Close()

	var buf bytes.Buffer
	_, err = io.Copy(&buf, file)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(buf.String())
}

func fetchAndSaveLatestVersion(resultChannel chan string, logger *zap.Logger, fs filesystem.FileSystem, updater Updater, currentSemVer *semver.Version) {
	defer close(resultChannel)

	latest, found, err := updater.DetectLatest(context.Background(), RepoSlug)
	if err != nil {
		logger.Warn("error occurred while getting latest version from remote", zap.Error(err))
		return
	}
	if !found {
		logger.Warn("latest version could not be found")
		return
	}

	latestSemVer, err := semver.NewVersion(latest.Version())
	if err != nil {
		logger.Error("failed to parse latest version", zap.Error(err))
		return
	}

	if latestSemVer.LessThanEqual(currentSemVer) {
		logger.Debug("already running the latest version")
		return
	}

	file, err := fs.Create(core.LatestVersionFile())
	if err != nil {
		logger.Error("failed to save latest version", zap.Error(err))
		return
	}
	defer file.Close()

	_, err = file.WriteString(latest.Version())
	if err != nil {
		logger.Error("failed to save latest version", zap.Error(err))
		return
	}

	logger.Info("new version available", zap.String("current", currentSemVer.String()), zap.String("latest", latest.Version()))
	resultChannel <- latest.Version()
}

// Upgrade applies the latest release over the running binary. Crossing a
// major version boundary is refused unless allowMajor is set. Returns the
// version upgraded to, or empty when already up to date.
func Upgrade(ctx context.Context, currentVersion string, logger *zap.Logger, updater Updater, allowMajor bool) (string, error) {
	currentSemVer, err := semver.NewVersion(currentVersion)
	if err != nil {
		return "", fmt.Errorf("cannot upgrade a dev build (version %q)", currentVersion)
	}

	latest, found, err := updater.DetectLatest(ctx, RepoSlug)
	if err != nil {
		return "", fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return "", fmt.Errorf("no release found for %s", RepoSlug)
	}

	latestSemVer, err := semver.NewVersion(latest.Version())
	if err != nil {
		return "", fmt.Errorf("failed to parse latest version %q: %w", latest.Version(), err)
	}

	if latestSemVer.LessThanEqual(currentSemVer) {
		logger.Debug("already running the latest version")
		return "", nil
	}

	if latestSemVer.Major() > currentSemVer.Major() && !allowMajor {
		return "", fmt.Errorf(
			"latest version %s crosses a major version boundary from %s; rerun with --major to allow it",
			latestSemVer, currentSemVer,
		)
	}

	exePath, err := Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}

	if err := updater.UpdateTo(ctx, latest.AssetURL(), latest.AssetName(), exePath); err != nil {
		return "", fmt.Errorf("failed to apply update: %w", err)
	}

	logger.Info("upgraded", zap.String("from", currentSemVer.String()), zap.String("to", latestSemVer.String()))
	return latestSemVer.String(), nil
}
