package appupdate

import (
	"context"
	"os"

	"github.com/creativeprojects/go-selfupdate"
)

// Release is the subset of release metadata the update flow needs.
type Release interface {
	Version() string
	AssetURL() string
	AssetName() string
}

// Updater detects and applies releases. The default implementation talks to
// GitHub through go-selfupdate; tests substitute mocks.
type Updater interface {
	DetectLatest(ctx context.Context, repo string) (Release, bool, error)
	UpdateTo(ctx context.Context, assetURL string, assetName string, exePath string) error
}

type DefaultUpdater struct{}

func (DefaultUpdater) DetectLatest(ctx context.Context, repo string) (Release, bool, error) {
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repo))
	if err != nil || !found {
		return nil, found, err
	}
	return githubRelease{latest}, true, nil
}

func (DefaultUpdater) UpdateTo(ctx context.Context, assetURL string, assetName string, exePath string) error {
	return selfupdate.UpdateTo(ctx, assetURL, assetName, exePath)
}

type githubRelease struct {
	release *selfupdate.Release
}

func (r githubRelease) Version() string {
	return r.release.Version()
}

func (r githubRelease) AssetURL() string {
	return r.release.AssetURL
}

func (r githubRelease) AssetName() string {
	return r.release.AssetName
}

// Executable returns the running binary's path.
func Executable() (string, error) {
	return os.Executable()
}
