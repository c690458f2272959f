package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claco/shmod/internal/core"
	"github.com/claco/shmod/internal/manifest"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommandWithInput(t, "", args...)
}

func executeCommandWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	core.ResetPaths()
	t.Cleanup(core.ResetPaths)
}

func TestVersionCommand(t *testing.T) {
	isolateHome(t)

	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestVersionReportsNewerRelease(t *testing.T) {
	isolateHome(t)

	// A prior background update check left the newer version on disk.
	latestFile := core.LatestVersionFile()
	require.NoError(t, os.MkdirAll(filepath.Dir(latestFile), 0755))
	require.NoError(t, os.WriteFile(latestFile, []byte("9.9.9\n"), 0644))

	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev\n")
	assert.Contains(t, out, "new version available: 9.9.9")
	assert.Contains(t, out, "shmod upgrade")
}

func TestInitScaffoldsModule(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "netutils")

	out, err := executeCommand(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "created")

	m, err := manifest.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "netutils", m.Name)

	script, err := os.ReadFile(filepath.Join(dir, "src", "netutils.sh"))
	require.NoError(t, err)
	assert.Contains(t, string(script), "netutils_greet")
	assert.True(t, strings.HasPrefix(string(script), "#!/bin/sh"))

	assert.FileExists(t, filepath.Join(dir, "tests", "netutils_test.sh"))
	assert.FileExists(t, filepath.Join(dir, ".shmodignore"))
}

func TestInitIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "netutils")

	_, err := executeCommand(t, "init", dir)
	require.NoError(t, err)

	out, err := executeCommand(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to do")
}

func TestInitWithExplicitName(t *testing.T) {
	dir := t.TempDir()
	defer func() { initName = "" }()

	_, err := executeCommand(t, "init", "--name", "fileutils", dir)
	require.NoError(t, err)

	m, err := manifest.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "fileutils", m.Name)
}

func TestTestCommandRunsScaffoldedTests(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")

	_, err := executeCommand(t, "init", dir)
	require.NoError(t, err)

	out, err := executeCommand(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "1 passed, 0 failed")
}

func TestTestCommandFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")

	_, err := executeCommand(t, "init", dir)
	require.NoError(t, err)

	broken := "#!/bin/sh\nassert-match impossible \"$(echo hello)\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tests", "broken_test.sh"), []byte(broken), 0755))

	out, err := executeCommand(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, err.Error(), "1 of 2 test scripts failed")
}

func TestLintCommandReportsFindings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.sh"), []byte("#!/bin/sh\nnow=`date`\necho \"$now\"\n"), 0755))

	out, err := executeCommand(t, "lint", dir)
	require.Error(t, err)
	assert.Contains(t, out, "backtick-substitution")
	assert.Contains(t, err.Error(), "1 lint findings")
}

func TestLintCommandQuiet(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.sh"), []byte("#!/bin/sh\nnow=`date`\necho \"$now\"\n"), 0755))
	defer func() { lintQuiet = false }()

	out, err := executeCommand(t, "lint", "--quiet", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "backtick-substitution")
}

func TestLintCommandCleanTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.sh"), []byte("#!/bin/sh\necho ok\n"), 0755))

	out, err := executeCommand(t, "lint", dir)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCleanDryRun(t *testing.T) {
	dir := t.TempDir()
	distDir := filepath.Join(dir, "dist")
	require.NoError(t, os.MkdirAll(distDir, 0755))
	artifact := filepath.Join(distDir, "demo-1.0.0.tar.gz")
	require.NoError(t, os.WriteFile(artifact, []byte("x"), 0644))
	defer func() { cleanDryRun = false }()

	out, err := executeCommand(t, "clean", "--dry-run", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "would remove "+artifact)
	assert.FileExists(t, artifact)
}

func TestCleanWithYes(t *testing.T) {
	dir := t.TempDir()
	distDir := filepath.Join(dir, "dist")
	require.NoError(t, os.MkdirAll(distDir, 0755))
	artifact := filepath.Join(distDir, "demo-1.0.0.tar.gz")
	require.NoError(t, os.WriteFile(artifact, []byte("x"), 0644))
	defer func() { cleanYes = false }()

	out, err := executeCommand(t, "clean", "--yes", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "removed 1 files")
	assert.NoFileExists(t, artifact)
}

func TestCleanNothingToDo(t *testing.T) {
	out, err := executeCommand(t, "clean", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to clean")
}

func TestCleanPromptDeclined(t *testing.T) {
	dir := t.TempDir()
	distDir := filepath.Join(dir, "dist")
	require.NoError(t, os.MkdirAll(distDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(distDir, "a"), []byte("x"), 0644))

	out, err := executeCommandWithInput(t, "n\n", "clean", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "aborted")
	assert.FileExists(t, filepath.Join(distDir, "a"))
}

func TestRepoInitAndList(t *testing.T) {
	isolateHome(t)

	out, err := executeCommand(t, "repo", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "repository ready")

	out, err = executeCommand(t, "repo", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no packages published")
}

func TestPublishFlow(t *testing.T) {
	isolateHome(t)

	dir := filepath.Join(t.TempDir(), "demo")
	_, err := executeCommand(t, "init", dir)
	require.NoError(t, err)

	out, err := executeCommand(t, "publish", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "published demo 0.1.0")

	out, err = executeCommand(t, "repo", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "0.1.0")
}

func TestPublishDryRun(t *testing.T) {
	isolateHome(t)

	dir := filepath.Join(t.TempDir(), "demo")
	_, err := executeCommand(t, "init", dir)
	require.NoError(t, err)
	defer func() { publishDryRun = false }()

	out, err := executeCommand(t, "publish", "--dry-run", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "would publish demo 0.1.0")
	assert.NoFileExists(t, core.RepoIndexFile())
}

func TestRepoListByName(t *testing.T) {
	isolateHome(t)

	dir := filepath.Join(t.TempDir(), "demo")
	_, err := executeCommand(t, "init", dir)
	require.NoError(t, err)

	_, err = executeCommand(t, "publish", dir)
	require.NoError(t, err)

	m, err := manifest.Load(dir)
	require.NoError(t, err)
	m.Version = "0.2.0"
	require.NoError(t, m.Save(dir))

	_, err = executeCommand(t, "publish", dir)
	require.NoError(t, err)

	out, err := executeCommand(t, "repo", "list", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "0.1.0")
	assert.Contains(t, out, "0.2.0")

	out, err = executeCommand(t, "repo", "list", "other")
	require.NoError(t, err)
	assert.Contains(t, out, "no versions published for other")
}

func TestExplicitFlagOutranksEnvironment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.sh"), []byte("#!/bin/sh\necho ok\n"), 0755))

	t.Setenv("SHMOD_VERBOSE", "1")

	out, err := executeCommand(t, "lint", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "no findings")

	defer func() {
		verboseFlag = false
		rootCmd.PersistentFlags().Lookup("verbose").Changed = false
	}()

	out, err = executeCommand(t, "lint", "--verbose=false", dir)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPublishMissingManifest(t *testing.T) {
	isolateHome(t)

	_, err := executeCommand(t, "publish", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrNotFound)
}
