package cli

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/claco/shmod/internal/manifest"
	"github.com/claco/shmod/internal/repository"
)

//go:embed templates
var templateFS embed.FS

var initName string

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "module name (defaults to the directory name)")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a new shell module",
	Long: `Creates the conventional module layout in the target directory:

  module.yaml        module manifest
  src/<name>.sh      module entry point
  tests/<name>_test.sh   first test script
  .shmodignore       patterns excluded from published packages

Existing files are never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dc := newDiagContext(cmd)
	defer dc.close()

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	name := initName
	if name == "" {
		name = filepath.Base(absDir)
	}

	m := manifest.Default(name)
	if err := m.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(absDir, "src"), 0755); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(absDir, "tests"), 0755); err != nil {
		return err
	}

	var created []string

	manifestPath := filepath.Join(absDir, manifest.FileName)
	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		if err := m.Save(absDir); err != nil {
			return err
		}
		created = append(created, manifestPath)
	}

	files := []struct {
		template string
		path     string
		mode     os.FileMode
	}{
		{"templates/module.sh.tmpl", filepath.Join(absDir, "src", name+".sh"), 0755},
		{"templates/module_test.sh.tmpl", filepath.Join(absDir, "tests", name+"_test.sh"), 0755},
		{"templates/shmodignore", filepath.Join(absDir, repository.IgnoreFileName), 0644},
	}
	for _, file := range files {
		wrote, err := renderIfMissing(file.template, file.path, file.mode, m)
		if err != nil {
			return err
		}
		if wrote {
			created = append(created, file.path)
		}
	}

	if len(created) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to do; module files already present")
		return nil
	}
	for _, path := range created {
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	}
	return nil
}

func renderIfMissing(templatePath string, destPath string, mode os.FileMode, m *manifest.Manifest) (bool, error) {
	if _, err := os.Stat(destPath); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	tmpl, err := template.ParseFS(templateFS, templatePath)
	if err != nil {
		return false, fmt.Errorf("failed to parse template %s: %w", templatePath, err)
	}

	f, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if err := tmpl.Execute(f, m); err != nil {
		return false, fmt.Errorf("failed to render %s: %w", destPath, err)
	}
	return true, nil
}
