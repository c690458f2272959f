// Package lint runs static checks over shell sources: parse validation via
// the mvdan.cc/sh parser plus a small set of style rules walked over the
// syntax tree.
package lint

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/syntax"
)

// Rule identifiers attached to findings.
const (
	RuleParseError      = "parse-error"
	RuleMissingShebang  = "missing-shebang"
	RuleBacktickSubst   = "backtick-substitution"
	RuleUnquotedAtParam = "unquoted-at-param"
)

// Finding is one issue located in a source file.
type Finding struct {
	File    string
	Line    uint
	Col     uint
	Rule    string
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", f.File, f.Line, f.Col, f.Rule, f.Message)
}

// Linter checks shell sources.
type Linter struct {
	logger *zap.Logger
}

// New creates a linter.
func New(logger *zap.Logger) *Linter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Linter{
		logger: logger,
	}
}

// LintReader checks a single source read from reader, reported under name.
func (l *Linter) LintReader(reader io.Reader, name string) ([]Finding, error) {
	source, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	var findings []Finding

	if !strings.HasPrefix(string(source), "#!") {
		findings = append(findings, Finding{
			File:    name,
			Line:    1,
			Col:     1,
			Rule:    RuleMissingShebang,
			Message: "script does not start with a shebang line",
		})
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(string(source)), name)
	if err != nil {
		var parseErr syntax.ParseError
		if errors.As(err, &parseErr) {
			findings = append(findings, Finding{
				File:    name,
				Line:    parseErr.Pos.Line(),
				Col:     parseErr.Pos.Col(),
				Rule:    RuleParseError,
				Message: parseErr.Text,
			})
			return findings, nil
		}
		return nil, err
	}

	findings = append(findings, styleFindings(prog, name)...)

	l.logger.Debug("linted source",
		zap.String("name", name),
		zap.Int("findings", len(findings)),
	)

	return findings, nil
}

// LintFile checks one file on disk.
func (l *Linter) LintFile(path string) ([]Finding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.LintReader(f, path)
}

// LintPaths checks every path given; directories are walked for .sh files.
// Findings are returned sorted by file, then position.
func (l *Linter) LintPaths(paths []string) ([]Finding, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.Walk(path, func(walked string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && strings.HasSuffix(walked, ".sh") {
				files = append(files, walked)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	files = lo.Uniq(files)
	sort.Strings(files)

	var findings []Finding
	for _, file := range files {
		fileFindings, err := l.LintFile(file)
		if err != nil {
			return nil, err
		}
		findings = append(findings, fileFindings...)
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].Col < findings[j].Col
	})

	return findings, nil
}

// styleFindings walks the parsed program for style rules.
func styleFindings(prog *syntax.File, name string) []Finding {
	var findings []Finding

	syntax.Walk(prog, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.CmdSubst:
			if n.Backquotes {
				findings = append(findings, Finding{
					File:    name,
					Line:    n.Pos().Line(),
					Col:     n.Pos().Col(),
					Rule:    RuleBacktickSubst,
					Message: "use $(...) instead of backticks",
				})
			}
		case *syntax.Word:
			// $@ expanded outside double quotes splits on whitespace.
			for _, part := range n.Parts {
				param, ok := part.(*syntax.ParamExp)
				if !ok || param.Param == nil || param.Param.Value != "@" {
					continue
				}
				findings = append(findings, Finding{
					File:    name,
					Line:    param.Pos().Line(),
					Col:     param.Pos().Col(),
					Rule:    RuleUnquotedAtParam,
					Message: `quote "$@" to preserve argument boundaries`,
				})
			}
		}
		return true
	})

	return findings
}
