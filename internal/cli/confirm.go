package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// confirm prompts for a y/N answer on the command's streams. When stdin is
// not a terminal the answer is an error rather than a silent yes, so
// destructive commands cannot be confirmed by accident in a pipeline.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return false, fmt.Errorf("stdin is not a terminal; rerun with --yes to skip confirmation")
	}

	fmt.Fprintf(out, "%s [y/N] ", prompt)

	reader := bufio.NewReader(in)
	answer, err := reader.ReadString('\n')
	if err != nil && answer == "" {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
