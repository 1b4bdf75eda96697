// Package planfile parses the markdown implementation document attached
// to a plan. Only the title is extracted; the body is passed opaquely to
// the agent as part of the worker prompt.
package planfile

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

var titlePattern = regexp.MustCompile(`^#\s+(.+)$`)

// ParseTitle opens path, finds the first line matching ^#\s+(.+)$, and
// returns the captured text trimmed. A missing file or a file with no
// matching heading both return "" with no error.
func ParseTitle(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if m := titlePattern.FindStringSubmatch(scanner.Text()); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// ReadBody returns the full contents of the plan file, passed opaquely to
// the agent as part of the worker prompt.
func ReadBody(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
