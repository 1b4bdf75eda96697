package worktree

import (
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// rule is one parsed line of a .gitignore file.
type rule struct {
	pattern  string
	negate   bool
	dirOnly  bool
	anchored bool
}

// Matcher implements the standard gitignore glob dialect: *, **, ?,
// character classes, leading / anchoring, trailing / directory-only,
// leading ! negation, with later patterns overriding earlier ones.
type Matcher struct {
	rules []rule
}

// NewMatcher parses gitignore-format content into a Matcher.
func NewMatcher(content string) *Matcher {
	m := &Matcher{}
	for _, line := range strings.Split(content, "\n") {
		if r, ok := parseRule(line); ok {
			m.rules = append(m.rules, r)
		}
	}
	return m
}

// LoadMatcher reads a .gitignore file at path, returning an empty Matcher
// (matches nothing) if the file doesn't exist.
func LoadMatcher(path string) *Matcher {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Matcher{}
	}
	return NewMatcher(string(data))
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	r := rule{}
	if strings.HasPrefix(line, "!") {
		r.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if line == "" {
		return rule{}, false
	}
	if strings.HasPrefix(line, "/") {
		r.anchored = true
		line = strings.TrimPrefix(line, "/")
	} else if strings.Contains(line, "/") {
		// A slash anywhere but the end anchors the pattern to the root,
		// per the standard gitignore dialect.
		r.anchored = true
	}
	r.pattern = line
	return r, true
}

// Match reports whether relPath (slash-separated, relative to the
// directory the patterns were loaded from) is ignored. isDir indicates
// whether relPath names a directory, for directory-only rules.
func (m *Matcher) Match(relPath string, isDir bool) bool {
	matched := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		var ok bool
		if r.anchored {
			ok, _ = doublestar.Match(r.pattern, relPath)
		} else {
			ok, _ = doublestar.Match("**/"+r.pattern, relPath)
		}
		if ok {
			matched = !r.negate
		}
	}
	return matched
}
