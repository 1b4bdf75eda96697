package worktree

import "testing"

func TestMatcher_SimpleGlob(t *testing.T) {
	m := NewMatcher("*.log\n")
	if !m.Match("debug.log", false) {
		t.Error("expected debug.log to be ignored")
	}
	if m.Match("src/debug.log", false) {
		// bare "*.log" has no slash, so it should match at any depth.
		t.Error("bare *.log pattern should match at any depth, including src/debug.log")
	}
}

func TestMatcher_DoubleStar(t *testing.T) {
	m := NewMatcher("**/*.log\n")
	if !m.Match("a/b/c/debug.log", false) {
		t.Error("expected a/b/c/debug.log to match **/*.log")
	}
}

func TestMatcher_AnchoredLeadingSlash(t *testing.T) {
	m := NewMatcher("/build\n")
	if !m.Match("build", true) {
		t.Error("expected /build to match the root-level build directory")
	}
	if m.Match("sub/build", true) {
		t.Error("/build should not match nested sub/build")
	}
}

func TestMatcher_TrailingSlashDirOnly(t *testing.T) {
	m := NewMatcher("node_modules/\n")
	if !m.Match("node_modules", true) {
		t.Error("expected node_modules/ to match the directory")
	}
	if m.Match("node_modules", false) {
		t.Error("directory-only pattern should not match a file of the same name")
	}
}

func TestMatcher_Negation(t *testing.T) {
	m := NewMatcher("*.log\n!keep.log\n")
	if m.Match("keep.log", false) {
		t.Error("keep.log should be re-included by the negation pattern")
	}
	if !m.Match("other.log", false) {
		t.Error("other.log should still be ignored")
	}
}

func TestMatcher_LaterPatternWins(t *testing.T) {
	m := NewMatcher("!important.txt\n*.txt\n")
	if !m.Match("important.txt", false) {
		t.Error("a later pattern should override an earlier negation")
	}
}

func TestMatcher_CharacterClass(t *testing.T) {
	m := NewMatcher("file[0-9].txt\n")
	if !m.Match("file1.txt", false) {
		t.Error("expected file1.txt to match the character class pattern")
	}
	if m.Match("fileA.txt", false) {
		t.Error("fileA.txt should not match [0-9]")
	}
}

func TestMatcher_MiddleSlashAnchors(t *testing.T) {
	m := NewMatcher("src/build\n")
	if !m.Match("src/build", true) {
		t.Error("expected src/build to match")
	}
	if m.Match("other/src/build", true) {
		t.Error("a pattern with a middle slash should anchor to the root, not match at any depth")
	}
}

func TestMatcher_EmptyMatchesNothing(t *testing.T) {
	m := &Matcher{}
	if m.Match("anything", false) {
		t.Error("an empty matcher should match nothing")
	}
}

func TestLoadMatcher_MissingFile(t *testing.T) {
	m := LoadMatcher("/nonexistent/.gitignore")
	if m.Match("anything", false) {
		t.Error("a missing .gitignore should match nothing")
	}
}
