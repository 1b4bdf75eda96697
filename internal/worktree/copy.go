package worktree

import (
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// maxCopySize bounds files copied into a fresh worktree from the main
// checkout's gitignored state.
const maxCopySize = 10 * 1024 * 1024 // 10 MiB

// recognizedPatterns names the common environment files and dotfiles the
// agent needs a copy of even though they're gitignored: without these, a
// worktree lacks the same local environment the main checkout has.
var recognizedPatterns = []string{
	".env",
	".env.*",
	".envrc",
	".npmrc",
	".yarnrc",
	".yarnrc.yml",
	".tool-versions",
	".nvmrc",
	".python-version",
	".ruby-version",
	"*.local",
}

func isRecognized(basename string) bool {
	for _, p := range recognizedPatterns {
		if ok, _ := doublestar.Match(p, basename); ok {
			return true
		}
	}
	return false
}

// CopyGitignored walks srcDir, and for every file the repo's own
// .gitignore catches (or that matches the recognized common-file set)
// that is within maxCopySize, copies it into the same relative location
// under dstDir — skipping anything already present at the destination.
func CopyGitignored(srcDir, dstDir string) error {
	matcher := LoadMatcher(filepath.Join(srcDir, ".gitignore"))

	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil || rel == "." {
			return nil
		}
		if info.IsDir() {
			if rel == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		relSlash := filepath.ToSlash(rel)
		ignored := matcher.Match(relSlash, false) || isRecognized(filepath.Base(path))
		if !ignored {
			return nil
		}
		if info.Size() > maxCopySize {
			return nil
		}

		dstPath := filepath.Join(dstDir, rel)
		if _, err := os.Stat(dstPath); err == nil {
			return nil // already present at destination
		}

		return copyFile(path, dstPath, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
