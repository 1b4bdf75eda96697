package worktree

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyGitignored_CopiesEnvFile(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	if err := os.WriteFile(filepath.Join(src, ".gitignore"), []byte(".env\nbuild/\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, ".env"), []byte("SECRET=1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "tracked.txt"), []byte("visible\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := CopyGitignored(src, dst); err != nil {
		t.Fatalf("CopyGitignored() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dst, ".env")); err != nil {
		t.Error(".env should have been copied")
	}
	if _, err := os.Stat(filepath.Join(dst, "tracked.txt")); err == nil {
		t.Error("tracked.txt is not gitignored and should not have been copied")
	}
}

func TestCopyGitignored_SkipsExistingDestination(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	if err := os.WriteFile(filepath.Join(src, ".env"), []byte("NEW=1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dst, ".env"), []byte("OLD=1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := CopyGitignored(src, dst); err != nil {
		t.Fatalf("CopyGitignored() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dst, ".env"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "OLD=1\n" {
		t.Errorf(".env at destination was overwritten, got %q", data)
	}
}

func TestCopyGitignored_SkipsOversizedFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	big := make([]byte, maxCopySize+1)
	if err := os.WriteFile(filepath.Join(src, ".env"), big, 0o600); err != nil {
		t.Fatal(err)
	}

	if err := CopyGitignored(src, dst); err != nil {
		t.Fatalf("CopyGitignored() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, ".env")); err == nil {
		t.Error("oversized file should not have been copied")
	}
}

func TestIsRecognized(t *testing.T) {
	cases := map[string]bool{
		".env":        true,
		".env.local":  true,
		".npmrc":      true,
		"random.json": false,
	}
	for name, want := range cases {
		if got := isRecognized(name); got != want {
			t.Errorf("isRecognized(%q) = %v, want %v", name, got, want)
		}
	}
}
