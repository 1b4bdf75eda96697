package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	logDiscoverPollInterval = 500 * time.Millisecond
	logDiscoverTimeout      = 60 * time.Second
)

// handleLogs streams a plan's most recent log file over SSE: existing
// lines first, then appended lines as the file grows, following §4.9's
// tail algorithm. If no log file exists yet it polls briefly before
// giving up with event: done.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ctx := r.Context()

	path := discoverLogFile(s.logsDir, id)
	if path == "" {
		path = pollForLogFile(ctx, s.logsDir, id, logDiscoverTimeout, logDiscoverPollInterval)
	}
	if path == "" {
		sendSSE(w, flusher, "done", "timeout")
		return
	}

	tailLogFile(ctx, w, flusher, path)
}

// discoverLogFile returns the newest <logsDir>/<id>-*.jsonl file, or ""
// if none exists yet. Names sort lexicographically by their embedded
// RFC3339Nano timestamp, so the greatest name is the newest file.
func discoverLogFile(logsDir string, id int64) string {
	matches, err := filepath.Glob(filepath.Join(logsDir, fmt.Sprintf("%d-*.jsonl", id)))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[len(matches)-1]
}

func pollForLogFile(ctx context.Context, logsDir string, id int64, timeout, interval time.Duration) string {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		if path := discoverLogFile(logsDir, id); path != "" {
			return path
		}
		select {
		case <-ctx.Done():
			return ""
		case <-ticker.C:
		}
	}
	return ""
}

// tailLogFile streams existing lines, then watches the file's directory
// for writes and streams appended lines, until the client disconnects.
func tailLogFile(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, path string) {
	f, err := os.Open(path)
	if err != nil {
		sendSSE(w, flusher, "done", "timeout")
		return
	}
	defer f.Close()

	var offset int64
	var leftover string

	lines, offset, leftover, err := drainNewLines(f, offset, leftover)
	if err != nil {
		return
	}
	for _, line := range lines {
		sendSSE(w, flusher, "log", line)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != path || event.Op&fsnotify.Write == 0 {
				continue
			}
			var newLines []string
			newLines, offset, leftover, err = drainNewLines(f, offset, leftover)
			if err != nil {
				return
			}
			for _, line := range newLines {
				sendSSE(w, flusher, "log", line)
			}

		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// drainNewLines reads every byte written to f since offset (the position
// up to which the file has already been read from disk), combines it
// with any previously-buffered partial line, and returns the complete
// lines, the new disk-read offset, and the new partial-line remainder.
// leftover is never re-read from disk: offset always advances by exactly
// the number of bytes read this call.
func drainNewLines(f *os.File, offset int64, leftover string) ([]string, int64, string, error) {
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, leftover, err
	}
	chunk, err := io.ReadAll(f)
	if err != nil {
		return nil, offset, leftover, err
	}
	if len(chunk) == 0 {
		return nil, offset, leftover, nil
	}
	newOffset := offset + int64(len(chunk))

	combined := leftover + string(chunk)
	parts := strings.Split(combined, "\n")
	complete := parts[:len(parts)-1]
	remainder := parts[len(parts)-1]

	var lines []string
	for _, line := range complete {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, newOffset, remainder, nil
}

func sendSSE(w http.ResponseWriter, flusher http.Flusher, event, data string) {
	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
