package agent

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// streamEvent models the shapes of the agent's JSONL stream that matter
// for transcript extraction. Fields we don't transcribe (tool use, tool
// results, system events) are left unparsed and merely logged.
type streamEvent struct {
	Type    string `json:"type"`
	Message *struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
}

// drainStdout reads the agent's stdout line by line. Every raw line is
// appended to the log file; assistant-message lines additionally
// contribute their text content to transcript. Malformed lines are
// ignored defensively — the protocol promises one JSON object per line,
// but a truncated write or a CLI version skew shouldn't abort the run.
func drainStdout(r io.Reader, logFile io.Writer, transcript *strings.Builder) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()

		_, _ = logFile.Write(line)
		_, _ = logFile.Write([]byte("\n"))

		var ev streamEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		if ev.Type != "assistant" || ev.Message == nil {
			continue
		}
		for _, content := range ev.Message.Content {
			if content.Type == "text" && content.Text != "" {
				transcript.WriteString(content.Text)
			}
		}
	}
}

// drainStderr discards the agent's stderr, preventing the pipe buffer
// from filling and blocking the child while stdout is still being read.
func drainStderr(r io.Reader) {
	_, _ = io.Copy(io.Discard, r)
}
