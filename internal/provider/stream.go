package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/reviewarena/arena/internal/models"
)

// Stream invokes a CLI that emits JSON-lines events and extracts the final
// assistant text from the stream. Reasoning events are dropped.
type Stream struct {
	model models.Model
	opts  Options
}

// NewStream creates a Stream provider for the model.
func NewStream(m models.Model, opts Options) *Stream {
	return &Stream{model: m, opts: opts}
}

func (s *Stream) Name() string { return s.model.ID }

// streamEvent is the subset of event fields we care about. Different CLIs
// name the payload differently; we accept the common shapes.
type streamEvent struct {
	Type    string `json:"type"`
	Result  string `json:"result"`
	Text    string `json:"text"`
	Message struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
}

// Invoke runs the model command and decodes its event stream.
func (s *Stream) Invoke(ctx context.Context, prompt string) (string, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	workdir, err := workdirFor(s.opts)
	if err != nil {
		return "", fmt.Errorf("invocation workdir: %w", err)
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", s.model.Command)
	cmd.Dir = workdir
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w%s", s.model.ID, err, stderrTail(stderr.String(), 3))
	}

	return ParseEventStream(stdout.String()), nil
}

// ParseEventStream extracts the final answer from a JSON-lines event stream.
// A terminal "result" event wins; otherwise assistant text blocks are
// concatenated in order. Non-JSON lines and reasoning/thinking events are
// ignored.
func ParseEventStream(raw string) string {
	var parts []string
	var result string

	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "{") {
			continue
		}
		var ev streamEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		switch ev.Type {
		case "result":
			if ev.Result != "" {
				result = ev.Result
			}
		case "thinking", "reasoning":
			// internal reasoning, never part of the answer
		case "assistant", "message":
			for _, block := range ev.Message.Content {
				if block.Type == "text" && block.Text != "" {
					parts = append(parts, block.Text)
				}
			}
		default:
			if ev.Text != "" {
				parts = append(parts, ev.Text)
			}
		}
	}

	if result != "" {
		return Normalize(result)
	}
	return Normalize(strings.Join(parts, ""))
}
