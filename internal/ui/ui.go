// Package ui provides unified output formatting for the foundry CLI.
//
// Overview:
//   - Responsibility: Human-facing progress lines, warnings, errors and the final summary
//   - Key Types: Message, Summary
//   - Concurrency Model: Thread-safe output operations guarded by a package mutex
//   - Error Semantics: Output failures are ignored; the generated tree is the product
//   - Performance Notes: One write per message
//
// Usage:
//
//	ui.Step(1, 5, "Rendering %s", "common")
//	ui.Warning("template root missing: %s", root)
//	ui.PrintSummary(summary)
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	verbose    bool
	jsonOutput bool
	stdout     io.Writer = os.Stdout
	stderr     io.Writer = os.Stderr
	mu         sync.RWMutex
)

// OutputLevel represents the severity level of a message.
type OutputLevel string

const (
	LevelDebug   OutputLevel = "debug"
	LevelInfo    OutputLevel = "info"
	LevelWarning OutputLevel = "warning"
	LevelError   OutputLevel = "error"
	LevelSuccess OutputLevel = "success"
)

// Message represents a structured output message.
type Message struct {
	Level     OutputLevel `json:"level"`
	Text      string      `json:"text"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SetVerbose enables or disables debug messages.
func SetVerbose(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = enabled
}

// SetJSONOutput enables JSON-formatted output.
func SetJSONOutput(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	jsonOutput = enabled
}

// SetOutput redirects standard and error output. Nil keeps the current writer.
func SetOutput(out, errOut io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

// output writes a message to the appropriate output stream.
//
// Parameters:
//   - level: Message severity level
//   - data: Structured payload, only emitted in JSON mode
//   - text: Formatted message
//
// Concurrency:
//   - Thread-safe
func output(level OutputLevel, data interface{}, text string) {
	mu.RLock()
	defer mu.RUnlock()

	if level == LevelDebug && !verbose {
		return
	}

	if jsonOutput {
		encoder := json.NewEncoder(stdout)
		if err := encoder.Encode(Message{Level: level, Text: text, Data: data, Timestamp: time.Now()}); err != nil {
			fmt.Fprintf(stderr, "Failed to encode JSON output: %v\n", err)
		}
		return
	}

	writer := stdout
	if level == LevelError || level == LevelWarning {
		writer = stderr
	}

	var prefix string
	switch level {
	case LevelDebug:
		prefix = "[debug]"
	case LevelInfo:
		prefix = "[info]"
	case LevelWarning:
		prefix = "[warn]"
	case LevelError:
		prefix = "[error]"
	case LevelSuccess:
		prefix = "[ok]"
	}

	fmt.Fprintf(writer, "%s %s\n", prefix, text)
}

// Debug outputs a debug message; shown only in verbose mode.
func Debug(format string, args ...interface{}) {
	output(LevelDebug, nil, fmt.Sprintf(format, args...))
}

// Info outputs an informational message.
func Info(format string, args ...interface{}) {
	output(LevelInfo, nil, fmt.Sprintf(format, args...))
}

// Warning outputs a warning message.
func Warning(format string, args ...interface{}) {
	output(LevelWarning, nil, fmt.Sprintf(format, args...))
}

// Error outputs an error message.
func Error(format string, args ...interface{}) {
	output(LevelError, nil, fmt.Sprintf(format, args...))
}

// Success outputs a success message.
func Success(format string, args ...interface{}) {
	output(LevelSuccess, nil, fmt.Sprintf(format, args...))
}

// Step outputs a step indicator with message.
func Step(step, total int, format string, args ...interface{}) {
	mu.RLock()
	useJSON := jsonOutput
	out := stdout
	mu.RUnlock()

	text := fmt.Sprintf(format, args...)
	if useJSON {
		output(LevelInfo, map[string]int{"step": step, "total": total}, text)
		return
	}
	fmt.Fprintf(out, "  [%d/%d] %s\n", step, total, text)
}

// Summary describes a finished (or planned) generation.
type Summary struct {
	Title     string      `json:"title"`
	Fields    [][2]string `json:"fields"`
	Files     []string    `json:"files,omitempty"`
	NextSteps []string    `json:"next_steps,omitempty"`
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// RenderSummary formats a summary as a bordered box.
func RenderSummary(s Summary) string {
	width := 0
	for _, f := range s.Fields {
		if len(f[0]) > width {
			width = len(f[0])
		}
	}

	lines := []string{titleStyle.Render(s.Title), ""}
	for _, f := range s.Fields {
		lines = append(lines, keyStyle.Render(fmt.Sprintf("%-*s", width, f[0]))+"  "+f[1])
	}
	if len(s.Files) > 0 {
		lines = append(lines, "")
		for _, f := range s.Files {
			lines = append(lines, "  "+f)
		}
	}
	if len(s.NextSteps) > 0 {
		lines = append(lines, "", titleStyle.Render("Next steps"))
		for i, step := range s.NextSteps {
			lines = append(lines, fmt.Sprintf("  %d. %s", i+1, step))
		}
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// PrintSummary writes the summary box, or a JSON message in JSON mode.
func PrintSummary(s Summary) {
	mu.RLock()
	useJSON := jsonOutput
	out := stdout
	mu.RUnlock()

	if useJSON {
		output(LevelSuccess, s, s.Title)
		return
	}
	fmt.Fprintln(out, RenderSummary(s))
}
