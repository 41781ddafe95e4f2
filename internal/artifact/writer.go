// Package artifact persists the files a grading run leaves behind in the
// working directory: the formatted run result and the raw run log.
//
// Both files are overwritten on every run. Writes go to a temporary file that
// is renamed into place, so an interrupted run never leaves a half-written
// artifact behind.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"autograder/internal/grader"
)

// Default artifact file names.
const (
	DefaultResultFile = "autograder_log.txt"
	DefaultRunLogFile = "autograder_run_log.txt"
)

// ResultIndent is the indentation used for the formatted run result.
const ResultIndent = "    "

// Writer writes run artifacts under a base directory.
type Writer struct {
	dir        string
	resultFile string
	runLogFile string
}

// NewWriter creates a [Writer] rooted at dir. An empty dir means the current
// working directory; empty file names fall back to the defaults.
func NewWriter(dir, resultFile, runLogFile string) *Writer {
	if resultFile == "" {
		resultFile = DefaultResultFile
	}
	if runLogFile == "" {
		runLogFile = DefaultRunLogFile
	}
	return &Writer{
		dir:        dir,
		resultFile: resultFile,
		runLogFile: runLogFile,
	}
}

// ResultPath returns the path of the formatted run result.
func (w *Writer) ResultPath() string {
	return filepath.Join(w.dir, w.resultFile)
}

// RunLogPath returns the path of the downloaded run log.
func (w *Writer) RunLogPath() string {
	return filepath.Join(w.dir, w.runLogFile)
}

// WriteResult re-indents a JSON run result and writes it to [Writer.ResultPath].
//
// Key order and number literals are kept as received. A body that is not
// valid JSON yields an error wrapping [grader.ErrMalformedResult] and leaves
// any existing file untouched.
func (w *Writer) WriteResult(body []byte) error {
	formatted, err := FormatResult(body)
	if err != nil {
		return err
	}
	return writeFile(w.ResultPath(), formatted)
}

// WriteRunLog writes data to [Writer.RunLogPath] byte for byte.
func (w *Writer) WriteRunLog(data []byte) error {
	return writeFile(w.RunLogPath(), data)
}

// ReadResult reads back the run result saved by a previous [Writer.WriteResult].
func (w *Writer) ReadResult() (grader.RunResult, error) {
	data, err := os.ReadFile(w.ResultPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read run result: %w", err)
	}
	return grader.ParseRunResult(data)
}

// FormatResult returns body indented with [ResultIndent].
func FormatResult(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: response is not valid JSON", grader.ErrMalformedResult)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", ResultIndent); err != nil {
		return nil, fmt.Errorf("%w: %v", grader.ErrMalformedResult, err)
	}
	return buf.Bytes(), nil
}

// RenderYAML renders a run result as YAML for display.
func RenderYAML(result grader.RunResult) ([]byte, error) {
	doc := make(map[string]any, len(result))
	for key, raw := range result {
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("failed to decode field %q: %w", key, err)
		}
		doc[key] = value
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run result: %w", err)
	}
	return out, nil
}

func writeFile(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
