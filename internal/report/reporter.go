package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/encoding/json"

	"p2p-report/internal/interfaces"
	"p2p-report/internal/types"
)

// Reporter writes run results to a single JSON file, replacing it each time.
type Reporter struct {
	path string
}

var _ interfaces.ReportWriter = (*Reporter)(nil)

// NewReporter creates a reporter that writes to path
func NewReporter(path string) *Reporter {
	return &Reporter{path: path}
}

func (r *Reporter) Path() string {
	return r.path
}

// WriteReport saves a successful report and returns the file path
func (r *Reporter) WriteReport(ctx context.Context, report *types.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("write report: nil report")
	}
	return r.save(ctx, toDocument(report))
}

// WriteFailure saves a failure payload and returns the file path
func (r *Reporter) WriteFailure(ctx context.Context, failure *types.FailureReport) (string, error) {
	if failure == nil {
		return "", fmt.Errorf("write failure: nil payload")
	}
	return r.save(ctx, toFailureDocument(failure))
}

func (r *Reporter) save(ctx context.Context, v any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode %s: %w", r.path, err)
	}

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(r.path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", r.path, err)
	}
	return r.path, nil
}

// Envelope is a report file read back from disk. Exactly one of Report and
// Failure is set, depending on the success flag.
type Envelope struct {
	Success bool
	Report  *Document
	Failure *FailureDocument
}

// Load reads a file previously written by a Reporter.
func Load(path string) (*Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var head struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	env := &Envelope{Success: head.Success}
	if head.Success {
		env.Report = &Document{}
		err = json.Unmarshal(data, env.Report)
	} else {
		env.Failure = &FailureDocument{}
		err = json.Unmarshal(data, env.Failure)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return env, nil
}
