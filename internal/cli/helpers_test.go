package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"autograder/internal/config"
	"autograder/internal/output"
)

// serviceRequest is a request received by the fake grading service.
type serviceRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// fakeService is an httptest server standing in for the grading service.
type fakeService struct {
	*httptest.Server

	mu        sync.Mutex
	requests  []serviceRequest
	responses map[string][]byte
	status    map[string]int
}

func newFakeService(t *testing.T, responses map[string][]byte) *fakeService {
	t.Helper()
	fs := &fakeService{
		responses: responses,
		status:    map[string]int{},
	}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		fs.mu.Lock()
		fs.requests = append(fs.requests, serviceRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		code, hasCode := fs.status[r.URL.Path]
		reply, ok := fs.responses[r.URL.Path]
		fs.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		if hasCode {
			w.WriteHeader(code)
		}
		_, _ = w.Write(reply)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeService) Requests() []serviceRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]serviceRequest(nil), fs.requests...)
}

func (fs *fakeService) Paths() []string {
	var paths []string
	for _, r := range fs.Requests() {
		paths = append(paths, r.Path)
	}
	return paths
}

// cannedResponses returns the responses of a successful grading run.
func cannedResponses() map[string][]byte {
	return map[string][]byte{
		"/register":     []byte(`{"status":"ok"}`),
		"/schedule":     []byte(`{"status":"ok"}`),
		"/last_run":     []byte(`{"autgrader_run_log":"run123.log"}`),
		"/log/download": []byte("log-content"),
	}
}

// clearToken removes GITHUB_TOKEN from the process environment for the
// duration of the test so only the .env file supplies it.
func clearToken(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_TOKEN", "")
	os.Unsetenv("GITHUB_TOKEN")
}

// writeEnvFile creates a .env file in dir and returns its path.
func writeEnvFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	return path
}

// newTestApp creates an App pointed at baseURL, with a credentials file in
// a temp dir and artifacts written to another temp dir.
func newTestApp(t *testing.T, baseURL string) (*App, *bytes.Buffer, string) {
	t.Helper()
	clearToken(t)

	cfg := config.DefaultConfig()
	cfg.Service.BaseURL = baseURL
	cfg.Credentials.EnvFile = writeEnvFile(t, t.TempDir(), "GITHUB_TOKEN=ghp_test\n")
	outDir := t.TempDir()
	cfg.Output.Dir = outDir

	buf := &bytes.Buffer{}
	app := NewApp(cfg, output.NewPrinterWithWriter(buf), nil)
	return app, buf, outDir
}

// execute runs the root command with args and returns its error and
// anything the command wrote to its own output.
func execute(app *App, args ...string) (string, error) {
	rootCmd := NewRootCommand(app)
	outBuf := &bytes.Buffer{}
	rootCmd.SetOut(outBuf)
	rootCmd.SetErr(outBuf)
	if args == nil {
		// cobra falls back to os.Args for nil
		args = []string{}
	}
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return outBuf.String(), err
}
