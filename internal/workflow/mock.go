package workflow

import (
	"context"
	"errors"
	"path/filepath"

	"autograder/internal/grader"
)

// MockClient implements [Client] for testing without a network.
//
// Each call is recorded in Calls, and its payload in the matching field.
// Responses are looked up by step name in Responses; a missing entry yields
// a 200 with an empty JSON object. FailOn makes the named call return Err.
type MockClient struct {
	Responses map[string]*grader.Response
	FailOn    string
	Err       error

	Calls        []string
	Registration *grader.RegistrationRequest
	Schedules    []grader.ScheduleRequest
	LogRequest   *grader.LogRequest
}

// ErrMockTransport is returned by [MockClient] when FailOn matches and Err is nil.
var ErrMockTransport = errors.New("mock transport failure")

func (m *MockClient) respond(step string) (*grader.Response, error) {
	m.Calls = append(m.Calls, step)
	if m.FailOn == step {
		if m.Err != nil {
			return nil, m.Err
		}
		return nil, ErrMockTransport
	}
	if resp, ok := m.Responses[step]; ok {
		return resp, nil
	}
	return &grader.Response{Status: "200 OK", StatusCode: 200, Body: []byte(`{}`)}, nil
}

// Register records req and returns the "register" response.
func (m *MockClient) Register(ctx context.Context, req grader.RegistrationRequest) (*grader.Response, error) {
	m.Registration = &req
	return m.respond(StepRegister)
}

// Schedule records req and returns the "schedule" response.
func (m *MockClient) Schedule(ctx context.Context, req grader.ScheduleRequest) (*grader.Response, error) {
	m.Schedules = append(m.Schedules, req)
	return m.respond(StepSchedule)
}

// LastRun records req and returns the "last-run" response.
func (m *MockClient) LastRun(ctx context.Context, req grader.ScheduleRequest) (*grader.Response, error) {
	m.Schedules = append(m.Schedules, req)
	return m.respond(StepLastRun)
}

// BestRun records req and returns the "best-run" response.
func (m *MockClient) BestRun(ctx context.Context, req grader.ScheduleRequest) (*grader.Response, error) {
	m.Schedules = append(m.Schedules, req)
	return m.respond("best-run")
}

// DownloadLog records req and returns the "download-log" response.
func (m *MockClient) DownloadLog(ctx context.Context, req grader.LogRequest) (*grader.Response, error) {
	m.LogRequest = &req
	return m.respond(StepDownloadLog)
}

// MockArtifacts implements [ArtifactWriter] in memory.
type MockArtifacts struct {
	Result []byte
	RunLog []byte
	Err    error
}

// WriteResult stores a copy of body, or returns Err.
func (m *MockArtifacts) WriteResult(body []byte) error {
	if m.Err != nil {
		return m.Err
	}
	m.Result = append([]byte(nil), body...)
	return nil
}

// WriteRunLog stores a copy of data, or returns Err.
func (m *MockArtifacts) WriteRunLog(data []byte) error {
	if m.Err != nil {
		return m.Err
	}
	m.RunLog = append([]byte(nil), data...)
	return nil
}

// ResultPath returns a fixed placeholder path.
func (m *MockArtifacts) ResultPath() string {
	return filepath.Join("mock", "autograder_log.txt")
}

// RunLogPath returns a fixed placeholder path.
func (m *MockArtifacts) RunLogPath() string {
	return filepath.Join("mock", "autograder_run_log.txt")
}
