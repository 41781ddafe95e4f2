package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autograder/internal/grader"
	"autograder/internal/output"
)

func testRegistration() grader.RegistrationRequest {
	return grader.RegistrationRequest{
		Group:            8,
		Repository:       "https://github.com/FA2024-ECE-461-Project/Phase2-Code/",
		Names:            []string{"Jimmy Ho", "Gaurav Vermani", "Ryan Lin", "Nick Ko"},
		Token:            "ghp_secret",
		Endpoint:         "http://18.188.200.155//api",
		FrontendEndpoint: "http://18.188.200.155/",
	}
}

func ok(body string) *grader.Response {
	return &grader.Response{Status: "200 OK", StatusCode: 200, Body: []byte(body)}
}

func cannedResponses() map[string]*grader.Response {
	return map[string]*grader.Response{
		StepRegister:    ok(`{"status":"ok"}`),
		StepSchedule:    ok(`{"status":"ok"}`),
		StepLastRun:     ok(`{"autgrader_run_log":"run123.log"}`),
		StepDownloadLog: ok("log-content"),
	}
}

func setupTestRunner(client *MockClient) (*Runner, *MockArtifacts, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	artifacts := &MockArtifacts{}
	runner := NewRunner(client, artifacts, output.NewPrinterWithWriter(buf), nil)
	return runner, artifacts, buf
}

func TestNewRunner(t *testing.T) {
	runner, _, _ := setupTestRunner(&MockClient{})

	assert.NotEmpty(t, runner.RunID())
	assert.Equal(t, StateInit, runner.State())
}

func TestRunner_Run(t *testing.T) {
	client := &MockClient{Responses: cannedResponses()}
	runner, artifacts, buf := setupTestRunner(client)

	var progress []string
	runner.SetProgressCallback(func(i, total int, step string) {
		assert.Equal(t, 4, total)
		progress = append(progress, step)
	})

	err := runner.Run(context.Background(), testRegistration())

	require.NoError(t, err)
	expected := []string{StepRegister, StepSchedule, StepLastRun, StepDownloadLog}
	assert.Equal(t, expected, client.Calls)
	assert.Equal(t, expected, progress)
	assert.Equal(t, StateLogDownloaded, runner.State())

	assert.Equal(t, `{"autgrader_run_log":"run123.log"}`, string(artifacts.Result))
	assert.Equal(t, []byte("log-content"), artifacts.RunLog)

	require.NotNil(t, client.LogRequest)
	data, err := json.Marshal(client.LogRequest)
	require.NoError(t, err)
	assert.JSONEq(t, `{"group":8,"gh_token":"ghp_secret","log":"run123.log"}`, string(data))

	assert.Contains(t, buf.String(), "RUN COMPLETE")
}

func TestRunner_Run_SchedulePayloadDerivedFromRegistration(t *testing.T) {
	client := &MockClient{Responses: cannedResponses()}
	runner, _, _ := setupTestRunner(client)
	reg := testRegistration()

	require.NoError(t, runner.Run(context.Background(), reg))

	require.Len(t, client.Schedules, 2, "schedule and last_run both send the schedule payload")
	for _, s := range client.Schedules {
		assert.Equal(t, reg.Group, s.Group)
		assert.Equal(t, reg.Token, s.Token)
	}
	assert.Equal(t, reg, *client.Registration)
}

func TestRunner_Run_NonSuccessStatusContinues(t *testing.T) {
	responses := cannedResponses()
	responses[StepRegister] = &grader.Response{StatusCode: 409, Body: []byte("already registered")}
	responses[StepSchedule] = &grader.Response{StatusCode: 500, Body: []byte("oops")}
	client := &MockClient{Responses: responses}
	runner, _, buf := setupTestRunner(client)

	err := runner.Run(context.Background(), testRegistration())

	require.NoError(t, err)
	assert.Len(t, client.Calls, 4)
	assert.Contains(t, buf.String(), "409")
	assert.Contains(t, buf.String(), "already registered")
}

func TestRunner_Run_Failures(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(c *MockClient)
		expectedCalls []string
		expectedState State
		expectErr     error
	}{
		{
			name:          "register transport error stops the run",
			mutate:        func(c *MockClient) { c.FailOn = StepRegister },
			expectedCalls: []string{StepRegister},
			expectedState: StateInit,
			expectErr:     ErrMockTransport,
		},
		{
			name:          "schedule transport error stops the run",
			mutate:        func(c *MockClient) { c.FailOn = StepSchedule },
			expectedCalls: []string{StepRegister, StepSchedule},
			expectedState: StateRegistered,
			expectErr:     ErrMockTransport,
		},
		{
			name: "malformed result",
			mutate: func(c *MockClient) {
				c.Responses[StepLastRun] = ok("<html>Bad Gateway</html>")
			},
			expectedCalls: []string{StepRegister, StepSchedule, StepLastRun},
			expectedState: StateScheduled,
			expectErr:     grader.ErrMalformedResult,
		},
		{
			name: "result that is not an object",
			mutate: func(c *MockClient) {
				c.Responses[StepLastRun] = ok(`[1,2]`)
			},
			expectedCalls: []string{StepRegister, StepSchedule, StepLastRun},
			expectedState: StateResultFetched,
			expectErr:     grader.ErrLogNameMissing,
		},
		{
			name: "result without log name",
			mutate: func(c *MockClient) {
				c.Responses[StepLastRun] = ok(`{"status":"ok"}`)
			},
			expectedCalls: []string{StepRegister, StepSchedule, StepLastRun},
			expectedState: StateResultFetched,
			expectErr:     grader.ErrLogNameMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &MockClient{Responses: cannedResponses()}
			tt.mutate(client)
			runner, _, buf := setupTestRunner(client)

			err := runner.Run(context.Background(), testRegistration())

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expectErr)
			assert.Equal(t, tt.expectedCalls, client.Calls)
			assert.Equal(t, tt.expectedState, runner.State())
			assert.Nil(t, client.LogRequest, "no log download after a failure")
			assert.Contains(t, buf.String(), "RUN FAILED")
		})
	}
}

func TestRunner_FetchLatestResult_MalformedWritesNothing(t *testing.T) {
	client := &MockClient{Responses: map[string]*grader.Response{StepLastRun: ok("not json")}}
	runner, artifacts, _ := setupTestRunner(client)

	result, err := runner.FetchLatestResult(context.Background(), testRegistration().Schedule())

	assert.ErrorIs(t, err, grader.ErrMalformedResult)
	assert.True(t, IsResultError(err))
	assert.Nil(t, result)
	assert.Nil(t, artifacts.Result)
}

func TestRunner_FetchLatestResult_NonObjectIsSaved(t *testing.T) {
	for _, body := range []string{`[1,2]`, `null`, `"x"`} {
		t.Run(body, func(t *testing.T) {
			client := &MockClient{Responses: map[string]*grader.Response{StepLastRun: ok(body)}}
			runner, artifacts, _ := setupTestRunner(client)

			result, err := runner.FetchLatestResult(context.Background(), testRegistration().Schedule())

			require.NoError(t, err)
			assert.Equal(t, body, string(artifacts.Result))
			assert.Equal(t, StateResultFetched, runner.State())

			err = runner.DownloadLog(context.Background(), testRegistration().Schedule(), result)
			assert.ErrorIs(t, err, grader.ErrLogNameMissing)
			assert.Nil(t, client.LogRequest)
		})
	}
}

func TestRunner_DownloadLog_MissingNameSendsNothing(t *testing.T) {
	client := &MockClient{}
	runner, artifacts, _ := setupTestRunner(client)

	err := runner.DownloadLog(context.Background(), testRegistration().Schedule(), grader.RunResult{})

	assert.ErrorIs(t, err, grader.ErrLogNameMissing)
	assert.True(t, IsResultError(err))
	assert.Empty(t, client.Calls)
	assert.Nil(t, artifacts.RunLog)
}

func TestRunner_DownloadLog_WriteFailure(t *testing.T) {
	writeErr := errors.New("disk full")
	client := &MockClient{Responses: cannedResponses()}
	runner := NewRunner(client, &MockArtifacts{Err: writeErr}, output.NewPrinterWithWriter(&bytes.Buffer{}), nil)
	result := grader.RunResult{grader.LogNameKey: json.RawMessage(`"run123.log"`)}

	err := runner.DownloadLog(context.Background(), testRegistration().Schedule(), result)

	assert.ErrorIs(t, err, writeErr)
	assert.False(t, IsResultError(err))
}

func TestRunner_FetchBestResult(t *testing.T) {
	client := &MockClient{Responses: map[string]*grader.Response{"best-run": ok(`{"score":9}`)}}
	runner, _, buf := setupTestRunner(client)

	err := runner.FetchBestResult(context.Background(), testRegistration().Schedule())

	require.NoError(t, err)
	assert.Equal(t, []string{"best-run"}, client.Calls)
	assert.Contains(t, buf.String(), `{"score":9}`)
	assert.Equal(t, StateInit, runner.State())
}

func TestRunner_Register_RedactsToken(t *testing.T) {
	client := &MockClient{}
	runner, _, buf := setupTestRunner(client)

	require.NoError(t, runner.Register(context.Background(), testRegistration()))

	assert.NotContains(t, buf.String(), "ghp_secret")
	assert.Contains(t, buf.String(), `"gh_token":"****"`)
	assert.Equal(t, "ghp_secret", client.Registration.Token, "the real request still carries the token")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "init", StateInit.String())
	assert.Equal(t, "log-downloaded", StateLogDownloaded.String())
	assert.Equal(t, "unknown", State(42).String())
}
