// Package grader defines the request and response payloads exchanged with the
// remote autograder service and the HTTP client that carries them.
//
// The payloads form a strict chain: a [RegistrationRequest] is built once per
// run, the [ScheduleRequest] is derived from it with [RegistrationRequest.Schedule],
// and the [LogRequest] is derived from the schedule payload with
// [ScheduleRequest.WithLog]. Nothing constructs the smaller payloads
// independently, so their shared fields cannot drift.
//
// Key types:
//   - [Client] issues the five REST calls against the service
//   - [RunResult] is the loosely-typed result of the last_run call
//   - [Response] carries a status code and the raw body of any call
package grader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// LogNameKey is the field of a run result that names the run's log file.
// The spelling matches what the service sends.
const LogNameKey = "autgrader_run_log"

// Sentinel errors for run result handling.
var (
	// ErrMalformedResult indicates the last_run response was not valid JSON.
	// Nothing is saved and the log download is not attempted.
	ErrMalformedResult = errors.New("malformed run result")

	// ErrLogNameMissing indicates the run result carried no log file name,
	// or was not a JSON object, so the log download request cannot be built.
	ErrLogNameMissing = errors.New("run result has no log file name")
)

// RegistrationRequest declares a team and its repository to the service.
//
// Field order follows the wire format of the original registration body.
type RegistrationRequest struct {
	// Group is the team's group number.
	Group int `json:"group"`

	// Repository is the URL of the team's source repository.
	Repository string `json:"github"`

	// Names lists the team members in order.
	Names []string `json:"names"`

	// Token is the GitHub access token. It is read from the credentials
	// file at startup and never hard-coded.
	Token string `json:"gh_token"`

	// Endpoint is the team's deployed API URL.
	Endpoint string `json:"endpoint"`

	// FrontendEndpoint is the team's deployed front-end URL.
	FrontendEndpoint string `json:"fe_endpoint"`
}

// Schedule returns the schedule payload for this registration: the group and
// token fields only.
func (r RegistrationRequest) Schedule() ScheduleRequest {
	return ScheduleRequest{
		Group: r.Group,
		Token: r.Token,
	}
}

// ScheduleRequest identifies a registered group. It is the body of the
// schedule, last_run and best_run calls.
type ScheduleRequest struct {
	Group int    `json:"group"`
	Token string `json:"gh_token"`
}

// WithLog returns a copy of the schedule payload that also names a log file.
// The name is passed through as the raw JSON value found in the run result.
func (s ScheduleRequest) WithLog(name json.RawMessage) LogRequest {
	return LogRequest{
		ScheduleRequest: s,
		Log:             name,
	}
}

// LogRequest is the body of the log download call.
type LogRequest struct {
	ScheduleRequest
	Log json.RawMessage `json:"log"`
}

// RunResult is the open-ended record returned by the last_run call.
//
// Values are kept as raw JSON so fields this tool does not know about pass
// through untouched. Only [LogNameKey] is required, and only by the log
// download step.
type RunResult map[string]json.RawMessage

// ParseRunResult decodes a last_run response body.
//
// Input that is not valid JSON yields an error wrapping [ErrMalformedResult].
// Valid JSON that is not an object (an array, a scalar, null) decodes to a
// nil RunResult with no error; it has no fields, so [RunResult.LogName]
// reports it.
func ParseRunResult(body []byte) (RunResult, error) {
	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrMalformedResult)
	}
	var result RunResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, nil
	}
	return result, nil
}

// LogName returns the raw JSON value naming the run's log file.
func (r RunResult) LogName() (json.RawMessage, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: result is not a JSON object", ErrLogNameMissing)
	}
	name, ok := r[LogNameKey]
	if !ok {
		return nil, fmt.Errorf("%w: key %q not found", ErrLogNameMissing, LogNameKey)
	}
	return name, nil
}

// Response is the status and raw body of a service call.
type Response struct {
	// Status is the HTTP status line text, e.g. "200 OK".
	Status string

	// StatusCode is the numeric HTTP status.
	StatusCode int

	// Body holds the response bytes exactly as received.
	Body []byte
}
