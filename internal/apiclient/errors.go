package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RemoteError is returned when a call to the generation API fails.
// Status is the HTTP status code, or 0 when no response was received.
type RemoteError struct {
	Operation string
	Status    int
	Detail    string
	Cause     error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Status == 0 && e.Cause != nil:
		return fmt.Sprintf("%s: request failed: %v", e.Operation, e.Cause)
	case e.Detail != "":
		return fmt.Sprintf("%s: remote status %d: %s", e.Operation, e.Status, e.Detail)
	default:
		return fmt.Sprintf("%s: remote status %d", e.Operation, e.Status)
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// Transport reports whether the call failed before any response was received.
func (e *RemoteError) Transport() bool {
	return e.Status == 0
}

// DecodeError is returned when a 2xx response body cannot be understood.
type DecodeError struct {
	Operation string
	Cause     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: invalid response body: %v", e.Operation, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Detail returns the server-provided detail message carried by err, or "".
func Detail(err error) string {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Detail
	}
	return ""
}

// validationIssue is one entry of a FastAPI 422 detail list.
type validationIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// parseDetail extracts the "detail" field of a JSON error body.
// A string detail is returned as is; a list of validation issues is flattened to "loc: msg; ...".
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var issues []validationIssue
	if err := json.Unmarshal(envelope.Detail, &issues); err == nil {
		parts := make([]string, 0, len(issues))
		for _, issue := range issues {
			if issue.Msg == "" {
				continue
			}
			if loc := joinLoc(issue.Loc); loc != "" {
				parts = append(parts, loc+": "+issue.Msg)
			} else {
				parts = append(parts, issue.Msg)
			}
		}
		return strings.Join(parts, "; ")
	}

	if string(envelope.Detail) == "null" {
		return ""
	}
	return string(envelope.Detail)
}

// joinLoc renders a FastAPI location path, dropping the leading "body" segment.
func joinLoc(loc []any) string {
	parts := make([]string, 0, len(loc))
	for i, p := range loc {
		s := fmt.Sprint(p)
		if i == 0 && s == "body" {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}
