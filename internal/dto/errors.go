package dto

import (
	"errors"
	"fmt"
)

// SessionNotFoundError reports an expired or unknown session id. This is the
// dominant real-world failure of the live pipeline and maps to a 404, never
// to a crash.
type SessionNotFoundError struct {
	SessionId string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %s not found or expired", e.SessionId)
}

// ErrNoPendingMeeting means the consultant has no report-less meeting the
// end-of-session report could attach to.
var ErrNoPendingMeeting = errors.New("no pending meeting without report")

var ErrClientNotFound = errors.New("client not found")

var ErrReportNotFound = errors.New("report not found")
