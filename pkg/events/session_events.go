package events

import "time"

const (
	TypeSessionStarted  = "SESSION_STARTED"
	TypeSessionEnded    = "SESSION_ENDED"
	TypeSessionTimedOut = "SESSION_TIMED_OUT"
	TypeReportGenerated = "REPORT_GENERATED"
)

func NewSessionEnded(sessionId, reportId, meetingId string) Event {
	return BaseEvent{
		Type: TypeSessionEnded,
		Data: map[string]interface{}{
			"sessionId": sessionId,
			"reportId":  reportId,
			"meetingId": meetingId,
		},
		OccurredAt: time.Now(),
	}
}

func NewReportGenerated(reportId, meetingId, reportURL string) Event {
	return BaseEvent{
		Type: TypeReportGenerated,
		Data: map[string]interface{}{
			"reportId":  reportId,
			"meetingId": meetingId,
			"reportUrl": reportURL,
		},
		OccurredAt: time.Now(),
	}
}
