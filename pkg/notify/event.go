package notify

import (
	"time"

	"github.com/samvad-hq/samvad-api-client/pkg/apierror"
)

// Event types.
const (
	EventReloginRequired = "relogin_required"
	EventMaintenance     = "maintenance"
)

// Event is the payload published when the API forces a session-level reaction.
type Event struct {
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	Code       int       `json:"code"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent constructs an Event of typ from the API failure that triggered it.
func NewEvent(typ string, err *apierror.Error) Event {
	evt := Event{Type: typ, OccurredAt: time.Now().UTC()}
	if err != nil {
		evt.URL = err.URL
		evt.Code = err.Code
		evt.Title = err.Title
		evt.Message = err.Description
	}
	return evt
}
