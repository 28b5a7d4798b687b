package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/instagram-roaster/internal/types"
)

// Event names sent on /roast/stream.
const (
	eventStep     = "step"
	eventError    = "error"
	eventComplete = "complete"
)

// eventStream writes Server-Sent Events. Every event carries an increasing
// id so clients can tell how far a run got.
type eventStream struct {
	w      http.ResponseWriter
	rc     *http.ResponseController
	nextID int
}

// newEventStream commits the event-stream headers. It fails, leaving the
// response untouched, when w cannot flush.
func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	rc := http.NewResponseController(w)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")

	if err := rc.Flush(); err != nil {
		for _, key := range []string{"Content-Type", "Cache-Control", "Connection"} {
			h.Del(key)
		}
		return nil, fmt.Errorf("streaming not supported: %w", err)
	}
	return &eventStream{w: w, rc: rc, nextID: 1}, nil
}

// send writes one event with a JSON payload and flushes it.
func (s *eventStream) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, data); err != nil {
		return err
	}
	s.nextID++
	return s.rc.Flush()
}

// fail ends the stream with an error event shaped like the JSON error body.
func (s *eventStream) fail(resp types.ErrorResponse) error {
	return s.send(eventError, resp)
}

// complete ends the stream with the roast.
func (s *eventStream) complete(roast string) error {
	return s.send(eventComplete, types.RoastResponse{Roasting: roast})
}
