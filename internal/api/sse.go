package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Sternrassler/glp-lookup/pkg/lookup"
)

// writeEventStream drains events as server-sent events, one "data:" line per
// event. When the client disconnects the request context is cancelled, which
// stops the run; the loop then drains the closing channel.
func (a *API) writeEventStream(w http.ResponseWriter, r *http.Request, events <-chan lookup.Event) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	failed := false
	for ev := range events {
		if failed {
			continue
		}
		payload, err := json.Marshal(ev)
		if err != nil {
			a.logger.Error().Err(err).Str("type", string(ev.Type)).Msg("Failed to encode event")
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			a.logger.Debug().Err(err).Msg("Event stream write failed")
			failed = true
			continue
		}
		flusher.Flush()
	}
}
