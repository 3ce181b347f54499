package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/glp-lookup/pkg/client"
	"github.com/Sternrassler/glp-lookup/pkg/logging"
	"github.com/rs/zerolog"
)

func TestRunLogger_TagsEveryLine(t *testing.T) {
	tests := []struct {
		flow string
		run  func(*Service) error
	}{
		{
			flow: flowDevice,
			run: func(s *Service) error {
				_, err := s.LookupDevices(context.Background(), DeviceRequest{IDs: []string{"A1", "B2"}})
				return err
			},
		},
		{
			flow: flowSubscription,
			run: func(s *Service) error {
				_, err := s.LookupSubscriptions(context.Background(), SubscriptionRequest{Keys: []string{"K1"}})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.flow, func(t *testing.T) {
			buf := &bytes.Buffer{}
			base := zerolog.New(buf).Level(zerolog.DebugLevel).With().Str(logging.FieldComponent, "lookup").Logger()

			devices := &fakeDevices{inventory: []client.Device{device("A1", "ws", "f")}}
			svc := NewService(devices, &fakeSubscriptions{}, Config{},
				WithLogger(base),
				WithClock(func() time.Time { return fixedToday }),
			)
			svc.config.DeviceInterval = 0
			svc.config.PageInterval = 0

			if err := tt.run(svc); err != nil {
				t.Fatalf("lookup error = %v", err)
			}

			var runID string
			var messages []string
			for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
				var line map[string]any
				if err := json.Unmarshal([]byte(raw), &line); err != nil {
					t.Fatalf("log line is not JSON: %q", raw)
				}
				messages = append(messages, line["message"].(string))

				id, _ := line[logging.FieldRunID].(string)
				if id == "" {
					t.Errorf("line %q has no run_id", raw)
					continue
				}
				if runID == "" {
					runID = id
				} else if id != runID {
					t.Errorf("run_id changed within a run: %s then %s", runID, id)
				}
				if line[logging.FieldFlow] != tt.flow {
					t.Errorf("flow = %v, want %s", line[logging.FieldFlow], tt.flow)
				}
				if line[logging.FieldComponent] != "lookup" {
					t.Errorf("component = %v, want lookup", line[logging.FieldComponent])
				}
			}

			if len(messages) < 2 || messages[0] != "Lookup run started" || messages[len(messages)-1] != "Lookup run finished" {
				t.Errorf("messages = %v, want run start first and finish last", messages)
			}
		})
	}
}
