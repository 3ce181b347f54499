package lookup

import (
	"context"
	"math"
	"strconv"
)

// emitter writes a run's events to its output channel. It drops everything
// after the first terminal event and stops once ctx is done.
type emitter struct {
	ctx      context.Context
	out      chan<- Event
	terminal bool
}

func newEmitter(ctx context.Context, out chan<- Event) *emitter {
	return &emitter{ctx: ctx, out: out}
}

// send reports whether ev was delivered.
func (e *emitter) send(ev Event) bool {
	if e.terminal {
		return false
	}
	select {
	case e.out <- ev:
	case <-e.ctx.Done():
		return false
	}
	if ev.Type.Terminal() {
		e.terminal = true
	}
	return true
}

func (e *emitter) authError(status int) bool {
	return e.send(Event{Type: EventAuthError, Status: status, Message: AuthMessage})
}

func (e *emitter) done(data any) bool {
	return e.send(Event{Type: EventDone, Data: data})
}

// percent returns part/total*100 rounded half to even, 0 when total is 0.
func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(part) / float64(total) * 100))
}

// percent1 is percent with one decimal place, ties to even on the exact
// binary value.
func percent1(part, total int) float64 {
	if total == 0 {
		return 0
	}
	v := float64(part) / float64(total) * 100
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}
