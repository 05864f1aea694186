package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/noxus/internal/client/models"
	"github.com/dmitrijs2005/noxus/internal/logging"
)

const subscriberBuffer = 16

// emitter fans auth events out to subscribers. A subscriber that does not
// keep up loses events rather than blocking the caller.
type emitter struct {
	mu     sync.Mutex
	subs   map[int]chan models.AuthEvent
	nextID int
	logger logging.Logger
}

func newEmitter(l logging.Logger) *emitter {
	return &emitter{subs: make(map[int]chan models.AuthEvent), logger: l}
}

func (e *emitter) subscribe() (<-chan models.AuthEvent, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	ch := make(chan models.AuthEvent, subscriberBuffer)
	e.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.subs, id)
			close(ch)
		})
	}
}

func (e *emitter) emit(ctx context.Context, ev models.AuthEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, ch := range e.subs {
		select {
		case ch <- ev:
		default:
			e.logger.Warn(ctx, "auth event dropped", "event", ev.Name(), "subscriber", id)
		}
	}
}

func (e *emitter) closeAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
}
