package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/clusslin/exdicom/internal/models"
)

// Dispatcher announces one completed upload to the downstream relay.
// Delivery is best-effort: the pipeline logs a returned error and continues,
// relying on the relay's polling fallback to pick up missed events.
type Dispatcher interface {
	// Dispatch serializes, signs and delivers the event.
	Dispatch(ctx context.Context, event *models.WebhookEvent) error

	// Close releases the underlying transport.
	Close() error
}

// EncodeEvent serializes the event to its canonical wire form. The signature
// must cover exactly these bytes, so callers encode once and reuse the result
// for both signing and transmission.
func EncodeEvent(event *models.WebhookEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize upload event: %w", err)
	}
	return payload, nil
}

// NoneDispatcher drops events, for deployments where the relay only polls.
type NoneDispatcher struct {
	logger *log.Logger
}

// NewNoneDispatcher creates a dispatcher that only logs.
func NewNoneDispatcher(logger *log.Logger) *NoneDispatcher {
	return &NoneDispatcher{logger: logger}
}

func (d *NoneDispatcher) Dispatch(_ context.Context, event *models.WebhookEvent) error {
	d.logger.Printf("Dispatch disabled, event for identifier %s not delivered (row %d)", event.Identifier, event.RowNumber)
	return nil
}

func (d *NoneDispatcher) Close() error { return nil }

var _ Dispatcher = (*NoneDispatcher)(nil)
