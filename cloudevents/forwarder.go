// Package cloudevents forwards dispatched notifications to a CloudEvents
// sink. A Forwarder is registered as an open notification handler:
//
//	sender, _ := cehttp.New(cehttp.WithTarget("http://broker/events"))
//	fwd := cloudevents.NewForwarder(sender, cloudevents.ForwarderConfig{Source: "/toolbox"})
//	dispatch.RegisterOpenNotificationHandler(reg, fwd)
package cloudevents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/binding"
	"github.com/cloudevents/sdk-go/v2/protocol"
	"github.com/fxsml/dispatch"
	"github.com/google/uuid"
)

// DefaultSource is the event source used when none is configured.
const DefaultSource = "/dispatch"

// ForwarderConfig configures a Forwarder.
type ForwarderConfig struct {
	// Source is set as the source attribute of every event (default: "/dispatch").
	Source string
	// TypeName derives the event type from a notification (default: TypeName).
	TypeName func(v any) string
	// Logger is used for logging (default: slog.Default()).
	Logger dispatch.Logger
}

// Forwarder converts notifications into CloudEvents with JSON data and sends
// them through a protocol.Sender.
type Forwarder struct {
	sender protocol.Sender
	cfg    ForwarderConfig
	now    func() time.Time
}

// NewForwarder creates a Forwarder sending through sender.
func NewForwarder(sender protocol.Sender, cfg ForwarderConfig) *Forwarder {
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if cfg.TypeName == nil {
		cfg.TypeName = TypeName
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Forwarder{
		sender: sender,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Handle sends n as a CloudEvent. An unacknowledged send is returned as an
// error, which stops delivery of the notification to later handlers.
func (f *Forwarder) Handle(ctx context.Context, n any) error {
	event, err := f.event(n)
	if err != nil {
		return err
	}

	result := f.sender.Send(ctx, binding.ToMessage(event))
	if protocol.IsACK(result) {
		f.cfg.Logger.Debug("Notification forwarded",
			"component", "forwarder",
			"id", event.ID(),
			"type", event.Type())
		return nil
	}

	f.cfg.Logger.Error("Notification forward failed",
		"component", "forwarder",
		"id", event.ID(),
		"type", event.Type(),
		"error", result)
	return fmt.Errorf("cloudevents: forwarding %s: %w", event.Type(), result)
}

func (f *Forwarder) event(n any) (*cloudevents.Event, error) {
	e := cloudevents.NewEvent()
	e.SetID(uuid.NewString())
	e.SetSource(f.cfg.Source)
	e.SetType(f.cfg.TypeName(n))
	e.SetTime(f.now())
	if err := e.SetData(cloudevents.ApplicationJSON, n); err != nil {
		return nil, fmt.Errorf("cloudevents: set data: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("cloudevents: invalid event: %w", err)
	}
	return &e, nil
}

var _ dispatch.NotificationHandler[any] = (*Forwarder)(nil)
