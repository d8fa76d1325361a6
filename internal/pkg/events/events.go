package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Type names a domain event.
type Type string

const (
	AccountRegistered Type = "account.registered"
	StudentCreated    Type = "student.created"
	StudentDeleted    Type = "student.deleted"
	StudentPromoted   Type = "student.promoted"
	FacultySubject    Type = "faculty.subject_assigned"
)

// Event is published after the transaction that produced it has committed.
type Event struct {
	Type       Type                   `json:"type"`
	AccountID  int64                  `json:"accountId"`
	OccurredAt time.Time              `json:"occurredAt"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// New stamps an event with the current time.
func New(t Type, accountID int64, data map[string]interface{}) Event {
	return Event{Type: t, AccountID: accountID, OccurredAt: time.Now().UTC(), Data: data}
}

// Publisher delivers domain events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// LogPublisher writes events to the application log.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher returns a Publisher backed by logger.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With().Str("component", "events").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Info().
		Str("event", string(event.Type)).
		Int64("account_id", event.AccountID).
		Interface("data", event.Data).
		Msg("Domain event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
