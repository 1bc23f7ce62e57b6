package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// ImportCommitted is emitted once an import has been written to the store.
type ImportCommitted struct {
	SessionID string    `json:"session_id"`
	Flow      string    `json:"flow"`
	Rows      int       `json:"rows"`
	Upserted  int       `json:"upserted"`
	Inserted  int       `json:"inserted"`
	Updated   int       `json:"updated"`
	Unmatched int       `json:"unmatched"`
	At        time.Time `json:"at"`
}

func (e ImportCommitted) RoutingKey() string { return "import." + e.Flow }

func (e ImportCommitted) Body() ([]byte, error) { return json.Marshal(e) }

type Publisher interface {
	Publish(ctx context.Context, ev ImportCommitted) error
	Close() error
}

// LogPublisher only writes the event to the log.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher { return &LogPublisher{log: log} }

func (p *LogPublisher) Publish(_ context.Context, ev ImportCommitted) error {
	p.log.Info().
		Str("session", ev.SessionID).
		Str("flow", ev.Flow).
		Int("rows", ev.Rows).
		Int("unmatched", ev.Unmatched).
		Msg("import committed")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
