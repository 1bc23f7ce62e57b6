package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"mapa-service/internal/events"
	"mapa-service/internal/fileio"
	"mapa-service/internal/importer/model"
	"mapa-service/internal/store"
)

// Store is the part of the store the importer needs.
type Store interface {
	CityReferences(ctx context.Context) ([]model.CityRef, error)
	Apply(ctx context.Context, batches ...store.Batch) (store.Result, error)
}

type Importer struct {
	store Store
	pub   events.Publisher
	log   zerolog.Logger
	now   func() time.Time
}

func NewImporter(st Store, pub events.Publisher, log zerolog.Logger) *Importer {
	return &Importer{store: st, pub: pub, log: log, now: time.Now}
}

// Preview parses a table and matches it against the stored cities.
func (im *Importer) Preview(ctx context.Context, flow *Flow, t fileio.Table, defaults map[model.Field]string) (model.Preview, error) {
	cities, err := im.store.CityReferences(ctx)
	if err != nil {
		return model.Preview{}, fmt.Errorf("load references: %w", err)
	}
	refs := BuildReferences(flow, cities)
	p, err := Parse(flow, t, refs, defaults)
	if err != nil {
		return p, err
	}
	im.log.Debug().
		Str("flow", string(flow.Name)).
		Int("refs", refs.Len()).
		Int("rows", p.Summary.Total).
		Int("matched", p.Summary.Matched).
		Int("row_errors", len(p.RowErrors)).
		Msg("preview built")
	return p, nil
}

// Commit writes a confirmed preview in one store call and announces it.
// Publishing is best effort.
func (im *Importer) Commit(ctx context.Context, sessionID string, flow *Flow, p model.Preview) (store.Result, error) {
	batches := Plan(flow, p.Results)
	res, err := im.store.Apply(ctx, batches...)
	if err != nil {
		return res, err
	}
	ev := events.ImportCommitted{
		SessionID: sessionID,
		Flow:      string(flow.Name),
		Rows:      res.Total(),
		Upserted:  res.Upserted,
		Inserted:  res.Inserted,
		Updated:   res.Updated,
		Unmatched: p.Summary.Unmatched,
		At:        im.now().UTC(),
	}
	if im.pub != nil {
		if err := im.pub.Publish(ctx, ev); err != nil {
			im.log.Warn().Err(err).Str("session", sessionID).Msg("publish import event")
		}
	}
	return res, nil
}
