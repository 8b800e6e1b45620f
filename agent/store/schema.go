package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

type tableSpec struct {
	model       any
	foreignKeys []string
}

var tables = []tableSpec{
	{model: (*Customer)(nil)},
	{model: (*Venue)(nil)},
	{model: (*Reservation)(nil), foreignKeys: []string{
		`("customer_id") REFERENCES "customers" ("id") ON DELETE CASCADE`,
		`("restaurant_id") REFERENCES "restaurants" ("id") ON DELETE CASCADE`,
	}},
	{model: (*Offer)(nil), foreignKeys: []string{
		`("restaurant_id") REFERENCES "restaurants" ("id") ON DELETE CASCADE`,
	}},
	{model: (*Feedback)(nil), foreignKeys: []string{
		`("customer_id") REFERENCES "customers" ("id") ON DELETE CASCADE`,
		`("restaurant_id") REFERENCES "restaurants" ("id") ON DELETE CASCADE`,
		`("reservation_id") REFERENCES "reservations" ("id") ON DELETE SET NULL`,
	}},
	{model: (*LogEntry)(nil), foreignKeys: []string{
		`("customer_id") REFERENCES "customers" ("id") ON DELETE CASCADE`,
	}},
}

type indexSpec struct {
	model   any
	name    string
	columns []string
}

var indexes = []indexSpec{
	{model: (*Reservation)(nil), name: "idx_reservations_customer", columns: []string{"customer_id"}},
	{model: (*Reservation)(nil), name: "idx_reservations_restaurant_date", columns: []string{"restaurant_id", "reservation_date"}},
	{model: (*Offer)(nil), name: "idx_daily_offers_restaurant", columns: []string{"restaurant_id"}},
	{model: (*Feedback)(nil), name: "idx_feedback_restaurant", columns: []string{"restaurant_id"}},
	{model: (*LogEntry)(nil), name: "idx_conversation_logs_customer", columns: []string{"customer_id", "created_at"}},
}

// Migrate creates missing tables and indexes. It is safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, t := range tables {
			q := tx.NewCreateTable().Model(t.model).IfNotExists()
			for _, fk := range t.foreignKeys {
				q = q.ForeignKey(fk)
			}
			if _, err := q.Exec(ctx); err != nil {
				return fmt.Errorf("store: create table %T: %w", t.model, err)
			}
		}

		for _, idx := range indexes {
			if _, err := tx.NewCreateIndex().
				Model(idx.model).
				Index(idx.name).
				Column(idx.columns...).
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("store: create index %s: %w", idx.name, err)
			}
		}
		return nil
	})
}
