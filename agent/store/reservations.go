package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

type NewReservation struct {
	CustomerID      int64
	RestaurantID    int64
	Date            string
	Time            string
	PartySize       int
	SpecialRequests string
}

// Reserve inserts a confirmed reservation and takes one table from the venue
// in a single transaction. It fails with ErrFullyBooked when no table is left
// and ErrNotFound when the venue does not exist; neither leaves a row behind.
func (s *Store) Reserve(ctx context.Context, in NewReservation) (*Reservation, error) {
	if in.PartySize <= 0 {
		return nil, fmt.Errorf("%w: party size must be positive", ErrInvalidArgument)
	}

	now := s.timestamp()
	r := &Reservation{
		CustomerID:   in.CustomerID,
		RestaurantID: in.RestaurantID,
		Date:         in.Date,
		Time:         in.Time,
		PartySize:    in.PartySize,
		Status:       StatusConfirmed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.SpecialRequests != "" {
		req := in.SpecialRequests
		r.SpecialRequests = &req
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*Venue)(nil)).
			Set("available_tables = available_tables - 1").
			Where("id = ?", in.RestaurantID).
			Where("available_tables > 0").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("store: take table: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			exists, err := tx.NewSelect().Model((*Venue)(nil)).Where("r.id = ?", in.RestaurantID).Exists(ctx)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: venue %d", ErrNotFound, in.RestaurantID)
			}
			return fmt.Errorf("%w: venue %d", ErrFullyBooked, in.RestaurantID)
		}

		if _, err := tx.NewInsert().Model(r).Exec(ctx); err != nil {
			return fmt.Errorf("store: insert reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Cancel marks a reservation cancelled and returns its table to the venue,
// never lifting availability above capacity. It reports false when the
// reservation does not exist or was already cancelled.
func (s *Store) Cancel(ctx context.Context, id int64) (bool, error) {
	cancelled := false

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		r := new(Reservation)
		if err := tx.NewSelect().Model(r).Where("res.id = ?", id).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}

		res, err := tx.NewUpdate().
			Model((*Reservation)(nil)).
			Set("status = ?", StatusCancelled).
			Set("updated_at = ?", s.timestamp()).
			Where("id = ?", id).
			Where("status <> ?", StatusCancelled).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("store: cancel reservation: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			return err
		}

		if _, err := tx.NewUpdate().
			Model((*Venue)(nil)).
			Set("available_tables = available_tables + 1").
			Where("id = ?", r.RestaurantID).
			Where("available_tables < total_capacity").
			Exec(ctx); err != nil {
			return fmt.Errorf("store: release table: %w", err)
		}

		cancelled = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return cancelled, nil
}

func (s *Store) GetReservation(ctx context.Context, id int64) (*Reservation, error) {
	r := new(Reservation)
	if err := s.db.NewSelect().Model(r).Where("res.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "reservation", id)
	}
	return r, nil
}

// UpdateReservationStatus closes out a confirmed reservation as completed or
// no_show. Cancellation goes through Cancel so the venue inventory stays paired.
func (s *Store) UpdateReservationStatus(ctx context.Context, id int64, status string) (bool, error) {
	if status != StatusCompleted && status != StatusNoShow {
		return false, fmt.Errorf("%w: status %q", ErrInvalidArgument, status)
	}

	res, err := s.db.NewUpdate().
		Model((*Reservation)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", s.timestamp()).
		Where("id = ?", id).
		Where("status = ?", StatusConfirmed).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("store: update reservation status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CustomerReservations lists a customer's bookings, newest date first. An
// empty status or "all" returns every status.
func (s *Store) CustomerReservations(ctx context.Context, customerID int64, status string) ([]Booking, error) {
	bookings := make([]Booking, 0)
	q := s.db.NewSelect().
		Model(&bookings).
		ColumnExpr("res.*").
		ColumnExpr("r.name AS restaurant_name, r.cuisine, r.address").
		Join("JOIN restaurants AS r ON r.id = res.restaurant_id").
		Where("res.customer_id = ?", customerID)

	if status != "" && status != "all" {
		q = q.Where("res.status = ?", status)
	}

	if err := q.OrderExpr("res.reservation_date DESC, res.reservation_time DESC, res.id DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("store: customer reservations: %w", err)
	}
	return bookings, nil
}
