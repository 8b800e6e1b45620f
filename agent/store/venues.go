package store

import (
	"context"
	"fmt"
	"strings"
)

type VenueFilter struct {
	Cuisine    string
	MinRating  *float64
	PriceRange string
	HasParking *bool
}

func (s *Store) CreateVenue(ctx context.Context, v *Venue) error {
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("%w: venue name is required", ErrInvalidArgument)
	}
	if v.TotalCapacity < 0 || v.AvailableTables < 0 || v.AvailableTables > v.TotalCapacity {
		return fmt.Errorf("%w: available tables %d outside 0..%d", ErrInvalidArgument, v.AvailableTables, v.TotalCapacity)
	}
	if v.City == "" {
		v.City = "Chennai"
	}
	if v.PriceRange == "" {
		v.PriceRange = "₹₹"
	}
	if v.OpeningTime == "" {
		v.OpeningTime = "11:00"
	}
	if v.ClosingTime == "" {
		v.ClosingTime = "23:00"
	}
	v.CreatedAt = s.timestamp()

	if _, err := s.db.NewInsert().Model(v).Exec(ctx); err != nil {
		return fmt.Errorf("store: insert venue: %w", err)
	}
	return nil
}

func (s *Store) GetVenue(ctx context.Context, id int64) (*Venue, error) {
	v := new(Venue)
	if err := s.db.NewSelect().Model(v).Where("r.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "venue", id)
	}
	return v, nil
}

// FindVenues lists venues matching every set filter, best rated first.
func (s *Store) FindVenues(ctx context.Context, f VenueFilter) ([]Venue, error) {
	venues := make([]Venue, 0)
	q := s.db.NewSelect().Model(&venues)

	if f.Cuisine != "" {
		q = q.Where("r.cuisine = ?", f.Cuisine)
	}
	if f.MinRating != nil {
		q = q.Where("r.rating >= ?", *f.MinRating)
	}
	if f.PriceRange != "" {
		q = q.Where("r.price_range = ?", f.PriceRange)
	}
	if f.HasParking != nil {
		q = q.Where("r.has_parking = ?", *f.HasParking)
	}

	if err := q.OrderExpr("r.rating DESC, r.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("store: find venues: %w", err)
	}
	return venues, nil
}
