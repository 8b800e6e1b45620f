package store

import (
	"context"
	"fmt"
	"strings"
)

func (s *Store) CreateOffer(ctx context.Context, o *Offer) error {
	if strings.TrimSpace(o.Title) == "" {
		return fmt.Errorf("%w: offer title is required", ErrInvalidArgument)
	}
	if o.ValidFrom == "" || o.ValidUntil == "" || o.ValidUntil < o.ValidFrom {
		return fmt.Errorf("%w: offer window %q..%q", ErrInvalidArgument, o.ValidFrom, o.ValidUntil)
	}
	o.CreatedAt = s.timestamp()

	if _, err := s.db.NewInsert().Model(o).Exec(ctx); err != nil {
		return fmt.Errorf("store: insert offer: %w", err)
	}
	return nil
}

// ActiveOffers returns the venue's active offers whose validity window
// contains asOf (YYYY-MM-DD).
func (s *Store) ActiveOffers(ctx context.Context, venueID int64, asOf string) ([]Offer, error) {
	offers := make([]Offer, 0)
	err := s.db.NewSelect().
		Model(&offers).
		Where("o.restaurant_id = ?", venueID).
		Where("o.is_active = ?", true).
		Where("o.valid_from <= ?", asOf).
		Where("o.valid_until >= ?", asOf).
		OrderExpr("o.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: active offers: %w", err)
	}
	return offers, nil
}

// ActiveOfferTitles maps venue id to the titles of its offers active on asOf.
func (s *Store) ActiveOfferTitles(ctx context.Context, asOf string) (map[int64][]string, error) {
	var offers []Offer
	err := s.db.NewSelect().
		Model(&offers).
		Column("restaurant_id", "offer_title").
		Where("o.is_active = ?", true).
		Where("o.valid_from <= ?", asOf).
		Where("o.valid_until >= ?", asOf).
		OrderExpr("o.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: active offer titles: %w", err)
	}

	titles := make(map[int64][]string)
	for _, o := range offers {
		titles[o.RestaurantID] = append(titles[o.RestaurantID], o.Title)
	}
	return titles, nil
}
