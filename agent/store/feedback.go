package store

import (
	"context"
	"fmt"

	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/validate"
)

func (s *Store) CreateFeedback(ctx context.Context, f *Feedback) error {
	if !validate.IsValidRating(f.Rating) {
		return fmt.Errorf("%w: rating %d", ErrInvalidArgument, f.Rating)
	}
	f.CreatedAt = s.timestamp()

	if _, err := s.db.NewInsert().Model(f).Exec(ctx); err != nil {
		return fmt.Errorf("store: insert feedback: %w", err)
	}
	return nil
}

// VenueFeedback lists feedback for a venue, newest first.
func (s *Store) VenueFeedback(ctx context.Context, venueID int64) ([]FeedbackEntry, error) {
	entries := make([]FeedbackEntry, 0)
	err := s.db.NewSelect().
		Model(&entries).
		ColumnExpr("f.*").
		ColumnExpr("c.name AS customer_name").
		Join("JOIN customers AS c ON c.id = f.customer_id").
		Where("f.restaurant_id = ?", venueID).
		OrderExpr("f.created_at DESC, f.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: venue feedback: %w", err)
	}
	return entries, nil
}
