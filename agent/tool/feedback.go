package tool

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/store"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/validate"
)

func (e *Executor) submitFeedback(ctx context.Context, args arguments) contractx.Envelope {
	venueID, failure := args.requireInt("restaurant_id")
	if failure != nil {
		return failure
	}
	rating, failure := args.requireInt("rating")
	if failure != nil {
		return failure
	}
	comment, _, err := args.String("comment")
	if err != nil {
		return invalidArgument(err)
	}
	reservationID, hasReservation, err := args.Int("reservation_id")
	if err != nil {
		return invalidArgument(err)
	}

	if !validate.IsValidRating(int(rating)) {
		return contractx.Failure("Invalid rating. Please provide a rating from 1-5 stars.")
	}

	venue, err := e.gateway.GetVenue(ctx, venueID)
	if errors.Is(err, store.ErrNotFound) {
		return venueNotFound(venueID)
	}
	if err != nil {
		return contractx.Failure(fmt.Sprintf("Error submitting feedback: %v", err))
	}

	fb := &store.Feedback{
		CustomerID:   e.ambient.CustomerID,
		RestaurantID: venueID,
		Rating:       int(rating),
	}
	if hasReservation {
		r, err := e.gateway.GetReservation(ctx, reservationID)
		if err != nil || r.CustomerID != e.ambient.CustomerID {
			return contractx.Failure(fmt.Sprintf("Reservation #%d not found or doesn't belong to you.", reservationID))
		}
		fb.ReservationID = &reservationID
	}
	if c := validate.SanitizeString(comment, e.rules.MaxTextLength); c != "" {
		fb.Comment = &c
	}

	if err := e.gateway.CreateFeedback(ctx, fb); err != nil {
		return contractx.Failure(fmt.Sprintf("Error submitting feedback: %v", err))
	}

	return contractx.Success(fmt.Sprintf(
		"Thank you for your %d-star feedback on %s! Your review helps others discover great dining experiences.",
		rating, venue.Name,
	)).With("feedback_id", fb.ID)
}
