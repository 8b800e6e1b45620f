package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/events"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/store"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/validate"
)

const (
	msgInvalidDate      = "Invalid date. Please provide a date today or in the future (YYYY-MM-DD format)."
	msgInvalidTimeSlot  = "Invalid time slot. Please use 30-minute intervals (e.g., 18:00, 18:30, 19:00)."
	msgInvalidPartySize = "Invalid party size. Please specify 1-20 people."
)

func (e *Executor) makeReservation(ctx context.Context, args arguments) contractx.Envelope {
	venueID, failure := args.requireInt("restaurant_id")
	if failure != nil {
		return failure
	}
	date, failure := args.requireString("reservation_date")
	if failure != nil {
		return failure
	}
	slot, failure := args.requireString("reservation_time")
	if failure != nil {
		return failure
	}
	party, failure := args.requireInt("party_size")
	if failure != nil {
		return failure
	}
	requests, _, err := args.String("special_requests")
	if err != nil {
		return invalidArgument(err)
	}

	if !validate.IsValidDateOn(date, e.now()) {
		return contractx.Failure(msgInvalidDate)
	}
	if !validate.IsValidTimeSlot(slot) {
		return contractx.Failure(msgInvalidTimeSlot)
	}
	if !validate.IsValidPartySize(int(party)) {
		return contractx.Failure(msgInvalidPartySize)
	}

	venue, err := e.gateway.GetVenue(ctx, venueID)
	if errors.Is(err, store.ErrNotFound) {
		return venueNotFound(venueID)
	}
	if err != nil {
		return contractx.Failure(fmt.Sprintf("Error creating reservation: %v", err))
	}
	if venue.AvailableTables <= 0 {
		return fullyBooked(venue.Name)
	}

	reservation, err := e.gateway.Reserve(ctx, store.NewReservation{
		CustomerID:      e.ambient.CustomerID,
		RestaurantID:    venueID,
		Date:            date,
		Time:            slot,
		PartySize:       int(party),
		SpecialRequests: validate.SanitizeString(requests, e.rules.MaxTextLength),
	})
	switch {
	case errors.Is(err, store.ErrFullyBooked):
		return fullyBooked(venue.Name)
	case errors.Is(err, store.ErrNotFound):
		return venueNotFound(venueID)
	case err != nil:
		return contractx.Failure(fmt.Sprintf("Error creating reservation: %v", err))
	}

	// The committed reservation stands even if the follow-up reads fail.
	if fresh, err := e.gateway.GetVenue(ctx, venueID); err == nil {
		venue = fresh
	} else {
		venue.AvailableTables--
	}
	offers, err := e.gateway.ActiveOffers(ctx, venueID, e.today())
	if err != nil {
		log.Warn().Err(err).Int64("restaurant_id", venueID).Msg("offer lookup after reservation failed")
		offers = nil
	}

	fee := e.rules.ReservationFee
	perPerson := e.rules.SpendPerPerson(venue.PriceRange)
	subtotal := perPerson * int(party)

	message := fmt.Sprintf("Reservation confirmed at %s! A ₹%d reservation fee has been added.", venue.Name, fee)
	if len(offers) > 0 {
		message += fmt.Sprintf("\n\nSpecial Offer Available: %s - %s", offers[0].Title, offers[0].Description)
	}

	e.publish(ctx, events.ReservationConfirmed, reservation, venue.Name)

	return contractx.Success(message).
		With("reservation", reservation).
		With("restaurant", venue).
		With("has_offers", len(offers) > 0).
		With("reservation_fee", fee).
		With("estimated_spend_per_person", perPerson).
		With("estimated_subtotal", subtotal).
		With("estimated_total_with_fee", subtotal+fee)
}

func (e *Executor) cancelReservation(ctx context.Context, args arguments) contractx.Envelope {
	reservationID, failure := args.requireInt("reservation_id")
	if failure != nil {
		return failure
	}

	bookings, err := e.gateway.CustomerReservations(ctx, e.ambient.CustomerID, "all")
	if err != nil {
		return contractx.Failure(fmt.Sprintf("Error cancelling reservation: %v", err))
	}

	var booking *store.Booking
	for i := range bookings {
		if bookings[i].ID == reservationID {
			booking = &bookings[i]
			break
		}
	}
	if booking == nil {
		return contractx.Failure(fmt.Sprintf("Reservation #%d not found or doesn't belong to you.", reservationID))
	}
	if booking.Status == store.StatusCancelled {
		return contractx.Failure(fmt.Sprintf("Reservation #%d is already cancelled.", reservationID))
	}

	ok, err := e.gateway.Cancel(ctx, reservationID)
	if err != nil {
		return contractx.Failure(fmt.Sprintf("Error cancelling reservation: %v", err))
	}
	if !ok {
		return contractx.Failure("Failed to cancel reservation.")
	}

	booking.Status = store.StatusCancelled
	e.publish(ctx, events.ReservationCancelled, &booking.Reservation, booking.RestaurantName)

	return contractx.Success(fmt.Sprintf("Reservation #%d at %s has been cancelled.", reservationID, booking.RestaurantName)).
		With("reservation", booking)
}

func (e *Executor) listBookings(ctx context.Context, args arguments) contractx.Envelope {
	status, ok, err := args.String("status")
	if err != nil {
		return invalidArgument(err)
	}
	if !ok || status == "" {
		status = store.StatusConfirmed
	}

	bookings, err := e.gateway.CustomerReservations(ctx, e.ambient.CustomerID, status)
	if err != nil {
		return contractx.Failure(fmt.Sprintf("Error retrieving bookings: %v", err)).With("bookings", []store.Booking{})
	}
	if len(bookings) == 0 {
		msg := fmt.Sprintf("No %s reservations found.", status)
		if status == "all" {
			msg = "No reservations found."
		}
		return contractx.Success(msg).With("bookings", []store.Booking{})
	}

	return contractx.Success(fmt.Sprintf("Found %d reservation(s)", len(bookings))).
		With("bookings", bookings).
		With("count", len(bookings))
}

func (e *Executor) publish(ctx context.Context, kind string, r *store.Reservation, venueName string) {
	event := events.BookingEvent{
		Type:           kind,
		ReservationID:  r.ID,
		CustomerID:     r.CustomerID,
		RestaurantID:   r.RestaurantID,
		RestaurantName: venueName,
		Date:           r.Date,
		Time:           r.Time,
		PartySize:      r.PartySize,
		OccurredAt:     e.now().UTC(),
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).
			Str("event", kind).
			Int64("reservation_id", r.ID).
			Msg("booking event not published")
	}
}

func venueNotFound(id int64) contractx.Envelope {
	return contractx.Failure(fmt.Sprintf("Restaurant ID %d not found.", id))
}

func fullyBooked(name string) contractx.Envelope {
	return contractx.Failure(fmt.Sprintf("%s is fully booked. Please try a different time or restaurant.", name))
}
