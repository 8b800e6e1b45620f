package tool

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/store"
)

func (e *Executor) listOffers(ctx context.Context, args arguments) contractx.Envelope {
	venueID, failure := args.requireInt("restaurant_id")
	if failure != nil {
		return failure
	}

	offers, err := e.gateway.ActiveOffers(ctx, venueID, e.today())
	if err != nil {
		return contractx.Failure(fmt.Sprintf("Error retrieving offers: %v", err)).With("offers", []store.Offer{})
	}

	if len(offers) == 0 {
		name := fmt.Sprintf("Restaurant #%d", venueID)
		if v, err := e.gateway.GetVenue(ctx, venueID); err == nil {
			name = v.Name
		}
		return contractx.Success(fmt.Sprintf("No active offers at %s right now.", name)).With("offers", []store.Offer{})
	}

	return contractx.Success(fmt.Sprintf("Found %d active offer(s)", len(offers))).
		With("offers", offers).
		With("count", len(offers))
}
