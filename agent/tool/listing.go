package tool

import (
	"context"
	"strings"

	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/store"
)

// VenueListing is a venue as returned by the search tools.
type VenueListing struct {
	store.Venue

	DistanceKM      float64 `json:"distance_km"`
	HasActiveOffers bool    `json:"has_active_offers"`
	OfferPreview    *string `json:"offer_preview"`
	FallbackReason  string  `json:"fallback_reason,omitempty"`

	RevenueOps
}

type candidateFilter struct {
	venue      store.VenueFilter
	parking    bool
	offersOnly bool
}

// loadCandidates fetches venues and marks the ones with an offer active today.
func (e *Executor) loadCandidates(ctx context.Context, f store.VenueFilter) ([]VenueListing, error) {
	venues, err := e.gateway.FindVenues(ctx, f)
	if err != nil {
		return nil, err
	}
	titles, err := e.gateway.ActiveOfferTitles(ctx, e.today())
	if err != nil {
		return nil, err
	}

	out := make([]VenueListing, 0, len(venues))
	for _, v := range venues {
		l := VenueListing{Venue: v}
		if t := titles[v.ID]; len(t) > 0 {
			preview := t[0]
			l.HasActiveOffers = true
			l.OfferPreview = &preview
		}
		out = append(out, l)
	}
	return out, nil
}

// narrow applies the parking and offer filters. The returned message is
// non-empty when a filter removed every candidate.
func (e *Executor) narrow(items []VenueListing, f candidateFilter) ([]VenueListing, string) {
	if f.offersOnly {
		items = keep(items, func(l VenueListing) bool { return l.HasActiveOffers })
		if len(items) == 0 {
			return nil, "No destinations with active offers found. Try expanding your search."
		}
	}
	if f.parking {
		items = keep(items, func(l VenueListing) bool { return l.HasParking })
		if len(items) == 0 {
			return nil, "No destinations with parking found. Try expanding your search."
		}
	}
	return items, ""
}

func keep(items []VenueListing, pred func(VenueListing) bool) []VenueListing {
	out := make([]VenueListing, 0, len(items))
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

func nameContains(l VenueListing, needle string) bool {
	return strings.Contains(strings.ToLower(l.Name), needle)
}
