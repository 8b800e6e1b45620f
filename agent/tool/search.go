package tool

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/geo"
)

// searchByArea returns every venue whose name mentions the area, topped up
// with the nearest other venues when fewer than the minimum match. No radius
// applies; distance is attached for display.
func (e *Executor) searchByArea(ctx context.Context, args arguments) contractx.Envelope {
	area, failure := args.requireString("area_name")
	if failure != nil {
		return failure
	}
	filter, failure := e.searchFilter(args)
	if failure != nil {
		return failure
	}

	candidates, err := e.loadCandidates(ctx, filter.venue)
	if err != nil {
		return contractx.Failure(fmt.Sprintf("Error searching restaurants: %v", err)).With("results", []VenueListing{})
	}
	if len(candidates) == 0 {
		return emptyResults("No destinations found. Try expanding your search.")
	}

	candidates, msg := e.narrow(candidates, filter)
	if msg != "" {
		return emptyResults(msg)
	}

	needle := strings.ToLower(area)
	matches := keep(candidates, func(l VenueListing) bool { return nameContains(l, needle) })

	if missing := e.rules.AreaMinimumResults - len(matches); missing > 0 {
		others := keep(candidates, func(l VenueListing) bool { return !nameContains(l, needle) })
		for _, r := range geo.Nearest(others, e.ambient.Origin, missing) {
			alt := r.Item
			alt.FallbackReason = fmt.Sprintf("Nearby alternative (~%.1f km)", r.DistanceKM)
			matches = append(matches, alt)
		}
	}
	if len(matches) == 0 {
		return emptyResults(fmt.Sprintf("No %s destinations found in %s. Shall we look at adjacent neighbourhoods?", e.rules.Brand, area))
	}

	results := e.finalize(geo.Rank(matches, e.ambient.Origin))
	return contractx.Success(fmt.Sprintf("Found %d restaurants", len(results))).
		With("results", results).
		With("count", len(results))
}

// searchNearby returns the closest venues inside the radius, capped at the
// configured result limit.
func (e *Executor) searchNearby(ctx context.Context, args arguments) contractx.Envelope {
	maxKM := e.rules.DefaultRadiusKM
	if v, ok, err := args.Float("max_distance_km"); err != nil {
		return invalidArgument(err)
	} else if ok && v > 0 {
		maxKM = v
	}

	filter, failure := e.searchFilter(args)
	if failure != nil {
		return failure
	}
	band, ok, err := args.String("price_range")
	if err != nil {
		return invalidArgument(err)
	}
	if ok && band != "" {
		if _, known := e.rules.PriceBands[band]; !known {
			return contractx.Failure(fmt.Sprintf("Invalid price range %q. Use one of %s.", band, strings.Join(e.rules.PriceBandNames(), ", ")))
		}
		filter.venue.PriceRange = band
	}

	candidates, err := e.loadCandidates(ctx, filter.venue)
	if err != nil {
		return contractx.Failure(fmt.Sprintf("Error searching restaurants: %v", err)).With("results", []VenueListing{})
	}
	if len(candidates) == 0 {
		return emptyResults("No destinations found. Try expanding your search.")
	}

	candidates, msg := e.narrow(candidates, filter)
	if msg != "" {
		return emptyResults(msg)
	}

	within := geo.FilterWithinRadius(candidates, e.ambient.Origin, maxKM)
	if len(within) == 0 {
		next := maxKM + e.rules.RadiusStepKM
		return emptyResults(fmt.Sprintf("No restaurants found within %skm. Try increasing the distance.", formatKM(maxKM))).
			With("suggestion", fmt.Sprintf("Expand search to %skm", formatKM(next))).
			With("suggested_radius_km", next)
	}

	results := e.finalize(within)
	total := len(results)
	if limit := e.rules.NearbyResultLimit; limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return contractx.Success(fmt.Sprintf("Found %d restaurants", total)).
		With("results", results).
		With("count", total)
}

func (e *Executor) searchFilter(args arguments) (candidateFilter, contractx.Envelope) {
	var f candidateFilter

	rating, ok, err := args.Float("min_rating")
	if err != nil {
		return f, invalidArgument(err)
	}
	if ok {
		f.venue.MinRating = &rating
	}

	if f.parking, _, err = args.Bool("has_parking"); err != nil {
		return f, invalidArgument(err)
	}
	if f.offersOnly, _, err = args.Bool("has_offers"); err != nil {
		return f, invalidArgument(err)
	}
	return f, nil
}

// finalize copies ranked distances onto the listings and annotates them.
func (e *Executor) finalize(ranked []geo.Ranked[VenueListing]) []VenueListing {
	out := make([]VenueListing, 0, len(ranked))
	for _, r := range ranked {
		l := r.Item
		l.DistanceKM = r.DistanceKM
		l.RevenueOps = e.rules.RevenueOps(l.Venue)
		out = append(out, l)
	}
	return out
}

func emptyResults(message string) contractx.Envelope {
	return contractx.Success(message).With("results", []VenueListing{})
}

func formatKM(km float64) string {
	return strconv.FormatFloat(km, 'f', -1, 64)
}

var _ geo.Locatable = VenueListing{}
