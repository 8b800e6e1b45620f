package tool

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/store"
)

const (
	YieldSurge    = "surge"
	YieldDiscount = "discount"
	YieldSteady   = "steady"
)

// Rules holds the business constants applied by the tools: the flat
// reservation fee, spend estimates per price band and the revenue-ops
// thresholds.
type Rules struct {
	Brand          string
	ReservationFee int

	PriceBands            map[string]int
	DefaultSpendPerPerson int

	SurgeFloor    int
	SurgeRatio    float64
	DiscountRatio float64

	PremiumBid           int
	PremiumBidMinRating  float64
	PremiumBidMinTables  int
	StandardBid          int
	StandardBidMinRating float64

	EnterpriseCapacity int
	EnterpriseKeywords []string

	DefaultRadiusKM    float64
	RadiusStepKM       float64
	NearbyResultLimit  int
	AreaMinimumResults int
	MaxTextLength      int
}

func DefaultRules() Rules {
	return Rules{
		Brand:          "GoodFoods",
		ReservationFee: 50,
		PriceBands: map[string]int{
			"₹":    600,
			"₹₹":   1200,
			"₹₹₹":  1800,
			"₹₹₹₹": 2500,
		},
		DefaultSpendPerPerson: 1200,
		SurgeFloor:            2,
		SurgeRatio:            0.10,
		DiscountRatio:         0.50,
		PremiumBid:            80,
		PremiumBidMinRating:   4.7,
		PremiumBidMinTables:   4,
		StandardBid:           60,
		StandardBidMinRating:  4.5,
		EnterpriseCapacity:    90,
		EnterpriseKeywords:    []string{"dinner", "wine"},
		DefaultRadiusKM:       10,
		RadiusStepKM:          5,
		NearbyResultLimit:     5,
		AreaMinimumResults:    3,
		MaxTextLength:         500,
	}
}

// RevenueOps is the yield, sponsorship and spend guidance attached to every
// venue a search returns.
type RevenueOps struct {
	YieldSignal             string  `json:"yield_signal"`
	YieldHint               string  `json:"yield_hint"`
	SponsoredBid            *int    `json:"sponsored_bid"`
	EnterpriseFit           bool    `json:"enterprise_fit"`
	EnterpriseHint          *string `json:"enterprise_hint"`
	EstimatedSpendPerPerson int     `json:"estimated_spend_per_person"`
	EstimatedSpendForTwo    int     `json:"estimated_spend_for_two"`
	EstimatedSpendHint      string  `json:"estimated_spend_hint"`
}

func (r Rules) SpendPerPerson(priceRange string) int {
	if v, ok := r.PriceBands[priceRange]; ok {
		return v
	}
	return r.DefaultSpendPerPerson
}

// PriceBandNames returns the configured bands from cheapest to most expensive.
func (r Rules) PriceBandNames() []string {
	names := make([]string, 0, len(r.PriceBands))
	for name := range r.PriceBands {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return r.PriceBands[a] - r.PriceBands[b]
	})
	return names
}

func (r Rules) RevenueOps(v store.Venue) RevenueOps {
	capacity := max(v.TotalCapacity, 1)
	available := v.AvailableTables

	var ops RevenueOps
	switch {
	case available <= max(r.SurgeFloor, int(float64(capacity)*r.SurgeRatio)):
		ops.YieldSignal = YieldSurge
		ops.YieldHint = "High demand window: consider premium pricing or two-turn seating."
	case available >= int(float64(capacity)*r.DiscountRatio):
		ops.YieldSignal = YieldDiscount
		ops.YieldHint = "Plenty of inventory: trigger lunch bundles or limited-time discounts."
	default:
		ops.YieldSignal = YieldSteady
		ops.YieldHint = "Steady flow: standard pricing applies."
	}

	switch {
	case v.Rating >= r.PremiumBidMinRating && available >= r.PremiumBidMinTables:
		bid := r.PremiumBid
		ops.SponsoredBid = &bid
	case v.Rating >= r.StandardBidMinRating:
		bid := r.StandardBid
		ops.SponsoredBid = &bid
	}

	cuisine := strings.ToLower(v.Cuisine)
	ops.EnterpriseFit = v.TotalCapacity >= r.EnterpriseCapacity ||
		slices.ContainsFunc(r.EnterpriseKeywords, func(k string) bool { return strings.Contains(cuisine, k) })
	if ops.EnterpriseFit {
		hint := "Suitable for corporate dining or private events."
		ops.EnterpriseHint = &hint
	}

	perPerson := r.SpendPerPerson(v.PriceRange)
	ops.EstimatedSpendPerPerson = perPerson
	ops.EstimatedSpendForTwo = perPerson * 2
	ops.EstimatedSpendHint = fmt.Sprintf("Typical spend ~₹%d per guest (₹%d for two).", perPerson, perPerson*2)

	return ops
}
