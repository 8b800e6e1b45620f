// Package geo computes great-circle distances and ranks locatable items by
// proximity to an origin.
package geo

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

const earthRadiusKM = 6371.0088

type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

type Locatable interface {
	Coordinates() Point
}

// Ranked pairs an item with its distance from the query origin.
type Ranked[T any] struct {
	Item       T
	DistanceKM float64
}

// Distance returns the haversine distance between a and b in kilometres,
// rounded to two decimals.
func Distance(a, b Point) float64 {
	if a == b {
		return 0
	}

	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return round2(earthRadiusKM * c)
}

// FilterWithinRadius keeps the items at most maxKM from origin, nearest first.
func FilterWithinRadius[T Locatable](items []T, origin Point, maxKM float64) []Ranked[T] {
	out := make([]Ranked[T], 0, len(items))
	for _, item := range items {
		d := Distance(origin, item.Coordinates())
		if d <= maxKM {
			out = append(out, Ranked[T]{Item: item, DistanceKM: d})
		}
	}
	sortByDistance(out)
	return out
}

// Nearest returns up to limit items ordered by distance, ignoring any radius.
func Nearest[T Locatable](items []T, origin Point, limit int) []Ranked[T] {
	if limit <= 0 {
		return []Ranked[T]{}
	}

	out := Rank(items, origin)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Rank annotates every item with its distance, nearest first.
func Rank[T Locatable](items []T, origin Point) []Ranked[T] {
	out := make([]Ranked[T], 0, len(items))
	for _, item := range items {
		out = append(out, Ranked[T]{Item: item, DistanceKM: Distance(origin, item.Coordinates())})
	}
	sortByDistance(out)
	return out
}

// FormatDistance renders distances under a kilometre in metres.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d m", int(km*1000))
	}
	return fmt.Sprintf("%.1f km", km)
}

func sortByDistance[T any](items []Ranked[T]) {
	slices.SortStableFunc(items, func(a, b Ranked[T]) int {
		return cmp.Compare(a.DistanceKM, b.DistanceKM)
	})
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
