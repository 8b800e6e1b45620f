package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/events"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/geo"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/store"
)

var (
	fixedNow = time.Date(2030, time.January, 15, 12, 0, 0, 0, time.Local)
	tNagar   = geo.Point{Lat: 13.0418, Lon: 80.2337}
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) snapshot() []events.BookingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.BookingEvent(nil), p.events...)
}

type fixture struct {
	store     *store.Store
	exec      *Executor
	publisher *recordingPublisher
	guest     *store.Customer
	other     *store.Customer
	venues    map[string]*store.Venue
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(ctx, store.Config{DSN: fmt.Sprintf("file:tool_%s?mode=memory&cache=shared", name)})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	guest, err := s.CreateCustomer(ctx, "Asha", "9876543210", "")
	if err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}
	other, err := s.CreateCustomer(ctx, "Kiran", "9123456780", "")
	if err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}

	seed := []*store.Venue{
		{Name: "GoodFoods Besant Nagar", Cuisine: "Seafood", Latitude: 13.0008, Longitude: 80.2668, Address: "Elliot's Beach Rd", TotalCapacity: 80, AvailableTables: 45, Rating: 4.6, PriceRange: "₹₹₹", HasParking: true},
		{Name: "GoodFoods T. Nagar", Cuisine: "South Indian", Latitude: 13.0418, Longitude: 80.2337, Address: "Usman Rd", TotalCapacity: 60, AvailableTables: 2, Rating: 4.8, PriceRange: "₹₹"},
		{Name: "GoodFoods Adyar", Cuisine: "North Indian", Latitude: 13.0067, Longitude: 80.2570, Address: "LB Rd", TotalCapacity: 100, AvailableTables: 30, Rating: 4.2, PriceRange: "₹₹"},
		{Name: "GoodFoods Velachery", Cuisine: "Chettinad", Latitude: 12.9815, Longitude: 80.2180, Address: "100 Feet Rd", TotalCapacity: 40, AvailableTables: 0, Rating: 4.0, PriceRange: "₹"},
		{Name: "GoodFoods Mahabalipuram", Cuisine: "Wine & Dinner", Latitude: 12.6208, Longitude: 80.1945, Address: "ECR", TotalCapacity: 50, AvailableTables: 30, Rating: 4.9, PriceRange: "₹₹₹₹"},
	}
	venues := make(map[string]*store.Venue, len(seed))
	for _, v := range seed {
		if err := s.CreateVenue(ctx, v); err != nil {
			t.Fatalf("CreateVenue() error = %v", err)
		}
		venues[strings.TrimPrefix(v.Name, "GoodFoods ")] = v
	}

	offer := &store.Offer{
		RestaurantID: venues["Besant Nagar"].ID,
		Title:        "Sunset Platter",
		Description:  "15% off seafood platters",
		IsActive:     true,
		ValidFrom:    "2030-01-10",
		ValidUntil:   "2030-01-31",
	}
	if err := s.CreateOffer(ctx, offer); err != nil {
		t.Fatalf("CreateOffer() error = %v", err)
	}

	pub := &recordingPublisher{}
	exec, err := NewExecutor(s, Ambient{CustomerID: guest.ID, Origin: tNagar},
		WithClock(func() time.Time { return fixedNow }),
		WithPublisher(pub),
	)
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	return &fixture{store: s, exec: exec, publisher: pub, guest: guest, other: other, venues: venues}
}

func (f *fixture) run(t *testing.T, tool string, args map[string]any) contractx.Envelope {
	t.Helper()
	raw, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return f.exec.Run(context.Background(), tool, string(raw))
}

func listings(t *testing.T, env contractx.Envelope) []VenueListing {
	t.Helper()
	got, ok := env["results"].([]VenueListing)
	if !ok {
		t.Fatalf("results type = %T", env["results"])
	}
	return got
}

func TestNewExecutorValidates(t *testing.T) {
	t.Parallel()

	if _, err := NewExecutor(nil, Ambient{CustomerID: 1}); err == nil {
		t.Fatal("expected error for nil gateway")
	}
	if _, err := NewExecutor(&store.Store{}, Ambient{}); err == nil {
		t.Fatal("expected error for missing customer")
	}
}

func TestCatalogMatchesHandlers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	infos := f.exec.Catalog()
	if len(infos) != len(Names) {
		t.Fatalf("catalog size = %d, want %d", len(infos), len(Names))
	}
	for i, info := range infos {
		if info.Name != Names[i] {
			t.Fatalf("catalog[%d] = %s, want %s", i, info.Name, Names[i])
		}
		if _, ok := f.exec.handlers[info.Name]; !ok {
			t.Fatalf("no handler for %s", info.Name)
		}
	}
}

func TestRunUnknownToolAndMalformedArgs(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	env := f.exec.Run(context.Background(), "teleport", `{}`)
	if env.OK() || env.Message() != "Unknown tool: teleport" {
		t.Fatalf("unknown tool envelope = %v", env)
	}

	env = f.exec.Run(context.Background(), ToolMakeReservation, `{"restaurant_id": `)
	if env.OK() || !strings.Contains(env.Message(), "Invalid arguments") {
		t.Fatalf("malformed envelope = %v", env)
	}

	env = f.run(t, ToolMakeReservation, map[string]any{"reservation_date": "2030-01-20"})
	if env.OK() || !strings.Contains(env.Message(), "restaurant_id") {
		t.Fatalf("missing arg envelope = %v", env)
	}

	env = f.run(t, ToolCancelReservation, map[string]any{"reservation_id": 1.5})
	if env.OK() || !strings.Contains(env.Message(), "integer") {
		t.Fatalf("fractional id envelope = %v", env)
	}
}

func TestExecuteCarriesCallID(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res := f.exec.Execute(context.Background(), contractx.ToolCall{ID: "call_1", Name: ToolListBookings, Arguments: `{}`})
	if res.CallID != "call_1" || res.Tool != ToolListBookings || !res.Result.OK() {
		t.Fatalf("Execute() = %+v", res)
	}
}

func TestSearchByAreaBackfillsNearest(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	env := f.run(t, ToolSearchByArea, map[string]any{"area_name": "besant nagar"})
	if !env.OK() {
		t.Fatalf("envelope = %v", env)
	}

	got := listings(t, env)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	var direct *VenueListing
	for i := range got {
		if i > 0 && got[i].DistanceKM < got[i-1].DistanceKM {
			t.Fatalf("not sorted by distance: %+v", got)
		}
		if got[i].Name == "GoodFoods Besant Nagar" {
			direct = &got[i]
			continue
		}
		if !strings.HasPrefix(got[i].FallbackReason, "Nearby alternative (~") {
			t.Fatalf("fallback reason = %q", got[i].FallbackReason)
		}
	}
	if direct == nil {
		t.Fatal("direct match missing")
	}
	if direct.FallbackReason != "" {
		t.Fatalf("direct match tagged as fallback: %q", direct.FallbackReason)
	}
	if !direct.HasActiveOffers || direct.OfferPreview == nil || *direct.OfferPreview != "Sunset Platter" {
		t.Fatalf("offer annotation = %+v", direct)
	}
	if got[0].Name != "GoodFoods T. Nagar" || got[0].DistanceKM != 0 {
		t.Fatalf("nearest backfill = %+v, want T. Nagar at 0 km", got[0])
	}
}

func TestSearchByAreaReturnsAllMatchesWithoutRadius(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	env := f.run(t, ToolSearchByArea, map[string]any{"area_name": "GoodFoods"})
	got := listings(t, env)
	if len(got) != 5 {
		t.Fatalf("len = %d, want every venue", len(got))
	}
	if last := got[len(got)-1]; last.Name != "GoodFoods Mahabalipuram" || last.DistanceKM < 40 {
		t.Fatalf("farthest = %+v", last)
	}
}

func TestSearchByAreaFiltersShortCircuit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	env := f.run(t, ToolSearchByArea, map[string]any{"area_name": "Adyar", "min_rating": 5.0})
	if !env.OK() || len(listings(t, env)) != 0 || !strings.Contains(env.Message(), "No destinations found") {
		t.Fatalf("rating filter envelope = %v", env)
	}

	env = f.run(t, ToolSearchByArea, map[string]any{"area_name": "Adyar", "has_offers": true})
	got := listings(t, env)
	if len(got) != 1 || got[0].Name != "GoodFoods Besant Nagar" || got[0].FallbackReason == "" {
		t.Fatalf("offers filter results = %+v", got)
	}

	env = f.run(t, ToolSearchByArea, map[string]any{"area_name": "Adyar", "min_rating": 4.7, "has_parking": true})
	if !env.OK() || len(listings(t, env)) != 0 || !strings.Contains(env.Message(), "parking") {
		t.Fatalf("parking filter envelope = %v", env)
	}

	env = f.run(t, ToolSearchByArea, map[string]any{})
	if env.OK() {
		t.Fatalf("missing area envelope = %v", env)
	}
}

func TestSearchNearbyRadiusLimitAndRevenueOps(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	env := f.run(t, ToolSearchNearby, map[string]any{})
	if !env.OK() {
		t.Fatalf("envelope = %v", env)
	}
	got := listings(t, env)
	if len(got) != 4 || env["count"] != 4 {
		t.Fatalf("results = %d count = %v, want 4 within 10 km", len(got), env["count"])
	}

	byName := map[string]VenueListing{}
	for i, l := range got {
		if l.DistanceKM > 10 {
			t.Fatalf("outside radius: %+v", l)
		}
		if i > 0 && l.DistanceKM < got[i-1].DistanceKM {
			t.Fatalf("not sorted: %+v", got)
		}
		byName[l.Name] = l
	}

	tn := byName["GoodFoods T. Nagar"]
	if tn.YieldSignal != YieldSurge || tn.SponsoredBid == nil || *tn.SponsoredBid != 60 {
		t.Fatalf("T. Nagar ops = %+v", tn.RevenueOps)
	}
	bn := byName["GoodFoods Besant Nagar"]
	if bn.YieldSignal != YieldDiscount || bn.EstimatedSpendPerPerson != 1800 || bn.EstimatedSpendForTwo != 3600 {
		t.Fatalf("Besant Nagar ops = %+v", bn.RevenueOps)
	}
	ad := byName["GoodFoods Adyar"]
	if ad.YieldSignal != YieldSteady || !ad.EnterpriseFit || ad.SponsoredBid != nil {
		t.Fatalf("Adyar ops = %+v", ad.RevenueOps)
	}
}

func TestSearchNearbyEmptySuggestsWiderRadius(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	env := f.run(t, ToolSearchNearby, map[string]any{"min_rating": 4.85})
	if !env.OK() || len(listings(t, env)) != 0 {
		t.Fatalf("envelope = %v", env)
	}
	if env["suggestion"] != "Expand search to 15km" {
		t.Fatalf("suggestion = %v", env["suggestion"])
	}
	if env.Message() != "No restaurants found within 10km. Try increasing the distance." {
		t.Fatalf("message = %q", env.Message())
	}

	env = f.run(t, ToolSearchNearby, map[string]any{"price_range": "$$"})
	if env.OK() {
		t.Fatalf("invalid band envelope = %v", env)
	}

	env = f.run(t, ToolSearchNearby, map[string]any{"max_distance_km": 60, "price_range": "₹₹₹₹"})
	got := listings(t, env)
	if len(got) != 1 || got[0].Name != "GoodFoods Mahabalipuram" || !got[0].EnterpriseFit {
		t.Fatalf("wide search = %+v", got)
	}
}

func TestMakeReservationSuccess(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	venue := f.venues["Besant Nagar"]

	env := f.run(t, ToolMakeReservation, map[string]any{
		"restaurant_id":    venue.ID,
		"reservation_date": "2030-01-20",
		"reservation_time": "19:30",
		"party_size":       "4",
		"special_requests": "  anniversary dinner  ",
	})
	if !env.OK() {
		t.Fatalf("envelope = %v", env)
	}
	if !strings.HasPrefix(env.Message(), "Reservation confirmed at GoodFoods Besant Nagar! A ₹50 reservation fee has been added.") {
		t.Fatalf("message = %q", env.Message())
	}
	if !strings.Contains(env.Message(), "Sunset Platter") {
		t.Fatalf("offer missing from message: %q", env.Message())
	}
	if env["reservation_fee"] != 50 || env["estimated_spend_per_person"] != 1800 ||
		env["estimated_subtotal"] != 7200 || env["estimated_total_with_fee"] != 7250 {
		t.Fatalf("money fields = %v", env)
	}

	res, ok := env["reservation"].(*store.Reservation)
	if !ok || res.Status != store.StatusConfirmed || res.SpecialRequests == nil || *res.SpecialRequests != "anniversary dinner" {
		t.Fatalf("reservation = %#v", env["reservation"])
	}
	v, ok := env["restaurant"].(*store.Venue)
	if !ok || v.AvailableTables != 44 {
		t.Fatalf("restaurant = %#v, want 44 tables left", env["restaurant"])
	}

	evs := f.publisher.snapshot()
	if len(evs) != 1 || evs[0].Type != events.ReservationConfirmed || evs[0].ReservationID != res.ID {
		t.Fatalf("events = %+v", evs)
	}
}

func TestMakeReservationValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	id := f.venues["Adyar"].ID

	cases := []struct {
		args map[string]any
		want string
	}{
		{map[string]any{"restaurant_id": id, "reservation_date": "2030-01-14", "reservation_time": "19:00", "party_size": 2}, msgInvalidDate},
		{map[string]any{"restaurant_id": id, "reservation_date": "20-01-2030", "reservation_time": "19:00", "party_size": 2}, msgInvalidDate},
		{map[string]any{"restaurant_id": id, "reservation_date": "2030-01-20", "reservation_time": "19:15", "party_size": 2}, msgInvalidTimeSlot},
		{map[string]any{"restaurant_id": id, "reservation_date": "2030-01-20", "reservation_time": "19:00", "party_size": 25}, msgInvalidPartySize},
		{map[string]any{"restaurant_id": 999, "reservation_date": "2030-01-20", "reservation_time": "19:00", "party_size": 2}, "Restaurant ID 999 not found."},
		{map[string]any{"restaurant_id": f.venues["Velachery"].ID, "reservation_date": "2030-01-20", "reservation_time": "19:00", "party_size": 2}, "GoodFoods Velachery is fully booked. Please try a different time or restaurant."},
	}
	for _, tc := range cases {
		env := f.run(t, ToolMakeReservation, tc.args)
		if env.OK() || env.Message() != tc.want {
			t.Errorf("args %v: envelope = %v, want %q", tc.args, env, tc.want)
		}
	}

	bookings, err := f.store.CustomerReservations(context.Background(), f.guest.ID, "all")
	if err != nil {
		t.Fatalf("CustomerReservations() error = %v", err)
	}
	if len(bookings) != 0 {
		t.Fatalf("rejected requests left bookings: %+v", bookings)
	}
	if evs := f.publisher.snapshot(); len(evs) != 0 {
		t.Fatalf("events = %+v", evs)
	}
}

func TestCancelReservationFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	venue := f.venues["Adyar"]

	mine, err := f.store.Reserve(ctx, store.NewReservation{CustomerID: f.guest.ID, RestaurantID: venue.ID, Date: "2030-01-20", Time: "20:00", PartySize: 2})
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	theirs, err := f.store.Reserve(ctx, store.NewReservation{CustomerID: f.other.ID, RestaurantID: venue.ID, Date: "2030-01-20", Time: "20:00", PartySize: 2})
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	env := f.run(t, ToolCancelReservation, map[string]any{"reservation_id": theirs.ID})
	if env.OK() || env.Message() != fmt.Sprintf("Reservation #%d not found or doesn't belong to you.", theirs.ID) {
		t.Fatalf("foreign cancel envelope = %v", env)
	}

	env = f.run(t, ToolCancelReservation, map[string]any{"reservation_id": mine.ID})
	if !env.OK() || env.Message() != fmt.Sprintf("Reservation #%d at GoodFoods Adyar has been cancelled.", mine.ID) {
		t.Fatalf("cancel envelope = %v", env)
	}
	after, _ := f.store.GetVenue(ctx, venue.ID)
	if after.AvailableTables != 29 {
		t.Fatalf("available = %d, want 29 (two taken, one returned)", after.AvailableTables)
	}

	env = f.run(t, ToolCancelReservation, map[string]any{"reservation_id": mine.ID})
	if env.OK() || env.Message() != fmt.Sprintf("Reservation #%d is already cancelled.", mine.ID) {
		t.Fatalf("double cancel envelope = %v", env)
	}

	evs := f.publisher.snapshot()
	if len(evs) != 1 || evs[0].Type != events.ReservationCancelled || evs[0].RestaurantName != "GoodFoods Adyar" {
		t.Fatalf("events = %+v", evs)
	}
}

func TestListBookings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	env := f.run(t, ToolListBookings, map[string]any{})
	if !env.OK() || env.Message() != "No confirmed reservations found." {
		t.Fatalf("empty envelope = %v", env)
	}

	venue := f.venues["Adyar"]
	kept, _ := f.store.Reserve(ctx, store.NewReservation{CustomerID: f.guest.ID, RestaurantID: venue.ID, Date: "2030-01-20", Time: "20:00", PartySize: 2})
	dropped, _ := f.store.Reserve(ctx, store.NewReservation{CustomerID: f.guest.ID, RestaurantID: venue.ID, Date: "2030-01-21", Time: "20:00", PartySize: 2})
	if _, err := f.store.Cancel(ctx, dropped.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	env = f.run(t, ToolListBookings, map[string]any{})
	bookings, ok := env["bookings"].([]store.Booking)
	if !ok || len(bookings) != 1 || bookings[0].ID != kept.ID {
		t.Fatalf("confirmed bookings = %#v", env["bookings"])
	}

	env = f.run(t, ToolListBookings, map[string]any{"status": "all"})
	if env["count"] != 2 {
		t.Fatalf("all count = %v", env["count"])
	}

	env = f.run(t, ToolListBookings, map[string]any{"status": "no_show"})
	if !env.OK() || env.Message() != "No no_show reservations found." {
		t.Fatalf("no_show envelope = %v", env)
	}
}

func TestListOffers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	env := f.run(t, ToolListOffers, map[string]any{"restaurant_id": f.venues["Besant Nagar"].ID})
	offers, ok := env["offers"].([]store.Offer)
	if !env.OK() || !ok || len(offers) != 1 || offers[0].Title != "Sunset Platter" {
		t.Fatalf("envelope = %v", env)
	}

	env = f.run(t, ToolListOffers, map[string]any{"restaurant_id": f.venues["T. Nagar"].ID})
	if !env.OK() || env.Message() != "No active offers at GoodFoods T. Nagar right now." {
		t.Fatalf("envelope = %v", env)
	}

	env = f.run(t, ToolListOffers, map[string]any{"restaurant_id": 999})
	if !env.OK() || env.Message() != "No active offers at Restaurant #999 right now." {
		t.Fatalf("envelope = %v", env)
	}
}

func TestSubmitFeedback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	venue := f.venues["T. Nagar"]

	env := f.run(t, ToolSubmitFeedback, map[string]any{"restaurant_id": venue.ID, "rating": 6})
	if env.OK() || env.Message() != "Invalid rating. Please provide a rating from 1-5 stars." {
		t.Fatalf("invalid rating envelope = %v", env)
	}

	theirs, err := f.store.Reserve(ctx, store.NewReservation{CustomerID: f.other.ID, RestaurantID: venue.ID, Date: "2030-01-20", Time: "20:00", PartySize: 2})
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	env = f.run(t, ToolSubmitFeedback, map[string]any{"restaurant_id": venue.ID, "rating": 4, "reservation_id": theirs.ID})
	if env.OK() {
		t.Fatalf("foreign reservation envelope = %v", env)
	}

	env = f.run(t, ToolSubmitFeedback, map[string]any{"restaurant_id": venue.ID, "rating": 5, "comment": "Crisp dosas"})
	want := "Thank you for your 5-star feedback on GoodFoods T. Nagar! Your review helps others discover great dining experiences."
	if !env.OK() || env.Message() != want {
		t.Fatalf("envelope = %v", env)
	}

	entries, err := f.store.VenueFeedback(ctx, venue.ID)
	if err != nil {
		t.Fatalf("VenueFeedback() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Comment == nil || *entries[0].Comment != "Crisp dosas" || entries[0].CustomerName != "Asha" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestEnvelopesEncodeAsJSON(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	env := f.run(t, ToolSearchNearby, map[string]any{"max_distance_km": 3})

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded struct {
		Status  string           `json:"status"`
		Results []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Status != contractx.StatusSuccess || len(decoded.Results) == 0 {
		t.Fatalf("decoded = %+v", decoded)
	}
	first := decoded.Results[0]
	for _, key := range []string{"id", "name", "distance_km", "yield_signal", "estimated_spend_hint", "has_active_offers"} {
		if _, ok := first[key]; !ok {
			t.Fatalf("result missing %q: %v", key, first)
		}
	}
}
