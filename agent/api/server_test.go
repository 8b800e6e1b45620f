package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/labstack/echo/v4"

	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/agents/orchestrator"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/geo"
	statex "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/state"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/store"
)

// echoModel replies with the last user message, wrapped as a JSON summary.
type echoModel struct {
	mu    sync.Mutex
	calls int
}

func (m *echoModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	last := input[len(input)-1]
	if last.Content == "explode" {
		return nil, errors.New("provider down")
	}
	return schema.AssistantMessage(fmt.Sprintf(`{"summary":"you said %s"}`, last.Content), nil), nil
}

func (m *echoModel) Stream(context.Context, []*schema.Message, ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

func (m *echoModel) WithTools([]*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return m, nil
}

type testServer struct {
	e     *echo.Echo
	store *store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := store.Open(ctx, store.Config{DSN: fmt.Sprintf("file:api_%s?mode=memory&cache=shared", name)})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	build, err := orchestrator.NewBuilder(orchestrator.FactoryConfig{
		Decider: &echoModel{},
		Gateway: db,
		Log:     db,
	})
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	reg, err := orchestrator.NewRegistry(statex.NewMemoryStore(), build)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	h := NewHandler(db, reg, geo.Point{Lat: 13.0418, Lon: 80.2337})
	return &testServer{e: NewServer(h), store: db}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func (s *testServer) openSession(t *testing.T) int64 {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/v1/sessions", `{"name":"Asha","phone":"+91 98765 43210"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open session status = %d body = %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["phone"] != "9876543210" || body["lat"] != 13.0418 {
		t.Fatalf("open session body = %v", body)
	}
	return int64(body["customer_id"].(float64))
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || decode(t, rec)["status"] != "ok" {
		t.Fatalf("healthz = %d %s", rec.Code, rec.Body.String())
	}
}

func TestOpenSessionValidation(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	cases := []string{
		`{"phone":"9876543210"}`,
		`{"name":"Asha","phone":"12345"}`,
		`{"name":"Asha","phone":"9876543210","email":"nope"}`,
		`{"name":"Asha","phone":"9876543210","lat":13.0}`,
		`{not json`,
	}
	for _, body := range cases {
		if rec := s.do(t, http.MethodPost, "/v1/sessions", body); rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestMessageRoundTripAndHistory(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	id := s.openSession(t)

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/v1/sessions/%d/messages", id), `{"text":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("message status = %d body = %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	payload, _ := body["payload"].(map[string]any)
	if payload["summary"] != "you said hello" || body["turn_id"] == "" {
		t.Fatalf("message body = %v", body)
	}

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/v1/sessions/%d/messages", id), `{"text":"explode"}`)
	if rec.Code != http.StatusOK || decode(t, rec)["error"] != "provider down" {
		t.Fatalf("failed turn = %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/v1/sessions/%d/messages", id), `{"text":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank message status = %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/v1/customers/%d/conversations", id), "")
	items, _ := decode(t, rec)["items"].([]any)
	if len(items) != 3 {
		t.Fatalf("conversation items = %d, want user, assistant, user", len(items))
	}

	rec = s.do(t, http.MethodGet, "/v1/conversations", "")
	summaries, _ := decode(t, rec)["items"].([]any)
	if len(summaries) != 1 {
		t.Fatalf("summaries = %v", summaries)
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	if rec := s.do(t, http.MethodPost, "/v1/sessions/999/messages", `{"text":"hi"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if rec := s.do(t, http.MethodPost, "/v1/sessions/abc/reset", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestResetAndClose(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	id := s.openSession(t)

	if rec := s.do(t, http.MethodPost, fmt.Sprintf("/v1/sessions/%d/reset", id), ""); rec.Code != http.StatusNoContent {
		t.Fatalf("reset status = %d", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, fmt.Sprintf("/v1/sessions/%d", id), ""); rec.Code != http.StatusNoContent {
		t.Fatalf("close status = %d", rec.Code)
	}
	if rec := s.do(t, http.MethodPost, fmt.Sprintf("/v1/sessions/%d/messages", id), `{"text":"hi"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("message after close status = %d, want 404", rec.Code)
	}
}

func TestPayReservation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestServer(t)
	id := s.openSession(t)

	venue := &store.Venue{Name: "GoodFoods Guindy", Cuisine: "Chettinad", Latitude: 13.0067, Longitude: 80.2206, TotalCapacity: 10, AvailableTables: 5, Rating: 4.1}
	if err := s.store.CreateVenue(ctx, venue); err != nil {
		t.Fatalf("CreateVenue() error = %v", err)
	}
	mine, err := s.store.Reserve(ctx, store.NewReservation{CustomerID: id, RestaurantID: venue.ID, Date: "2030-01-20", Time: "19:00", PartySize: 2})
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	other, err := s.store.CreateCustomer(ctx, "Kiran", "9123456780", "")
	if err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}
	theirs, err := s.store.Reserve(ctx, store.NewReservation{CustomerID: other.ID, RestaurantID: venue.ID, Date: "2030-01-20", Time: "19:00", PartySize: 2})
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/v1/sessions/%d/reservations/%d/pay", id, mine.ID), "")
	if rec.Code != http.StatusOK || decode(t, rec)["paid"] != true {
		t.Fatalf("pay = %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/v1/sessions/%d/reservations/%d/pay", id, theirs.ID), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("pay foreign reservation status = %d, want 404", rec.Code)
	}

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/v1/sessions/%d/reservations/%d/pay", id, 9999), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("pay unknown reservation status = %d, want 404", rec.Code)
	}
}

func TestVenueFeedback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestServer(t)
	id := s.openSession(t)

	venue := &store.Venue{Name: "GoodFoods Porur", Cuisine: "Dessert", Latitude: 13.0382, Longitude: 80.1565, TotalCapacity: 10, AvailableTables: 5, Rating: 4.3}
	if err := s.store.CreateVenue(ctx, venue); err != nil {
		t.Fatalf("CreateVenue() error = %v", err)
	}
	if err := s.store.CreateFeedback(ctx, &store.Feedback{CustomerID: id, RestaurantID: venue.ID, Rating: 5}); err != nil {
		t.Fatalf("CreateFeedback() error = %v", err)
	}

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/v1/restaurants/%d/feedback", venue.ID), "")
	items, _ := decode(t, rec)["items"].([]any)
	if rec.Code != http.StatusOK || len(items) != 1 {
		t.Fatalf("feedback = %d %s", rec.Code, rec.Body.String())
	}
	if first := items[0].(map[string]any); first["customer_name"] != "Asha" {
		t.Fatalf("feedback item = %v", first)
	}
}
