package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/flightglobe/internal/adapters/http"
	"github.com/samirrijal/flightglobe/internal/adapters/memory"
	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/core/scene"
	"github.com/samirrijal/flightglobe/internal/core/usecases"
)

// ---- Mock repositories ----

type mockFlightRepo struct {
	findFlightFn func(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error)
	listFn       func(ctx context.Context) ([]string, error)
}

func (m *mockFlightRepo) FindFlight(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error) {
	if m.findFlightFn != nil {
		return m.findFlightFn(ctx, q)
	}
	return nil, domain.ErrFlightNotFound
}
func (m *mockFlightRepo) ListFlightNumbers(ctx context.Context) ([]string, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockFlightRepo) Upsert(ctx context.Context, p *domain.FlightPair) error { return nil }

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

// makeDeps wires the built-in catalog, a fresh scene and no external backends.
func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	flights := usecases.NewFlightService(memory.NewDefaultFlightRepo(), nil, nil)
	composer := scene.NewComposer(scene.DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	sceneSvc := usecases.NewSceneService(flights, composer, nil)

	d := &handler.Dependencies{
		Flights:    flights,
		Scene:      sceneSvc,
		Boundaries: usecases.NewBoundaryService(composer),
		Feed:       sceneSvc,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func decode(t *testing.T, body io.Reader, v any) {
	t.Helper()
	if err := json.Unmarshal(readBody(t, body), v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ---- Health ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps())

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestReady_OptionalBackendsNotConfigured(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decode(t, resp.Body, &body)
	if body.Checks["database"] != "not configured" {
		t.Errorf("expected database not configured, got %q", body.Checks["database"])
	}
}

// ---- Flight lookup ----

func TestLookupFlight_Success(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/flights?flightNumber=BA123&date=2024-07-11", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var pair domain.FlightPair
	decode(t, resp.Body, &pair)
	if pair.From.Code != "LHR" || pair.To.Code != "JFK" {
		t.Errorf("expected LHR->JFK, got %s->%s", pair.From.Code, pair.To.Code)
	}
	if pair.Source != domain.SourceMock {
		t.Errorf("expected source mock, got %s", pair.Source)
	}
	if pair.FlightNumber != "BA123" || pair.Date != "2024-07-11" {
		t.Errorf("unexpected echo %s %s", pair.FlightNumber, pair.Date)
	}
}

func TestLookupFlight_MissingParams(t *testing.T) {
	app := setupApp(makeDeps())

	for _, path := range []string{"/v1/flights", "/v1/flights?flightNumber=BA123", "/v1/flights?date=2024-07-11"} {
		resp, _ := app.Test(httptest.NewRequest("GET", path, nil), -1)
		if resp.StatusCode != 400 {
			t.Errorf("%s: expected 400, got %d", path, resp.StatusCode)
		}
	}
}

func TestLookupFlight_BadDate(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/flights?flightNumber=BA123&date=July", nil), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLookupFlight_NotFoundListsAvailable(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/flights?flightNumber=ZZ999&date=2024-07-11", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var body struct {
		Code             string   `json:"code"`
		AvailableFlights []string `json:"available_flights"`
	}
	decode(t, resp.Body, &body)
	if body.Code != "flight_not_found" {
		t.Errorf("expected flight_not_found, got %s", body.Code)
	}
	if len(body.AvailableFlights) != 5 {
		t.Errorf("expected 5 available flights, got %v", body.AvailableFlights)
	}
}

func TestLookupFlight_BackendFailureIsNotFound(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Flights = usecases.NewFlightService(&mockFlightRepo{
			findFlightFn: func(ctx context.Context, q domain.FlightQuery) (*domain.FlightPair, error) {
				return nil, context.DeadlineExceeded
			},
		}, nil, nil)
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/flights?flightNumber=BA123&date=2024-07-11", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestLegacyFlightDetails(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/getFlightDetails?flightNumber=QF1&date=2024-07-11", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Deprecation") != "true" {
		t.Error("expected Deprecation header")
	}

	resp, _ = app.Test(httptest.NewRequest("POST", "/api/getFlightDetails", nil), -1)
	if resp.StatusCode != 405 {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Allow") != "GET" {
		t.Errorf("expected Allow: GET, got %q", resp.Header.Get("Allow"))
	}
}

func TestFlightCatalog_Pagination(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/flights/catalog?offset=1&limit=2", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []string `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	decode(t, resp.Body, &result)
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 || result.Data[0] != "BA123" {
		t.Errorf("expected [BA123 EK215], got %v", result.Data)
	}
	if !strings.Contains(resp.Header.Get("Link"), `rel="next"`) {
		t.Errorf("expected next link, got %q", resp.Header.Get("Link"))
	}
}

// ---- Scene ----

func TestScene_EmptyByDefault(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/scene", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var frame domain.Frame
	decode(t, resp.Body, &frame)
	if frame.Flight != nil || frame.Markers != nil || len(frame.Arc) != 0 {
		t.Errorf("expected empty overlay, got %+v", frame)
	}
	if frame.Globe.Radius != 1.5 {
		t.Errorf("expected globe radius 1.5, got %v", frame.Globe.Radius)
	}
	if resp.Header.Get("Cache-Control") != "no-store" {
		t.Errorf("expected no-store, got %q", resp.Header.Get("Cache-Control"))
	}
}

func TestScene_SelectAndClear(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(postJSON("/v1/scene/flight", `{"flightNumber":"LH456","date":"2024-07-11"}`), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var frame domain.Frame
	decode(t, resp.Body, &frame)
	if len(frame.Arc) != 51 {
		t.Errorf("expected 51 arc points, got %d", len(frame.Arc))
	}
	if frame.Markers == nil || frame.Markers.Direction == nil {
		t.Fatal("expected markers with a direction indicator")
	}
	if frame.DistanceKm == nil || *frame.DistanceKm < 9000 {
		t.Errorf("expected FRA-HND distance over 9000 km, got %v", frame.DistanceKm)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/scene", nil), -1)
	var current domain.Frame
	decode(t, resp.Body, &current)
	if current.Flight == nil || current.Flight.FlightNumber != "LH456" {
		t.Errorf("expected LH456 in scene, got %+v", current.Flight)
	}

	resp, _ = app.Test(httptest.NewRequest("DELETE", "/v1/scene/flight", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var cleared domain.Frame
	decode(t, resp.Body, &cleared)
	if cleared.HasFlightOverlay() {
		t.Error("expected cleared scene")
	}
}

func TestScene_FailedSelectClears(t *testing.T) {
	deps := makeDeps()
	app := setupApp(deps)

	resp, _ := app.Test(postJSON("/v1/scene/flight", `{"flightNumber":"EK215","date":"2024-07-11"}`), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(postJSON("/v1/scene/flight", `{"flightNumber":"EK215","date":"2030-01-01"}`), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if deps.Scene.Frame().HasFlightOverlay() {
		t.Error("expected the scene to be cleared after a failed lookup")
	}
}

func TestScene_SelectMissingFields(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(postJSON("/v1/scene/flight", `{"flightNumber":"EK215"}`), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp, _ = app.Test(postJSON("/v1/scene/flight", `{not json`), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestScene_InvalidBodyClears(t *testing.T) {
	deps := makeDeps()
	app := setupApp(deps)

	resp, _ := app.Test(postJSON("/v1/scene/flight", `{"flightNumber":"EK215","date":"2024-07-11"}`), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(postJSON("/v1/scene/flight", `{"flightNumber":`), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if deps.Scene.Frame().HasFlightOverlay() {
		t.Error("expected the scene to be cleared after an unreadable body")
	}
}

func TestScene_ETagNotModified(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/scene", nil), -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest("GET", "/v1/scene", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

// ---- Geometry ----

func TestArc_Default(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET",
		"/v1/geometry/arc?from_lat=40.6413&from_lng=-73.7781&to_lat=51.47&to_lng=-0.4543", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var arc handler.ArcResponse
	decode(t, resp.Body, &arc)
	if len(arc.Points) != 51 || arc.Segments != 50 {
		t.Fatalf("expected 51 points for 50 segments, got %d/%d", len(arc.Points), arc.Segments)
	}
	if arc.Radius != 1.5 {
		t.Errorf("expected default radius 1.5, got %v", arc.Radius)
	}
	mid := arc.Points[25]
	norm := math.Sqrt(mid.X*mid.X + mid.Y*mid.Y + mid.Z*mid.Z)
	if math.Abs(norm-(1.5*1.02+0.2)) > 1e-9 {
		t.Errorf("expected peak radius 1.73, got %v", norm)
	}
}

func TestArc_BadParams(t *testing.T) {
	app := setupApp(makeDeps())

	cases := []string{
		"/v1/geometry/arc?from_lat=40&from_lng=-73&to_lat=51",
		"/v1/geometry/arc?from_lat=abc&from_lng=-73&to_lat=51&to_lng=0",
		"/v1/geometry/arc?from_lat=95&from_lng=-73&to_lat=51&to_lng=0",
		"/v1/geometry/arc?from_lat=40&from_lng=-73&to_lat=51&to_lng=0&segments=5000",
		"/v1/geometry/arc?from_lat=40&from_lng=-73&to_lat=51&to_lng=0&radius=-1",
	}
	for _, path := range cases {
		resp, _ := app.Test(httptest.NewRequest("GET", path, nil), -1)
		if resp.StatusCode != 400 {
			t.Errorf("%s: expected 400, got %d", path, resp.StatusCode)
		}
	}
}

func TestProject_NorthPole(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/geometry/project?lat=90&lng=0&radius=2", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out handler.ProjectResponse
	decode(t, resp.Body, &out)
	if math.Abs(out.Point.Y-2) > 1e-9 || math.Abs(out.Point.X) > 1e-9 || math.Abs(out.Point.Z) > 1e-9 {
		t.Errorf("expected (0,2,0), got %+v", out.Point)
	}
}

// ---- GraphQL ----

func TestGraphQL_FlightAndScene(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(postJSON("/graphql",
		`{"query":"{ flight(flightNumber:\"AA1234\", date:\"2024-07-11\") { flightNumber source from { code } to { code } } }"}`), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Data struct {
			Flight struct {
				FlightNumber string `json:"flightNumber"`
				Source       string `json:"source"`
				From         struct{ Code string } `json:"from"`
				To           struct{ Code string } `json:"to"`
			} `json:"flight"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	decode(t, resp.Body, &result)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Data.Flight.From.Code != "JFK" || result.Data.Flight.To.Code != "LAX" {
		t.Errorf("expected JFK->LAX, got %+v", result.Data.Flight)
	}

	resp, _ = app.Test(postJSON("/graphql",
		`{"query":"mutation { selectFlight(flightNumber:\"QF1\", date:\"2024-07-11\") { generation arc { x } markers { departure { y } } } }"}`), -1)
	var sel struct {
		Data struct {
			SelectFlight struct {
				Generation int        `json:"generation"`
				Arc        []struct{} `json:"arc"`
			} `json:"selectFlight"`
		} `json:"data"`
	}
	decode(t, resp.Body, &sel)
	if len(sel.Data.SelectFlight.Arc) != 51 {
		t.Errorf("expected 51 arc points, got %d", len(sel.Data.SelectFlight.Arc))
	}
}

func TestGraphQL_Arc(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(postJSON("/graphql",
		`{"query":"{ arc(fromLat:0, fromLng:0, toLat:0, toLng:90, segments:4) { x y z } }"}`), -1)
	var result struct {
		Data struct {
			Arc []domain.Point3D `json:"arc"`
		} `json:"data"`
	}
	decode(t, resp.Body, &result)
	if len(result.Data.Arc) != 5 {
		t.Errorf("expected 5 points, got %d", len(result.Data.Arc))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(readBody(t, resp.Body)), "flightglobe_ws_active_connections") {
		t.Error("expected flightglobe metrics in output")
	}
}

func TestWebSocket_RequiresUpgrade(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/ws", nil), -1)
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("expected 426, got %d", resp.StatusCode)
	}
}
