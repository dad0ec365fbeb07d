package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hamza-safwan/mini-ride-booking/config"
	wshandler "github.com/hamza-safwan/mini-ride-booking/internal/adapter/http/ws"
	"github.com/hamza-safwan/mini-ride-booking/internal/adapter/memory"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/auth"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/booking"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/dispatch"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/relay"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/ride"
	"github.com/hamza-safwan/mini-ride-booking/internal/service/rooms"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	"github.com/hamza-safwan/mini-ride-booking/pkg/trm"
	ws "github.com/hamza-safwan/mini-ride-booking/pkg/wsHub"
)

type testEnv struct {
	srv *httptest.Server
	hub *ws.ConnectionHub

	passenger, driver, other string // tokens
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	l := logger.Discard()

	users := []models.User{
		{ID: uuid.New(), Name: "Ayesha", Role: types.RolePassenger},
		{ID: uuid.New(), Name: "Bilal", Role: types.RoleDriver, Availability: types.Available, Vehicle: "Alto"},
		{ID: uuid.New(), Name: "Kamran", Role: types.RoleDriver},
	}
	userRepo := memory.NewUserRepo(users...)
	rideRepo := memory.NewRideRepo()

	hub := ws.NewConnHub(l)
	router := rooms.NewRouter(hub)
	dispatcher := dispatch.New(router, l)
	relayService := relay.New(rideRepo, memory.NewLocationStore(time.Minute), dispatcher, l)
	machine := ride.New(rideRepo, userRepo, memory.NewRideEventRepo(), trm.Noop{}, l)
	bookingService := booking.New(machine, dispatcher, relayService, userRepo, l)

	tokens := auth.NewTokenService("test-secret", time.Hour)
	authService := auth.NewAuthService(userRepo, tokens, l)

	api, err := New(config.Config{ServiceName: "ride-booking-test"}, Services{
		Rides:        bookingService,
		Locations:    relayService,
		Availability: bookingService,
		Auth:         authService,
		WS:           wshandler.New(authService, router, relayService, ws.Options{}, l),
	}, l)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}

	env := &testEnv{srv: httptest.NewServer(api.Handler()), hub: hub}
	t.Cleanup(func() {
		hub.Close()
		env.srv.Close()
	})

	issue := func(u *models.User) string {
		tok, err := tokens.Issue(ctx, u)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		return tok.Token
	}
	env.passenger = issue(&users[0])
	env.driver = issue(&users[1])
	env.other = issue(&users[2])
	return env
}

type response struct {
	status int
	header http.Header
	body   map[string]json.RawMessage
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) response {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, e.srv.URL+path, &payload)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := response{status: resp.StatusCode, header: resp.Header}
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&out.body); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return out
}

func (r response) kind() string {
	var k string
	_ = json.Unmarshal(r.body["kind"], &k)
	return k
}

func (r response) ride(t *testing.T) models.Ride {
	t.Helper()
	var ride models.Ride
	if err := json.Unmarshal(r.body["ride"], &ride); err != nil {
		t.Fatalf("decode ride: %v", err)
	}
	return ride
}

func createRideBody() map[string]any {
	return map[string]any{
		"pickup":     map[string]any{"latitude": 31.52, "longitude": 74.35, "label": "Liberty Market"},
		"drop":       map[string]any{"latitude": 31.47, "longitude": 74.41, "label": "DHA Phase 5"},
		"ride_class": "car",
	}
}

func TestAPI_RideLifecycle(t *testing.T) {
	e := newTestEnv(t)

	if r := e.do(t, http.MethodPost, "/rides", "", createRideBody()); r.status != http.StatusUnauthorized || r.kind() != types.KindUnauthorized {
		t.Fatalf("anonymous create: %d %s", r.status, r.kind())
	}
	if r := e.do(t, http.MethodPost, "/rides", "garbage", createRideBody()); r.status != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", r.status)
	}
	if r := e.do(t, http.MethodPost, "/rides", e.driver, createRideBody()); r.status != http.StatusForbidden || r.kind() != types.KindForbidden {
		t.Fatalf("driver create: %d %s", r.status, r.kind())
	}

	invalid := createRideBody()
	invalid["ride_class"] = "helicopter"
	if r := e.do(t, http.MethodPost, "/rides", e.passenger, invalid); r.status != http.StatusUnprocessableEntity || r.kind() != types.KindValidation {
		t.Fatalf("invalid create: %d %s", r.status, r.kind())
	}

	created := e.do(t, http.MethodPost, "/rides", e.passenger, createRideBody())
	if created.status != http.StatusCreated {
		t.Fatalf("create: %d %s", created.status, created.body["error"])
	}
	if created.header.Get("X-Request-ID") == "" {
		t.Fatalf("request id must be echoed")
	}
	rideID := created.ride(t).ID.String()

	if r := e.do(t, http.MethodGet, "/rides/available", e.other, nil); r.status != http.StatusOK || !strings.Contains(string(r.body["rides"]), rideID) {
		t.Fatalf("available rides: %d", r.status)
	}

	accepted := e.do(t, http.MethodPost, "/rides/"+rideID+"/accept", e.driver, nil)
	if accepted.status != http.StatusOK || accepted.ride(t).Status != types.StatusAccepted {
		t.Fatalf("accept: %d", accepted.status)
	}
	if r := e.do(t, http.MethodPost, "/rides/"+rideID+"/accept", e.other, nil); r.status != http.StatusConflict || r.kind() != types.KindConflict {
		t.Fatalf("second accept: %d %s", r.status, r.kind())
	}

	if r := e.do(t, http.MethodPatch, "/rides/"+rideID+"/status", e.driver, map[string]any{"status": "completed"}); r.status != http.StatusConflict || r.kind() != types.KindInvalidTransition {
		t.Fatalf("skip to completed: %d %s", r.status, r.kind())
	}
	if r := e.do(t, http.MethodPatch, "/rides/"+rideID+"/status", e.other, map[string]any{"status": "in_progress"}); r.status != http.StatusForbidden {
		t.Fatalf("foreign driver advance: %d", r.status)
	}
	if r := e.do(t, http.MethodPatch, "/rides/"+rideID+"/status", e.driver, map[string]any{"status": "in_progress"}); r.status != http.StatusOK {
		t.Fatalf("start: %d %s", r.status, r.body["error"])
	}

	if r := e.do(t, http.MethodGet, "/rides/"+rideID+"/location", e.passenger, nil); r.status != http.StatusNotFound || r.kind() != types.KindNotFound {
		t.Fatalf("location before any update: %d %s", r.status, r.kind())
	}

	completed := e.do(t, http.MethodPatch, "/rides/"+rideID+"/status", e.driver, map[string]any{"status": "completed", "fare": 540})
	if completed.status != http.StatusOK {
		t.Fatalf("complete: %d %s", completed.status, completed.body["error"])
	}
	if got := completed.ride(t); got.Fare == nil || *got.Fare != 540 || got.CompletedAt == nil {
		t.Fatalf("completed ride: %+v", got)
	}

	if r := e.do(t, http.MethodGet, "/rides/"+rideID, e.other, nil); r.status != http.StatusForbidden {
		t.Fatalf("unrelated driver get: %d", r.status)
	}
	if r := e.do(t, http.MethodDelete, "/rides/"+rideID, e.other, nil); r.status != http.StatusForbidden {
		t.Fatalf("unrelated driver delete: %d", r.status)
	}
	if r := e.do(t, http.MethodDelete, "/rides/"+rideID, e.passenger, nil); r.status != http.StatusNoContent {
		t.Fatalf("delete: %d", r.status)
	}
	if r := e.do(t, http.MethodGet, "/rides/"+rideID, e.passenger, nil); r.status != http.StatusNotFound {
		t.Fatalf("get after delete: %d", r.status)
	}
	if r := e.do(t, http.MethodGet, "/rides/not-a-uuid", e.passenger, nil); r.status != http.StatusUnprocessableEntity {
		t.Fatalf("bad ride id: %d", r.status)
	}
}

func TestAPI_Availability(t *testing.T) {
	e := newTestEnv(t)

	if r := e.do(t, http.MethodGet, "/users/availability", e.passenger, nil); r.status != http.StatusForbidden {
		t.Fatalf("passenger availability: %d", r.status)
	}

	r := e.do(t, http.MethodPatch, "/users/availability", e.driver, nil)
	if r.status != http.StatusOK || string(r.body["availability"]) != `"unavailable"` {
		t.Fatalf("toggle: %d %s", r.status, r.body["availability"])
	}
	r = e.do(t, http.MethodGet, "/users/availability", e.driver, nil)
	if r.status != http.StatusOK || string(r.body["availability"]) != `"unavailable"` {
		t.Fatalf("get: %d %s", r.status, r.body["availability"])
	}
}

func TestAPI_ListPagination(t *testing.T) {
	e := newTestEnv(t)

	for range 3 {
		if r := e.do(t, http.MethodPost, "/rides", e.passenger, createRideBody()); r.status != http.StatusCreated {
			t.Fatalf("create ride: status %d", r.status)
		}
	}

	r := e.do(t, http.MethodGet, "/rides?page=2&page_size=2", e.passenger, nil)
	if r.status != http.StatusOK {
		t.Fatalf("list page 2: status %d", r.status)
	}
	var rides []models.Ride
	if err := json.Unmarshal(r.body["rides"], &rides); err != nil || len(rides) != 1 {
		t.Fatalf("page 2 rides = %s (%v)", r.body["rides"], err)
	}
	var meta models.Metadata
	if err := json.Unmarshal(r.body["metadata"], &meta); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if meta.TotalRecords != 3 || meta.LastPage != 2 || meta.CurrentPage != 2 {
		t.Fatalf("metadata = %+v", meta)
	}

	if r := e.do(t, http.MethodGet, "/rides/available?page_size=0", e.driver, nil); r.status != http.StatusUnprocessableEntity || r.kind() != types.KindValidation {
		t.Fatalf("page_size=0: status %d kind %q", r.status, r.kind())
	}
	if r := e.do(t, http.MethodGet, "/rides?page=abc", e.passenger, nil); r.status != http.StatusUnprocessableEntity {
		t.Fatalf("page=abc: status %d", r.status)
	}
}

func TestAPI_Health(t *testing.T) {
	e := newTestEnv(t)

	if r := e.do(t, http.MethodGet, "/health", "", nil); r.status != http.StatusOK {
		t.Fatalf("health: %d", r.status)
	}
}

func (e *testEnv) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (e *testEnv) waitConnections(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for e.hub.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d connections, have %d", n, e.hub.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// expectEvent reads until an event of kind arrives, skipping others.
func expectEvent(t *testing.T, conn *websocket.Conn, kind types.EventKind) models.Envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var env models.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("waiting for %s: %v", kind, err)
		}
		if env.Event == kind {
			return env
		}
	}
}

func sendLocation(t *testing.T, conn *websocket.Conn, rideID uuid.UUID) {
	t.Helper()
	data, _ := json.Marshal(map[string]any{
		"ride_id":  rideID,
		"position": map[string]float64{"latitude": 31.50, "longitude": 74.38},
	})
	if err := conn.WriteJSON(models.Envelope{Event: types.EventLocationUpdate, Data: data}); err != nil {
		t.Fatalf("send location: %v", err)
	}
}

func TestAPI_WebSocketFlow(t *testing.T) {
	e := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws"
	if _, resp, err := websocket.DefaultDialer.Dial(url, nil); err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous dial must be refused with 401, got %v", err)
	}

	pc := e.dial(t, e.passenger)
	dc := e.dial(t, e.driver)
	oc := e.dial(t, e.other)
	e.waitConnections(t, 3)

	created := e.do(t, http.MethodPost, "/rides", e.passenger, createRideBody())
	ride := created.ride(t)
	expectEvent(t, dc, types.EventRideCreated)
	expectEvent(t, oc, types.EventRideCreated)

	e.do(t, http.MethodPost, "/rides/"+ride.ID.String()+"/accept", e.driver, nil)
	expectEvent(t, pc, types.EventRideAccepted)
	expectEvent(t, oc, types.EventRideUpdated)

	e.do(t, http.MethodPatch, "/rides/"+ride.ID.String()+"/status", e.driver, map[string]any{"status": "in_progress"})
	expectEvent(t, pc, types.EventRideUpdated)

	sendLocation(t, dc, ride.ID)
	broadcast := expectEvent(t, pc, types.EventLocationBroadcast)
	var sample models.LocationSample
	if err := json.Unmarshal(broadcast.Data, &sample); err != nil || sample.RideID != ride.ID {
		t.Fatalf("broadcast payload: %v %+v", err, sample)
	}

	sendLocation(t, oc, ride.ID)
	env := expectEvent(t, oc, types.EventError)
	var failure models.ErrorEvent
	if err := json.Unmarshal(env.Data, &failure); err != nil || failure.Kind != types.KindForbidden {
		t.Fatalf("foreign driver update: %v %+v", err, failure)
	}

	if r := e.do(t, http.MethodGet, "/rides/"+ride.ID.String()+"/location", e.passenger, nil); r.status != http.StatusOK {
		t.Fatalf("latest location: %d", r.status)
	}

	// A reconnecting passenger gets the retained position straight away.
	again := e.dial(t, e.passenger)
	expectEvent(t, again, types.EventLocationBroadcast)
}
