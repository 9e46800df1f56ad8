// handlers_test.go
//
// Rental manager: landlord back office with live collection snapshots
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of rentalmanager.
// rentalmanager is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// rentalmanager is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with rentalmanager.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/rentalmanager/internal/broker"
	"github.com/localnerve/rentalmanager/internal/config"
	"github.com/localnerve/rentalmanager/internal/gateway"
	"github.com/localnerve/rentalmanager/internal/handlers"
	"github.com/localnerve/rentalmanager/internal/middleware"
	"github.com/localnerve/rentalmanager/internal/records"
	"github.com/localnerve/rentalmanager/internal/services"
	"github.com/localnerve/rentalmanager/internal/testutil"
	"github.com/stretchr/testify/require"
)

const password = "Secret1!"

// fakeAuth accepts one password and issues "tok-<email>" tokens
type fakeAuth struct{}

func (fakeAuth) SignIn(_ context.Context, email, pw string) (*services.Identity, error) {
	if pw != password {
		return nil, errors.New("bad user credentials")
	}
	return &services.Identity{UserID: "user-" + email, Email: email, Token: "tok-" + email}, nil
}

func (a fakeAuth) SignUp(ctx context.Context, email, pw string) (*services.Identity, error) {
	return a.SignIn(ctx, email, pw)
}

func (fakeAuth) Resume(_ context.Context, token string) (*services.Identity, error) {
	email, ok := strings.CutPrefix(token, "tok-")
	if !ok {
		return nil, services.ErrInvalidSession
	}
	return &services.Identity{UserID: "user-" + email, Email: email, Token: token}, nil
}

type testServer struct {
	app      *fiber.App
	registry *gateway.Registry
}

func setupTestApp(t *testing.T, authzURL string, done <-chan struct{}) *testServer {
	t.Helper()

	codec, err := records.NewCodec()
	if err != nil {
		t.Fatalf("Failed to create codec: %v", err)
	}
	b := broker.NewMemoryBroker()
	db := testutil.NewTestDB(t)
	store := services.NewRecordStore(db, b, codec)
	registry := gateway.NewRegistry(fakeAuth{}, store, time.Hour)
	t.Cleanup(func() {
		registry.Close()
		_ = b.Close()
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})
	handlers.Register(app, handlers.Dependencies{
		Config:    &config.Config{DBType: "sqlite", AuthzURL: authzURL},
		DB:        db,
		Broker:    b,
		Registry:  registry,
		Heartbeat: 20 * time.Millisecond,
		Done:      done,
	})
	app.Use(handlers.NotFound)

	return &testServer{app: app, registry: registry}
}

// client carries cookies between requests like a browser would
type client struct {
	t       *testing.T
	srv     *testServer
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, srv *testServer) *client {
	return &client{t: t, srv: srv, cookies: make(map[string]*http.Cookie)}
}

func (cl *client) do(method, path, body string) (int, map[string]interface{}) {
	cl.t.Helper()
	status, raw := cl.raw(method, path, body, 0)
	result := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			cl.t.Fatalf("Failed to decode response %q: %v", raw, err)
		}
	}
	return status, result
}

func (cl *client) raw(method, path, body string, timeout int) (int, []byte) {
	cl.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cl.cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}

	var resp *http.Response
	var err error
	if timeout > 0 {
		resp, err = cl.srv.app.Test(req, timeout)
	} else {
		resp, err = cl.srv.app.Test(req)
	}
	if err != nil {
		cl.t.Fatalf("Failed to execute request: %v", err)
	}
	defer resp.Body.Close()

	for _, cookie := range resp.Cookies() {
		if cookie.Value == "" {
			delete(cl.cookies, cookie.Name)
		} else {
			cl.cookies[cookie.Name] = cookie
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		cl.t.Fatalf("Failed to read response: %v", err)
	}
	return resp.StatusCode, raw
}

func (cl *client) login(email string) {
	cl.t.Helper()
	status, body := cl.do("POST", "/api/session/login", `{"email":"`+email+`","password":"`+password+`"}`)
	if status != fiber.StatusOK {
		cl.t.Fatalf("Expected login to succeed, got %d: %v", status, body)
	}
}

func (cl *client) items(collection string) []interface{} {
	cl.t.Helper()
	_, body := cl.do("GET", "/api/data/"+collection, "")
	items, _ := body["items"].([]interface{})
	return items
}

func (cl *client) eventuallyCount(collection string, n int) []interface{} {
	cl.t.Helper()
	var items []interface{}
	require.Eventually(cl.t, func() bool {
		items = cl.items(collection)
		return len(items) == n
	}, 5*time.Second, 20*time.Millisecond, "waiting for %d %s", n, collection)
	return items
}

func TestSessionLifecycle(t *testing.T) {
	cl := newClient(t, setupTestApp(t, "", nil))

	status, body := cl.do("GET", "/api/session", "")
	if status != fiber.StatusOK || body["status"] != "unauthenticated" {
		t.Fatalf("Expected unauthenticated session, got %d %v", status, body)
	}
	if _, ok := cl.cookies[middleware.ClientCookie]; !ok {
		t.Fatal("Expected client cookie to be set")
	}

	status, body = cl.do("POST", "/api/session/login", `{"email":"","password":"x"}`)
	if status != fiber.StatusBadRequest || body["type"] != "data.validation.input" {
		t.Errorf("Expected 400 validation error, got %d %v", status, body)
	}
	if body["message"] != "Please fill all fields" {
		t.Errorf("Unexpected message %v", body["message"])
	}

	status, body = cl.do("POST", "/api/session/login", `{"email":"ann@example.com","password":"wrong"}`)
	if status != fiber.StatusUnauthorized || body["message"] != "bad user credentials" {
		t.Errorf("Expected 401 with backend message, got %d %v", status, body)
	}

	status, body = cl.do("POST", "/api/session/login", `{"email":"ann@example.com","password":"`+password+`"}`)
	if status != fiber.StatusOK || body["status"] != "authenticated" {
		t.Fatalf("Expected authenticated, got %d %v", status, body)
	}
	if cl.cookies[middleware.SessionCookie] == nil {
		t.Fatal("Expected session cookie after login")
	}

	status, _ = cl.do("POST", "/api/session/signup", `{"email":"ann@example.com","password":"`+password+`"}`)
	if status != fiber.StatusConflict {
		t.Errorf("Expected 409 for sign up while signed in, got %d", status)
	}

	status, body = cl.do("POST", "/api/session/logout", "")
	if status != fiber.StatusOK || body["status"] != "unauthenticated" {
		t.Errorf("Expected unauthenticated after logout, got %d %v", status, body)
	}
	if cl.cookies[middleware.SessionCookie] != nil {
		t.Error("Expected session cookie to be cleared")
	}
}

func TestDataRequiresAuthentication(t *testing.T) {
	cl := newClient(t, setupTestApp(t, "", nil))

	for _, path := range []string{"/api/data/tenants", "/api/data/payments", "/api/profile"} {
		status, body := cl.do("GET", path, "")
		if status != fiber.StatusForbidden || body["type"] != "data.authorization.user" {
			t.Errorf("%s: expected 403 data.authorization.user, got %d %v", path, status, body)
		}
	}
}

func TestTenantLifecycle(t *testing.T) {
	cl := newClient(t, setupTestApp(t, "", nil))
	cl.login("ann@example.com")

	status, body := cl.do("POST", "/api/data/tenants",
		`{"fullName":"Jane Doe","gender":"Female","age":"29","idNumber":"ID123","occupation":"Nurse","mobile":"0712345678"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("Expected 201, got %d %v", status, body)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatal("Expected a generated id")
	}
	record := body["record"].(map[string]interface{})
	if record["age"] != float64(29) || record["photoUrl"] != "ic_female" {
		t.Errorf("Unexpected record %v", record)
	}

	items := cl.eventuallyCount("tenants", 1)
	if items[0].(map[string]interface{})["id"] != id {
		t.Errorf("Expected listed tenant %s, got %v", id, items[0])
	}

	status, _ = cl.do("POST", "/api/data/tenants", `{"gender":"Male"}`)
	if status != fiber.StatusBadRequest {
		t.Errorf("Expected 400 without fullName, got %d", status)
	}

	status, _ = cl.do("DELETE", "/api/data/tenants/"+id, "")
	if status != fiber.StatusOK {
		t.Errorf("Expected 200 on delete, got %d", status)
	}
	cl.eventuallyCount("tenants", 0)

	status, _ = cl.do("DELETE", "/api/data/tenants/"+id, "")
	if status != fiber.StatusNotFound {
		t.Errorf("Expected 404 deleting twice, got %d", status)
	}
}

func TestPropertyNumericFallback(t *testing.T) {
	cl := newClient(t, setupTestApp(t, "", nil))
	cl.login("ann@example.com")

	status, body := cl.do("POST", "/api/data/properties", `{"houseNumber":"A1","houseType":"Bedsitter","rentAmount":"abc","meterNumber":"77"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("Expected 201, got %d %v", status, body)
	}
	record := body["record"].(map[string]interface{})
	if record["rentAmount"] != float64(0) || record["meterNumber"] != float64(77) {
		t.Errorf("Unexpected record %v", record)
	}
	if record["userId"] != "user-ann@example.com" {
		t.Errorf("Expected owner to be stamped, got %v", record["userId"])
	}

	status, body = cl.do("POST", "/api/data/properties", `{"houseNumber":"A2","houseType":"Castle"}`)
	if status != fiber.StatusBadRequest {
		t.Errorf("Expected 400 for unknown house type, got %d %v", status, body)
	}
}

func TestUnparsableNumbersAreStored(t *testing.T) {
	cl := newClient(t, setupTestApp(t, "", nil))
	cl.login("ann@example.com")

	for _, amount := range []string{"NaN", "Inf", "Infinity"} {
		status, body := cl.do("POST", "/api/data/payments", `{"tenantId":"t1","propertyId":"p1","amount":"`+amount+`","year":"soon"}`)
		if status != fiber.StatusCreated {
			t.Fatalf("amount %s: expected 201, got %d %v", amount, status, body)
		}
		record := body["record"].(map[string]interface{})
		if record["amount"] != float64(0) || record["year"] != float64(time.Now().Year()) {
			t.Errorf("amount %s: unexpected record %v", amount, record)
		}
	}

	status, body := cl.do("POST", "/api/data/tenants", `{"fullName":"Jane Doe","age":"-5"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("Expected 201 for negative age, got %d %v", status, body)
	}
	if record := body["record"].(map[string]interface{}); record["age"] != float64(-5) {
		t.Errorf("Expected age -5 to be kept, got %v", record["age"])
	}
}

func TestPaymentShowsUnknownTenantAfterDelete(t *testing.T) {
	cl := newClient(t, setupTestApp(t, "", nil))
	cl.login("ann@example.com")

	_, tenant := cl.do("POST", "/api/data/tenants", `{"fullName":"Jane Doe"}`)
	_, property := cl.do("POST", "/api/data/properties", `{"houseNumber":"A1","houseType":"Bedsitter"}`)
	tenantID, propertyID := tenant["id"].(string), property["id"].(string)

	status, body := cl.do("POST", "/api/data/payments", `{"tenantId":"`+tenantID+`","propertyId":"`+propertyID+`","amount":1200,"month":"October"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("Expected 201, got %d %v", status, body)
	}
	record := body["record"].(map[string]interface{})
	if record["year"] != float64(time.Now().Year()) {
		t.Errorf("Expected blank year to be the current year, got %v", record["year"])
	}

	cl.eventuallyCount("payments", 1)
	cl.eventuallyCount("tenants", 1)
	cl.do("DELETE", "/api/data/tenants/"+tenantID, "")
	cl.eventuallyCount("tenants", 0)

	_, screen := cl.do("GET", "/api/screens/payments", "")
	view := screen["view"].(map[string]interface{})
	rows := view["payments"].([]interface{})
	if len(rows) != 1 {
		t.Fatalf("Expected one payment row, got %v", rows)
	}
	row := rows[0].(map[string]interface{})
	if row["tenantName"] != "Unknown" || row["houseNumber"] != "A1" {
		t.Errorf("Unexpected payment row %v", row)
	}
}

func TestRecordsReappearAfterSignInAgain(t *testing.T) {
	cl := newClient(t, setupTestApp(t, "", nil))
	cl.login("ann@example.com")

	cl.do("POST", "/api/data/tenants", `{"fullName":"Jane Doe"}`)
	cl.do("POST", "/api/data/properties", `{"houseNumber":"A1","houseType":"Bedsitter"}`)
	cl.eventuallyCount("tenants", 1)
	cl.eventuallyCount("properties", 1)

	cl.do("POST", "/api/session/logout", "")
	cl.login("ann@example.com")

	cl.eventuallyCount("tenants", 1)
	cl.eventuallyCount("properties", 1)
}

func TestOccupancyScreen(t *testing.T) {
	cl := newClient(t, setupTestApp(t, "", nil))
	cl.login("ann@example.com")

	status, body := cl.do("POST", "/api/data/occupancies", `{"tenantId":"t1"}`)
	if status != fiber.StatusBadRequest || body["message"] != "Please fill in all fields" {
		t.Errorf("Expected 400 Please fill in all fields, got %d %v", status, body)
	}

	status, body = cl.do("POST", "/api/data/occupancies", `{"tenantId":"t1","propertyId":"p1"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("Expected 201, got %d %v", status, body)
	}

	var rows []interface{}
	require.Eventually(t, func() bool {
		_, screen := cl.do("GET", "/api/screens/Occupancy", "")
		view, _ := screen["view"].(map[string]interface{})
		rows, _ = view["occupancies"].([]interface{})
		return len(rows) == 1
	}, 5*time.Second, 20*time.Millisecond)
	if rows[0].(map[string]interface{})["tenantName"] != "Unknown" {
		t.Errorf("Expected unresolved tenant to show Unknown, got %v", rows[0])
	}
}

func TestScreensNavigation(t *testing.T) {
	cl := newClient(t, setupTestApp(t, "", nil))

	status, body := cl.do("GET", "/api/screens/home", "")
	if status != fiber.StatusOK || body["redirected"] != true {
		t.Fatalf("Expected Home to redirect, got %d %v", status, body)
	}
	if body["route"].(map[string]interface{})["name"] != "Login" {
		t.Errorf("Expected Login route, got %v", body["route"])
	}

	status, _ = cl.do("GET", "/api/screens/reports", "")
	if status != fiber.StatusNotFound {
		t.Errorf("Expected 404 for unknown route, got %d", status)
	}

	status, _ = cl.do("GET", "/api/screens/profile", "")
	if status != fiber.StatusForbidden {
		t.Errorf("Expected 403 for profile while signed out, got %d", status)
	}

	cl.login("ann@example.com")
	status, body = cl.do("GET", "/api/screens/HOME", "")
	if status != fiber.StatusOK || body["redirected"] != false {
		t.Errorf("Expected Home after login, got %d %v", status, body)
	}
	view := body["view"].(map[string]interface{})
	if view["email"] != "ann@example.com" {
		t.Errorf("Unexpected home view %v", view)
	}
}

func TestResumeFromSessionCookie(t *testing.T) {
	srv := setupTestApp(t, "", nil)
	cl := newClient(t, srv)
	cl.cookies[middleware.SessionCookie] = &http.Cookie{Name: middleware.SessionCookie, Value: "tok-bob@example.com"}

	status, body := cl.do("GET", "/api/session", "")
	if status != fiber.StatusOK || body["status"] != "authenticated" || body["email"] != "bob@example.com" {
		t.Errorf("Expected resumed session, got %d %v", status, body)
	}
	if srv.registry.Len() != 1 {
		t.Errorf("Expected one gateway, got %d", srv.registry.Len())
	}
}

func TestProfileVersionConflict(t *testing.T) {
	cl := newClient(t, setupTestApp(t, "", nil))
	cl.login("ann@example.com")

	status, body := cl.do("POST", "/api/profile", `{"name":"Ann","mobile":"0700000000"}`)
	if status != fiber.StatusOK || body["profileSaved"] != true || body["version"] != float64(1) {
		t.Fatalf("Expected saved profile, got %d %v", status, body)
	}

	status, body = cl.do("POST", "/api/profile", `{"name":"Ann","version":5}`)
	if status != fiber.StatusConflict || body["versionError"] != true {
		t.Errorf("Expected 409 version error, got %d %v", status, body)
	}

	status, body = cl.do("GET", "/api/profile", "")
	if status != fiber.StatusOK || body["name"] != "Ann" {
		t.Errorf("Unexpected profile %d %v", status, body)
	}
}

func TestStreamSession(t *testing.T) {
	done := make(chan struct{})
	cl := newClient(t, setupTestApp(t, "", done))
	cl.do("GET", "/api/session", "")

	time.AfterFunc(150*time.Millisecond, func() { close(done) })
	status, raw := cl.raw("GET", "/api/stream/session", "", 3000)
	if status != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	text := string(raw)
	if !strings.Contains(text, "event: session\ndata: {\"status\":\"unauthenticated\"}") {
		t.Errorf("Expected session event, got %q", text)
	}
	if !strings.Contains(text, ": ping") {
		t.Errorf("Expected heartbeat, got %q", text)
	}

	status, _ = cl.raw("GET", "/api/stream/invoices", "", 0)
	if status != fiber.StatusNotFound {
		t.Errorf("Expected 404 for unknown stream, got %d", status)
	}
}

func TestHealthz(t *testing.T) {
	authz := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer authz.Close()
	cl := newClient(t, setupTestApp(t, authz.URL, nil))

	status, body := cl.do("GET", "/healthz", "")
	if status != fiber.StatusOK || body["status"] != "healthy" {
		t.Errorf("Expected healthy, got %d %v", status, body)
	}

	status, _ = cl.do("GET", "/nowhere", "")
	if status != fiber.StatusNotFound {
		t.Errorf("Expected 404, got %d", status)
	}
}
