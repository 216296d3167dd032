package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"olilab/app"
	"olilab/engine"
	"olilab/models"
	"olilab/routes"
	"olilab/store"
)

type testServer struct {
	router *gin.Engine
	engine *engine.Engine
	store  *store.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemory()
	eng := engine.New(st, engine.Options{
		Clock: func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	r := gin.New()
	routes.RegisterRoutes(r, &app.App{Router: r, Store: st, Engine: eng})
	return &testServer{router: r, engine: eng, store: st}
}

func (ts *testServer) seedUser(t *testing.T, username string, admin bool) models.User {
	t.Helper()
	u, err := ts.engine.CreateUser(context.Background(), engine.UserInput{
		Username: username,
		FullName: "Test " + username,
		IsAdmin:  admin,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func (ts *testServer) do(t *testing.T, method, path, asUser string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if asUser != "" {
		req.Header.Set(app.UserIDHeader, asUser)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestSignupIsPublic(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/signup", "", map[string]any{
		"username": "alice",
		"fullName": "Alice",
		"lrn":      "123456789012",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", w.Code, w.Body)
	}
	u := decode[models.User](t, w)
	if u.Status != models.UserPending {
		t.Fatalf("status = %s, want PENDING", u.Status)
	}
	if u.IsAdmin {
		t.Fatal("signup granted admin")
	}

	// Pending accounts cannot use authenticated routes yet.
	if w := ts.do(t, http.MethodGet, "/api/items", u.ID, nil); w.Code != http.StatusForbidden {
		t.Fatalf("pending user list items status = %d, want 403", w.Code)
	}
}

func TestAuthAndAdminGates(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.seedUser(t, "admin", true)
	member := ts.seedUser(t, "bob", false)

	if w := ts.do(t, http.MethodGet, "/api/items", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no header status = %d, want 401", w.Code)
	}
	if w := ts.do(t, http.MethodGet, "/api/items", "ghost", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user status = %d, want 401", w.Code)
	}
	if w := ts.do(t, http.MethodGet, "/api/items", member.ID, nil); w.Code != http.StatusOK {
		t.Fatalf("member list items status = %d, want 200", w.Code)
	}

	body := map[string]any{"name": "Microscope", "category": "lab", "totalQuantity": 3}
	if w := ts.do(t, http.MethodPost, "/api/items", member.ID, body); w.Code != http.StatusForbidden {
		t.Fatalf("member create item status = %d, want 403", w.Code)
	}
	if w := ts.do(t, http.MethodPost, "/api/items", admin.ID, body); w.Code != http.StatusCreated {
		t.Fatalf("admin create item status = %d, body %s", w.Code, w.Body)
	}
}

func TestBorrowFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.seedUser(t, "admin", true)
	member := ts.seedUser(t, "bob", false)

	w := ts.do(t, http.MethodPost, "/api/items", admin.ID, map[string]any{
		"name": "Telescope", "category": "astro", "totalQuantity": 2,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create item: %d %s", w.Code, w.Body)
	}
	item := decode[models.Item](t, w)

	w = ts.do(t, http.MethodPost, "/api/borrows", member.ID, map[string]any{
		"itemId": item.ID, "quantity": 1,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("request borrow: %d %s", w.Code, w.Body)
	}
	entry := decode[models.LogEntry](t, w)
	if entry.UserID != member.ID || entry.Status != models.BorrowPending {
		t.Fatalf("entry = %+v", entry)
	}

	// Approval is admin only.
	if w := ts.do(t, http.MethodPost, "/api/borrows/"+entry.ID+"/approve", member.ID, nil); w.Code != http.StatusForbidden {
		t.Fatalf("member approve status = %d, want 403", w.Code)
	}
	w = ts.do(t, http.MethodPost, "/api/borrows/"+entry.ID+"/approve", admin.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: %d %s", w.Code, w.Body)
	}
	approved := decode[models.LogEntry](t, w)
	if approved.Status != models.BorrowOnLoan || approved.DueDate == nil {
		t.Fatalf("approved = %+v", approved)
	}

	// Second approval maps to 409 with a structured body.
	w = ts.do(t, http.MethodPost, "/api/borrows/"+entry.ID+"/approve", admin.ID, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("double approve status = %d, want 409", w.Code)
	}
	errBody := decode[map[string]any](t, w)
	if errBody["kind"] != string(engine.KindInvalidTransition) {
		t.Fatalf("error kind = %v, want invalid_transition", errBody["kind"])
	}

	// Unknown log id maps to 404.
	if w := ts.do(t, http.MethodPost, "/api/borrows/ghost/approve", admin.ID, nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing log status = %d, want 404", w.Code)
	}

	// Return round trip restores stock.
	if w := ts.do(t, http.MethodPost, "/api/borrows/"+entry.ID+"/return-request", member.ID, nil); w.Code != http.StatusOK {
		t.Fatalf("request return: %d %s", w.Code, w.Body)
	}
	if w := ts.do(t, http.MethodPost, "/api/borrows/"+entry.ID+"/return", admin.ID, nil); w.Code != http.StatusOK {
		t.Fatalf("approve return: %d %s", w.Code, w.Body)
	}
	w = ts.do(t, http.MethodGet, "/api/items", member.ID, nil)
	listing := decode[struct {
		Items []models.Item `json:"items"`
	}](t, w)
	if len(listing.Items) != 1 || listing.Items[0].AvailableQuantity != 2 {
		t.Fatalf("items after return = %+v", listing.Items)
	}
}

func TestLogFilters(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.seedUser(t, "admin", true)
	alice := ts.seedUser(t, "alice", false)
	bob := ts.seedUser(t, "bob", false)

	w := ts.do(t, http.MethodPost, "/api/items", admin.ID, map[string]any{"name": "Scale", "totalQuantity": 5})
	item := decode[models.Item](t, w)

	for _, uid := range []string{alice.ID, bob.ID} {
		if w := ts.do(t, http.MethodPost, "/api/borrows", uid, map[string]any{"itemId": item.ID, "quantity": 1}); w.Code != http.StatusCreated {
			t.Fatalf("request borrow: %d %s", w.Code, w.Body)
		}
	}

	w = ts.do(t, http.MethodGet, "/api/borrows?userId="+alice.ID, admin.ID, nil)
	filtered := decode[struct {
		Logs []models.LogEntry `json:"logs"`
	}](t, w)
	if len(filtered.Logs) != 1 || filtered.Logs[0].UserID != alice.ID {
		t.Fatalf("filtered logs = %+v", filtered.Logs)
	}

	w = ts.do(t, http.MethodGet, "/api/borrows?status=PENDING", admin.ID, nil)
	pending := decode[struct {
		Logs []models.LogEntry `json:"logs"`
	}](t, w)
	if len(pending.Logs) != 2 {
		t.Fatalf("pending logs = %d, want 2", len(pending.Logs))
	}
}

func TestSuggestionFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.seedUser(t, "admin", true)
	member := ts.seedUser(t, "alice", false)

	w := ts.do(t, http.MethodPost, "/api/suggestions", member.ID, map[string]any{
		"itemName": "3D printer", "category": "fab", "reason": "robotics club",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add suggestion: %d %s", w.Code, w.Body)
	}
	s := decode[models.Suggestion](t, w)

	if w := ts.do(t, http.MethodPost, "/api/suggestions/"+s.ID+"/approve", member.ID, map[string]any{"totalQuantity": 1}); w.Code != http.StatusForbidden {
		t.Fatalf("member approve status = %d, want 403", w.Code)
	}

	w = ts.do(t, http.MethodPost, "/api/suggestions/"+s.ID+"/approve", admin.ID, map[string]any{"totalQuantity": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("approve suggestion: %d %s", w.Code, w.Body)
	}
	out := decode[struct {
		Suggestion models.Suggestion `json:"suggestion"`
		Item       models.Item       `json:"item"`
	}](t, w)
	if out.Suggestion.Status != models.SuggestionApproved {
		t.Fatalf("suggestion = %+v", out.Suggestion)
	}
	if out.Item.Name != "3D printer" || out.Item.AvailableQuantity != 2 {
		t.Fatalf("item = %+v", out.Item)
	}
}

func TestNotificationEndpoints(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.seedUser(t, "admin", true)
	member := ts.seedUser(t, "alice", false)

	w := ts.do(t, http.MethodPost, "/api/items", admin.ID, map[string]any{"name": "Burette", "totalQuantity": 3})
	item := decode[models.Item](t, w)
	if w := ts.do(t, http.MethodPost, "/api/borrows", member.ID, map[string]any{"itemId": item.ID, "quantity": 1}); w.Code != http.StatusCreated {
		t.Fatalf("request borrow: %d %s", w.Code, w.Body)
	}

	w = ts.do(t, http.MethodGet, "/api/notifications?unread=true", admin.ID, nil)
	inbox := decode[struct {
		Notifications []models.Notification `json:"notifications"`
	}](t, w)
	if len(inbox.Notifications) != 1 || inbox.Notifications[0].Type != models.NotifyBorrowRequest {
		t.Fatalf("inbox = %+v", inbox.Notifications)
	}

	w = ts.do(t, http.MethodPost, "/api/notifications/read", admin.ID, map[string]any{
		"ids": []string{inbox.Notifications[0].ID},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("mark read: %d %s", w.Code, w.Body)
	}

	w = ts.do(t, http.MethodGet, "/api/notifications?unread=true", admin.ID, nil)
	inbox = decode[struct {
		Notifications []models.Notification `json:"notifications"`
	}](t, w)
	if len(inbox.Notifications) != 0 {
		t.Fatalf("unread after mark = %d, want 0", len(inbox.Notifications))
	}
}

func TestValidationMapsTo400(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.seedUser(t, "admin", true)

	// Binding failure: missing required fields.
	if w := ts.do(t, http.MethodPost, "/api/borrows", admin.ID, map[string]any{}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty borrow body status = %d, want 400", w.Code)
	}
	// Engine validation: empty item name.
	if w := ts.do(t, http.MethodPost, "/api/items", admin.ID, map[string]any{"name": "", "totalQuantity": 1}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty name status = %d, want 400", w.Code)
	}
}
