package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"comicvault/internal/auth"
	"comicvault/internal/comicvine"
	"comicvault/internal/user"
	"comicvault/internal/ws"
	"comicvault/pkg/config"
	"comicvault/pkg/database"
)

func newTestServer(t *testing.T) (*gin.Engine, *sql.DB, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate(): %v", err)
	}

	cfg := &config.Config{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}
	hub := ws.NewHub()
	go hub.Run()
	vine := comicvine.NewClient("http://127.0.0.1:0", "test-key")

	if err := user.CreateUser(db, "u1", "alice", "password"); err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	token, err := auth.SignJWT([]byte(cfg.JWTSecret), "u1", "alice", time.Hour)
	if err != nil {
		t.Fatalf("SignJWT(): %v", err)
	}

	return NewServer(db, cfg, vine, hub).Router(), db, token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var out map[string]any
	if len(rr.Body.Bytes()) > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("unmarshal %s %s response %q: %v", method, path, rr.Body.String(), err)
		}
	}
	return rr, out
}

func TestProtectedEndpointsRequireAuth(t *testing.T) {
	r, _, _ := newTestServer(t)

	paths := []struct{ method, path string }{
		{"POST", "/api/comics/add-to-collection"},
		{"GET", "/api/comics/123/collection-status"},
		{"GET", "/api/user/comics"},
		{"PUT", "/api/comics/1/status"},
		{"DELETE", "/api/comics/1/collection"},
		{"POST", "/api/issues/1/2/toggle"},
		{"GET", "/api/issues/1/progress"},
		{"GET", "/api/user/currently-reading"},
		{"GET", "/api/user/stats"},
	}
	for _, p := range paths {
		rr, body := doJSON(t, r, p.method, p.path, "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", p.method, p.path, rr.Code)
		}
		if body["error"] != "No authorization header" {
			t.Errorf("%s %s error = %v", p.method, p.path, body["error"])
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	r, _, _ := newTestServer(t)

	rr, _ := doJSON(t, r, "POST", "/auth/register", "", map[string]string{
		"username": "bob", "password": "hunter2",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", rr.Code)
	}

	rr, body := doJSON(t, r, "POST", "/auth/login", "", map[string]string{
		"username": "bob", "password": "hunter2",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", rr.Code)
	}
	if tok, _ := body["token"].(string); tok == "" {
		t.Fatal("login returned no token")
	}

	rr, _ = doJSON(t, r, "POST", "/auth/login", "", map[string]string{
		"username": "bob", "password": "wrong",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", rr.Code)
	}
}

func TestCollectionFlow(t *testing.T) {
	r, _, token := newTestServer(t)

	// add with default status
	rr, body := doJSON(t, r, "POST", "/api/comics/add-to-collection", token, map[string]any{
		"comic": map[string]any{
			"id":              4050,
			"name":            "Saga",
			"publisher":       map[string]string{"name": "Image Comics"},
			"start_year":      "2012",
			"count_of_issues": 66,
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("add status = %d body=%s", rr.Code, rr.Body.String())
	}
	data := body["data"].(map[string]any)
	if data["status"] != "planned" {
		t.Fatalf("status = %v, want planned", data["status"])
	}
	userComicID := int64(data["id"].(float64))
	comicID := int64(data["comic_id"].(float64))

	// re-add with a different status updates the same row
	_, body = doJSON(t, r, "POST", "/api/comics/add-to-collection", token, map[string]any{
		"comic":  map[string]any{"id": 4050, "name": "Saga"},
		"status": "reading",
	})
	data = body["data"].(map[string]any)
	if int64(data["id"].(float64)) != userComicID {
		t.Fatalf("re-add created new row: %v vs %d", data["id"], userComicID)
	}
	if data["status"] != "reading" {
		t.Fatalf("status = %v, want reading", data["status"])
	}

	// membership check by provider id
	rr, body = doJSON(t, r, "GET", "/api/comics/4050/collection-status", token, nil)
	if rr.Code != http.StatusOK || body["inCollection"] != true {
		t.Fatalf("collection-status = %d %v", rr.Code, body)
	}
	if body["status"] != "reading" {
		t.Fatalf("status = %v, want reading", body["status"])
	}

	// unknown provider id is not an error
	rr, body = doJSON(t, r, "GET", "/api/comics/999999/collection-status", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("collection-status unknown = %d", rr.Code)
	}
	if body["inCollection"] != false || body["status"] != nil || body["rating"] != nil {
		t.Fatalf("unknown comic check = %v", body)
	}

	// toggle a few issues and read progress
	for _, n := range []int{3, 1, 5} {
		rr, _ = doJSON(t, r, "POST", fmt.Sprintf("/api/issues/%d/%d/toggle", comicID, n), token, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("toggle %d status = %d", n, rr.Code)
		}
	}
	rr, body = doJSON(t, r, "GET", fmt.Sprintf("/api/issues/%d/progress", comicID), token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("progress status = %d", rr.Code)
	}
	prog := body["data"].(map[string]any)
	if prog["totalRead"].(float64) != 3 {
		t.Fatalf("totalRead = %v, want 3", prog["totalRead"])
	}
	read := prog["readIssues"].([]any)
	want := []float64{1, 3, 5}
	for i, v := range read {
		if v.(float64) != want[i] {
			t.Fatalf("readIssues = %v, want [1 3 5]", read)
		}
	}

	// listing carries the merged counts
	rr, body = doJSON(t, r, "GET", "/api/user/comics", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	items := body["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("list len = %d, want 1", len(items))
	}
	item := items[0].(map[string]any)
	if item["issues_read"].(float64) != 3 || item["total_issues"].(float64) != 66 {
		t.Fatalf("enrichment = %v/%v, want 3/66", item["issues_read"], item["total_issues"])
	}

	// currently reading with progress string
	rr, body = doJSON(t, r, "GET", "/api/user/currently-reading", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("currently-reading status = %d", rr.Code)
	}
	reading := body["data"].([]any)
	if len(reading) != 1 {
		t.Fatalf("currently-reading len = %d, want 1", len(reading))
	}
	if got := reading[0].(map[string]any)["progress"]; got != "3/66" {
		t.Fatalf("progress = %v, want 3/66", got)
	}

	// complete with rating
	rr, body = doJSON(t, r, "PUT", fmt.Sprintf("/api/comics/%d/status", userComicID), token, map[string]any{
		"status": "completed", "rating": 5,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d body=%s", rr.Code, rr.Body.String())
	}
	data = body["data"].(map[string]any)
	if data["completed_date"] == nil {
		t.Fatal("completed_date not set")
	}
	if data["personal_rating"].(float64) != 5 {
		t.Fatalf("rating = %v, want 5", data["personal_rating"])
	}

	// remove clears membership
	rr, _ = doJSON(t, r, "DELETE", fmt.Sprintf("/api/comics/%d/collection", userComicID), token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("remove status = %d", rr.Code)
	}
	rr, body = doJSON(t, r, "GET", "/api/user/comics", token, nil)
	if len(body["data"].([]any)) != 0 {
		t.Fatalf("list after remove = %v", body["data"])
	}
	rr, _ = doJSON(t, r, "DELETE", fmt.Sprintf("/api/comics/%d/collection", userComicID), token, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second remove status = %d, want 404", rr.Code)
	}
}

func TestMarkAllRead_UsesComicIssueCount(t *testing.T) {
	r, _, token := newTestServer(t)

	_, body := doJSON(t, r, "POST", "/api/comics/add-to-collection", token, map[string]any{
		"comic":  map[string]any{"id": 7, "name": "Mini", "count_of_issues": 4},
		"status": "reading",
	})
	comicID := int64(body["data"].(map[string]any)["comic_id"].(float64))

	rr, body := doJSON(t, r, "POST", fmt.Sprintf("/api/issues/%d/mark-all", comicID), token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("mark-all status = %d body=%s", rr.Code, rr.Body.String())
	}
	if body["data"].(map[string]any)["marked"].(float64) != 4 {
		t.Fatalf("marked = %v, want 4", body["data"])
	}

	_, body = doJSON(t, r, "GET", fmt.Sprintf("/api/issues/%d/progress", comicID), token, nil)
	if body["data"].(map[string]any)["totalRead"].(float64) != 4 {
		t.Fatalf("totalRead = %v, want 4", body["data"])
	}
}

func TestUpdateStatus_OtherUsersRowIs404(t *testing.T) {
	r, db, token := newTestServer(t)

	if err := user.CreateUser(db, "u2", "mallory", "password"); err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	otherToken, err := auth.SignJWT([]byte("test-secret"), "u2", "mallory", time.Hour)
	if err != nil {
		t.Fatalf("SignJWT(): %v", err)
	}

	_, body := doJSON(t, r, "POST", "/api/comics/add-to-collection", token, map[string]any{
		"comic": map[string]any{"id": 1, "name": "A"},
	})
	userComicID := int64(body["data"].(map[string]any)["id"].(float64))

	rr, _ := doJSON(t, r, "PUT", fmt.Sprintf("/api/comics/%d/status", userComicID), otherToken, map[string]any{
		"status": "reading",
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("cross-user update status = %d, want 404", rr.Code)
	}
}

func TestAddToCollection_Validation(t *testing.T) {
	r, _, token := newTestServer(t)

	rr, _ := doJSON(t, r, "POST", "/api/comics/add-to-collection", token, map[string]any{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing comic status = %d, want 400", rr.Code)
	}

	rr, _ = doJSON(t, r, "POST", "/api/comics/add-to-collection", token, map[string]any{
		"comic": map[string]any{"id": 1}, "status": "bingeing",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad status = %d, want 400", rr.Code)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	r, _, token := newTestServer(t)

	rr, body := doJSON(t, r, "GET", "/api/user/profile", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get profile status = %d", rr.Code)
	}
	if body["data"].(map[string]any)["display_name"] != "alice" {
		t.Fatalf("initial profile = %v", body["data"])
	}

	rr, _ = doJSON(t, r, "PUT", "/api/user/profile", token, map[string]any{
		"display_name": "Alice",
		"avatar_url":   "https://img.example/a.png",
		"bio":          "reads everything",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("put profile status = %d", rr.Code)
	}

	_, body = doJSON(t, r, "GET", "/api/user/profile", token, nil)
	p := body["data"].(map[string]any)
	if p["display_name"] != "Alice" || p["bio"] != "reads everything" {
		t.Fatalf("profile after update = %v", p)
	}
}
