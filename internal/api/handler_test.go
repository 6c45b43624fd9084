package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/folio/internal/profile"
	"github.com/kalambet/folio/internal/storage"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestHandler(t *testing.T) (http.Handler, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewHandler(Deps{
		Profile:    profile.NewManager(store),
		SigningKey: testKey,
	}), store
}

func validToken(t *testing.T) string {
	t.Helper()
	tok, err := IssueToken(testKey, "tester", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return tok
}

func doRequest(h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorType(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body %q: %v", rec.Body.String(), err)
	}
	return body.Error.Type
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(h, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestGetProfileEmpty(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(h, http.MethodGet, "/api/profile", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var p profile.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if p.Name != "" || len(p.Skills) != 0 {
		t.Errorf("profile = %+v, want empty", p)
	}
}

func TestListSkills(t *testing.T) {
	h, store := newTestHandler(t)
	if _, err := store.AddSkill(profile.Skill{Name: "Rust", Category: "Lang", Proficiency: 80}); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(h, http.MethodGet, "/api/skills", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var skills []profile.Skill
	if err := json.Unmarshal(rec.Body.Bytes(), &skills); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(skills) != 1 || skills[0].Label() != "Rust - Lang (80%) - 0 yrs" {
		t.Errorf("skills = %+v", skills)
	}
	if !strings.Contains(rec.Body.String(), `"id":1`) {
		t.Errorf("expected numeric id on the wire, got %s", rec.Body.String())
	}
}

func TestListSkillsEmptyIsArray(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(h, http.MethodGet, "/api/skills", "", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body = %q, want []", rec.Body.String())
	}
}

func TestPutProfile(t *testing.T) {
	h, store := newTestHandler(t)
	if err := store.PutProfile(profile.Profile{Name: "Old", ProfileImage: "/me.png"}); err != nil {
		t.Fatal(err)
	}

	body := `{"name":"Ada","title":"Engineer","bio":"","email":"ada@example.com","phone":"","location":"",
		"skills":[1,"go"],"socialLinks":{"github":"gh","linkedin":"","twitter":""}}`
	rec := doRequest(h, http.MethodPut, "/api/profile", body, validToken(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var p profile.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if p.Name != "Ada" || p.SocialLinks.GitHub != "gh" {
		t.Errorf("profile = %+v", p)
	}
	if p.ProfileImage != "/me.png" {
		t.Errorf("image = %q, want untouched", p.ProfileImage)
	}
	if len(p.Skills) != 2 || p.Skills[0] != "1" || p.Skills[1] != `"go"` {
		t.Errorf("skills = %#v", p.Skills)
	}

	rec = doRequest(h, http.MethodGet, "/api/profile", "", "")
	if !strings.Contains(rec.Body.String(), `"name":"Ada"`) {
		t.Errorf("GET after PUT = %s", rec.Body.String())
	}
}

func TestPutProfileAuth(t *testing.T) {
	h, _ := newTestHandler(t)

	expired, err := IssueToken(testKey, "tester", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	otherKey, err := IssueToken([]byte("another-key-another-key-another!!"), "tester", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
		{"wrong key", otherKey},
		{"expired", expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, http.MethodPut, "/api/profile", `{"name":"x"}`, tt.token)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if got := errorType(t, rec); got != "authentication_error" {
				t.Errorf("error type = %q", got)
			}
		})
	}
}

func TestPutProfileSchema(t *testing.T) {
	h, _ := newTestHandler(t)
	tok := validToken(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"not an object", `[]`},
		{"number name", `{"name":42}`},
		{"links not object", `{"socialLinks":"gh"}`},
		{"link not string", `{"socialLinks":{"github":1}}`},
		{"skills not array", `{"skills":"go"}`},
		{"skill object", `{"skills":[{"id":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, http.MethodPut, "/api/profile", tt.body, tok)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			if got := errorType(t, rec); got != "invalid_request_error" {
				t.Errorf("error type = %q", got)
			}
		})
	}
}

func TestIssueAndVerifyToken(t *testing.T) {
	tok, err := IssueToken(testKey, "ada", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	sub, err := VerifyToken(testKey, tok)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if sub != "ada" {
		t.Errorf("subject = %q", sub)
	}

	if _, err := IssueToken(nil, "ada", time.Hour); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestTokenWithoutExpiry(t *testing.T) {
	tok, err := IssueToken(testKey, "ada", 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := VerifyToken(testKey, tok); err != nil {
		t.Errorf("VerifyToken: %v", err)
	}
}
