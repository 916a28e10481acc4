package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockpile/api/internal/auth"
)

func newTestServer(t *testing.T) *HTTPServer {
	t.Helper()
	return NewHTTPServer(newTestService(t), "*")
}

func doJSON(t *testing.T, server *HTTPServer, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

func parseBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v body=%s", err, rr.Body.String())
	}
	return payload
}

func loginHTTP(t *testing.T, server *HTTPServer, username, password string) map[string]any {
	t.Helper()
	rr := doJSON(t, server, http.MethodPost, "/api/auth/login", "", `{"username":"`+username+`","password":"`+password+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body=%s", username, rr.Code, rr.Body.String())
	}
	return parseBody(t, rr)
}

func TestLoginReturnsContract(t *testing.T) {
	server := newTestServer(t)

	payload := loginHTTP(t, server, "admin", "admin123")
	token, _ := payload["token"].(string)
	refreshToken, _ := payload["refreshToken"].(string)
	if token == "" || refreshToken == "" {
		t.Fatalf("expected token and refreshToken, got %v", payload)
	}
	if payload["username"] != "admin" || payload["role"] != "admin" {
		t.Fatalf("unexpected identity: %v", payload)
	}
	permissions, ok := payload["permissions"].(map[string]any)
	if !ok || permissions["canManageUsers"] != true {
		t.Fatalf("expected admin permissions, got %v", payload["permissions"])
	}
}

func TestLoginTrimsUsername(t *testing.T) {
	server := newTestServer(t)
	rr := doJSON(t, server, http.MethodPost, "/api/auth/login", "", `{"username":"  operator  ","password":"operator123"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if payload := parseBody(t, rr); payload["username"] != "operator" {
		t.Fatalf("expected trimmed username, got %v", payload["username"])
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	server := newTestServer(t)
	rr := doJSON(t, server, http.MethodPost, "/api/auth/login", "", `{"username":"admin","password":"nope"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d body=%s", rr.Code, rr.Body.String())
	}
	if payload := parseBody(t, rr); payload["code"] != "INVALID_CREDENTIALS" {
		t.Fatalf("expected code INVALID_CREDENTIALS, got %v", payload["code"])
	}
}

func TestLoginRejectsInvalidBody(t *testing.T) {
	server := newTestServer(t)
	rr := doJSON(t, server, http.MethodPost, "/api/auth/login", "", `{"username":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	if payload := parseBody(t, rr); payload["code"] != "INVALID_BODY" {
		t.Fatalf("expected code INVALID_BODY, got %v", payload["code"])
	}
}

func TestRefreshEndpointRotates(t *testing.T) {
	server := newTestServer(t)
	first := loginHTTP(t, server, "viewer", "viewer123")

	rr := doJSON(t, server, http.MethodPost, "/api/auth/refresh", "", `{"refreshToken":"`+first["refreshToken"].(string)+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	second := parseBody(t, rr)
	if second["refreshToken"] == first["refreshToken"] {
		t.Fatalf("expected rotated refresh token")
	}

	rr = doJSON(t, server, http.MethodPost, "/api/auth/refresh", "", `{"refreshToken":"`+first["refreshToken"].(string)+`"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected reused refresh token to be rejected, got %d", rr.Code)
	}
}

func TestLogoutEndpointIsIdempotent(t *testing.T) {
	server := newTestServer(t)
	payload := loginHTTP(t, server, "viewer", "viewer123")
	body := `{"refreshToken":"` + payload["refreshToken"].(string) + `"}`

	for i := 0; i < 2; i++ {
		rr := doJSON(t, server, http.MethodPost, "/api/auth/logout", "", body)
		if rr.Code != http.StatusOK {
			t.Fatalf("logout attempt %d: status %d body=%s", i, rr.Code, rr.Body.String())
		}
	}
}

func TestSessionEndpointReportsAuthentication(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, http.MethodGet, "/api/session", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if payload := parseBody(t, rr); payload["authenticated"] != false {
		t.Fatalf("expected authenticated=false, got %v", payload)
	}

	login := loginHTTP(t, server, "operator", "operator123")
	rr = doJSON(t, server, http.MethodGet, "/api/session", login["token"].(string), "")
	payload := parseBody(t, rr)
	if payload["authenticated"] != true || payload["role"] != "operator" {
		t.Fatalf("unexpected session payload: %v", payload)
	}
}

func TestProtectedRouteWithoutBearerReturnsUnauthorized(t *testing.T) {
	server := newTestServer(t)
	rr := doJSON(t, server, http.MethodGet, "/api/resources", "", "")
	assertUnauthorizedCode(t, rr)
}

func TestProtectedRouteWithInvalidBearerReturnsUnauthorized(t *testing.T) {
	server := newTestServer(t)
	rr := doJSON(t, server, http.MethodGet, "/api/resources", "definitely-not-a-token", "")
	assertUnauthorizedCode(t, rr)
}

func TestProtectedRouteWithExpiredBearerReturnsUnauthorized(t *testing.T) {
	server := newTestServer(t)

	token, err := auth.IssueToken([]byte("test-secret"), auth.Claims{
		Sub:  "1",
		Name: "admin",
		Role: "admin",
		JTI:  "jti-expired",
		Exp:  time.Now().Add(-1 * time.Minute).Unix(),
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rr := doJSON(t, server, http.MethodGet, "/api/resources", token, "")
	assertUnauthorizedCode(t, rr)
}

func TestHealthAndReady(t *testing.T) {
	server := newTestServer(t)

	rr := doJSON(t, server, http.MethodGet, "/api/health", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("health: status %d", rr.Code)
	}

	rr = doJSON(t, server, http.MethodGet, "/api/ready", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("ready: status %d body=%s", rr.Code, rr.Body.String())
	}
	if payload := parseBody(t, rr); payload["status"] != "ready" {
		t.Fatalf("expected status ready, got %v", payload)
	}
}

func assertUnauthorizedCode(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d body=%s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload["code"] != "UNAUTHORIZED" {
		t.Fatalf("expected code UNAUTHORIZED, got %v", payload["code"])
	}
}
