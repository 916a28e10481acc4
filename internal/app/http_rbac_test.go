package app

import (
	"net/http"
	"testing"
)

func TestViewerForbiddenOnAdjust(t *testing.T) {
	server := newTestServer(t)
	viewer := loginHTTP(t, server, "viewer", "viewer123")

	rr := doJSON(t, server, http.MethodPost, "/api/resources/1/adjust", viewer["token"].(string), `{"delta":-10}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d body=%s", rr.Code, rr.Body.String())
	}
	if payload := parseBody(t, rr); payload["code"] != "FORBIDDEN" {
		t.Fatalf("expected code FORBIDDEN, got %v", payload["code"])
	}
}

func TestViewerForbiddenOnStatusChange(t *testing.T) {
	server := newTestServer(t)
	viewer := loginHTTP(t, server, "viewer", "viewer123")

	rr := doJSON(t, server, http.MethodPost, "/api/requests/1/status", viewer["token"].(string), `{"status":"approved"}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestViewerForbiddenOnUsers(t *testing.T) {
	server := newTestServer(t)
	viewer := loginHTTP(t, server, "viewer", "viewer123")

	rr := doJSON(t, server, http.MethodGet, "/api/users", viewer["token"].(string), "")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestOperatorForbiddenOnUsers(t *testing.T) {
	server := newTestServer(t)
	operator := loginHTTP(t, server, "operator", "operator123")

	rr := doJSON(t, server, http.MethodGet, "/api/users", operator["token"].(string), "")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestOperatorCanAdjust(t *testing.T) {
	server := newTestServer(t)
	operator := loginHTTP(t, server, "operator", "operator123")

	rr := doJSON(t, server, http.MethodPost, "/api/resources/1/adjust", operator["token"].(string), `{"delta":-50}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	payload := parseBody(t, rr)
	resource, ok := payload["resource"].(map[string]any)
	if !ok || resource["currentAmount"] != float64(800) {
		t.Fatalf("unexpected resource payload: %v", payload)
	}
}

func TestAdminCanListUsers(t *testing.T) {
	server := newTestServer(t)
	admin := loginHTTP(t, server, "admin", "admin123")

	rr := doJSON(t, server, http.MethodGet, "/api/users", admin["token"].(string), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	payload := parseBody(t, rr)
	users, ok := payload["users"].([]any)
	if !ok || len(users) != 3 {
		t.Fatalf("expected 3 users, got %v", payload)
	}
}

func TestViewerCanCreateRequestOverHTTP(t *testing.T) {
	server := newTestServer(t)
	viewer := loginHTTP(t, server, "viewer", "viewer123")

	rr := doJSON(t, server, http.MethodPost, "/api/requests", viewer["token"].(string),
		`{"resourceId":"3","requestedBy":"Field Team","priority":"high","amount":10,"purpose":"Triage kits"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	payload := parseBody(t, rr)
	request, ok := payload["request"].(map[string]any)
	if !ok || request["status"] != "pending" || request["resourceName"] != "Essential medicine" {
		t.Fatalf("unexpected request payload: %v", payload)
	}
}

func TestRequestValidationOverHTTP(t *testing.T) {
	server := newTestServer(t)
	viewer := loginHTTP(t, server, "viewer", "viewer123")

	rr := doJSON(t, server, http.MethodPost, "/api/requests", viewer["token"].(string),
		`{"resourceId":"3","requestedBy":"Field Team","priority":"high","amount":0,"purpose":"Triage kits"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d body=%s", rr.Code, rr.Body.String())
	}
	payload := parseBody(t, rr)
	if payload["code"] != "VALIDATION_ERROR" {
		t.Fatalf("expected code VALIDATION_ERROR, got %v", payload["code"])
	}
	details, ok := payload["details"].(map[string]any)
	if !ok || details["field"] != "amount" {
		t.Fatalf("expected amount field detail, got %v", payload["details"])
	}
}

func TestInsufficientStockOverHTTP(t *testing.T) {
	server := newTestServer(t)
	operator := loginHTTP(t, server, "operator", "operator123")
	token := operator["token"].(string)

	// Drain medicine below the approved seed request's amount of 25.
	rr := doJSON(t, server, http.MethodPost, "/api/resources/3/adjust", token, `{"delta":-65}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("adjust: status %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/api/requests/3/status", token, `{"status":"distributed"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d body=%s", rr.Code, rr.Body.String())
	}
	if payload := parseBody(t, rr); payload["code"] != "INSUFFICIENT_STOCK" {
		t.Fatalf("expected code INSUFFICIENT_STOCK, got %v", payload["code"])
	}
}
