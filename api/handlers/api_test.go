package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var a App

func executeRequest(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)
	return rr
}

func checkResponseCode(t *testing.T, expected, actual int) {
	if expected != actual {
		t.Errorf("Expected response code %d. Got %d\n", expected, actual)
	}
}

func TestUnknownRoute(t *testing.T) {
	a.Router = a.New()
	req, _ := http.NewRequest("GET", "/asdf", nil)
	response := executeRequest(req)

	checkResponseCode(t, http.StatusNotFound, response.Code)
}

func TestHealthCheckRoute(t *testing.T) {
	a.Router = a.New()
	req, _ := http.NewRequest("GET", "/health", nil)
	response := executeRequest(req)

	checkResponseCode(t, http.StatusOK, response.Code)

	if !strings.Contains(response.Body.String(), "alive") {
		t.Errorf("Expected 'alive' in the reponse. Got '%s'", response.Body.String())
	}
}

func TestApp_FilterRouteUnauthorized(t *testing.T) {
	a.Router = a.New()
	req, _ := http.NewRequest("POST", "/complaints/filter", nil)
	response := executeRequest(req)

	checkResponseCode(t, http.StatusUnauthorized, response.Code)

	if !strings.Contains(response.Body.String(), "Access denied. No token provided.") {
		t.Errorf("Expected access denied message. Got '%s'", response.Body.String())
	}
}

func TestApp_FilterRouteInvalidToken(t *testing.T) {
	a.Router = a.New()
	req, _ := http.NewRequest("POST", "/complaints/filter", nil)
	req.Header.Add("Authorization", "Bearer asdfasdf")
	response := executeRequest(req)

	checkResponseCode(t, http.StatusUnauthorized, response.Code)

	if !strings.Contains(response.Body.String(), "Invalid token.") {
		t.Errorf("Expected invalid token message. Got '%s'", response.Body.String())
	}
}

func TestApp_CategoriesRouteIsPublic(t *testing.T) {
	a.Router = a.New()
	req, _ := http.NewRequest("GET", "/municipalities/categories", nil)
	response := executeRequest(req)

	checkResponseCode(t, http.StatusOK, response.Code)
}
