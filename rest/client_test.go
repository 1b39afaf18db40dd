package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rettel/hotel-admin/api"
	"github.com/rettel/hotel-admin/rest"
)

func TestLoginInstallsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/accounts/login/" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Fatalf("Failed to decode credentials: %v", err)
		}
		if creds["email"] != "admin@hotel.test" || creds["password"] != "secret" {
			t.Errorf("Unexpected credentials: %v", creds)
		}

		io.WriteString(w, `{"success": true, "message": "OK", "data": {
			"user": {"id": "u1", "username": "admin", "email": "admin@hotel.test", "role": "management"},
			"access_token": "token-abc"
		}}`)
	}))
	defer server.Close()

	client := rest.New(server.URL)
	login, err := client.Login(context.Background(), "admin@hotel.test", "secret")
	if err != nil {
		t.Fatalf("Failed to login: %v", err)
	}

	if login.User == nil || login.User.Username != "admin" {
		t.Errorf("Unexpected login user: %+v", login.User)
	}
	if client.Token() != "token-abc" {
		t.Errorf("Expected token installed on client, got %q", client.Token())
	}
}

func TestEnvelopeUnwrap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer token-abc" {
			t.Errorf("Unexpected Authorization header: %q", auth)
		}
		io.WriteString(w, `{"success": true, "message": "OK", "data": [
			{"id": "r1", "number": 101, "type": "single", "status": "available", "price": 80}
		]}`)
	}))
	defer server.Close()

	client := rest.New(server.URL)
	client.SetToken("token-abc")

	rooms, err := client.ListRooms(context.Background())
	if err != nil {
		t.Fatalf("Failed to list rooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0].Number != 101 {
		t.Errorf("Unexpected rooms: %+v", rooms)
	}
}

func TestBareResponseDecodes(t *testing.T) {
	// responses without the envelope decode directly
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id": "s1", "name": "Deep Clean", "category": "cleaning"}]`)
	}))
	defer server.Close()

	client := rest.New(server.URL)
	services, err := client.ListServices(context.Background())
	if err != nil {
		t.Fatalf("Failed to list services: %v", err)
	}
	if len(services) != 1 || services[0].Name != "Deep Clean" {
		t.Errorf("Unexpected services: %+v", services)
	}
}

func TestMealsPagination(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `{"success": true, "message": "OK", "data": {
			"results": [{"id": "m1", "name": "Butter Chicken"}],
			"next": "/meals/?page=3",
			"previous": "/meals/?page=1",
			"count": 25
		}}`)
	}))
	defer server.Close()

	client := rest.New(server.URL)
	page, err := client.ListMeals(context.Background(), 2)
	if err != nil {
		t.Fatalf("Failed to list meals: %v", err)
	}

	if gotQuery != "page=2" {
		t.Errorf("Expected page=2 query, got %q", gotQuery)
	}
	if page.Count != 25 || len(page.Results) != 1 {
		t.Errorf("Unexpected page: %+v", page)
	}
	if page.Next == "" || page.Previous == "" {
		t.Errorf("Expected pagination links, got %+v", page)
	}

	// first page omits the query
	if _, err := client.ListMeals(context.Background(), 1); err != nil {
		t.Fatalf("Failed to list first page: %v", err)
	}
	if gotQuery != "" {
		t.Errorf("Expected no query for first page, got %q", gotQuery)
	}
}

func TestStatusErrorMapping(t *testing.T) {
	tests := []struct {
		code    int
		body    string
		errType api.ErrorType
		message string
	}{
		{http.StatusUnauthorized, `{"success": false, "message": "invalid credentials"}`, api.ErrorTypeAuth, "invalid credentials"},
		{http.StatusForbidden, `{}`, api.ErrorTypeAuth, "Forbidden"},
		{http.StatusNotFound, `{"success": false, "message": "room not found"}`, api.ErrorTypeUser, "room not found"},
		{http.StatusInternalServerError, `oops`, api.ErrorTypeServer, "Internal Server Error"},
	}

	for _, test := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(test.code)
			io.WriteString(w, test.body)
		}))

		client := rest.New(server.URL)
		_, err := client.ListRooms(context.Background())
		server.Close()

		if err == nil {
			t.Errorf("Status %d: expected error", test.code)
			continue
		}

		var apiErr *api.Error
		if !errors.As(err, &apiErr) {
			t.Errorf("Status %d: expected *api.Error, got %T", test.code, err)
			continue
		}
		if apiErr.Type != test.errType {
			t.Errorf("Status %d: expected type %v, got %v", test.code, test.errType, apiErr.Type)
		}
		if apiErr.Description != test.message {
			t.Errorf("Status %d: expected message %q, got %q", test.code, test.message, apiErr.Description)
		}
	}
}

func TestBookService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/services/s1/book/" {
			t.Errorf("Unexpected path: %q", r.URL.Path)
		}
		var req api.BookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode booking: %v", err)
		}
		if req.Date != "2026-09-01" {
			t.Errorf("Unexpected booking date: %q", req.Date)
		}

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"success": true, "message": "Created", "data": {
			"id": "b1", "service_id": "s1", "status": "pending"
		}}`)
	}))
	defer server.Close()

	client := rest.New(server.URL)
	booking, err := client.BookService(context.Background(), "s1", &api.BookingRequest{Date: "2026-09-01", Time: "14:00"})
	if err != nil {
		t.Fatalf("Failed to book service: %v", err)
	}
	if booking.ID != "b1" || booking.Status != "pending" {
		t.Errorf("Unexpected booking: %+v", booking)
	}
}

func TestUpdateBookingStatusValidates(t *testing.T) {
	client := rest.New("http://localhost:1")
	_, err := client.UpdateBookingStatus(context.Background(), "b1", "bogus")
	if err == nil {
		t.Fatal("Expected validation error for bad status")
	}

	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Type != api.ErrorTypeUser {
		t.Errorf("Expected user error, got %v", err)
	}
}

func TestCreateUserValidates(t *testing.T) {
	client := rest.New("http://localhost:1")
	_, err := client.CreateUser(context.Background(), &api.User{
		Username: "x",
		Email:    "not-an-email",
		Role:     "management",
	})
	if err == nil {
		t.Fatal("Expected validation error for bad email")
	}
}
