package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parkseva/api/internal/config"
	"github.com/parkseva/api/internal/container"
	"github.com/parkseva/api/internal/helpers"
	"github.com/parkseva/api/internal/models"
	"github.com/parkseva/api/internal/routes"
	"github.com/parkseva/api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *testutil.Store
}

func newTestServer(t *testing.T, health error) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		LockBackend:    config.LockBackendMemory,
		LockWait:       time.Second,
		RequestTimeout: 5 * time.Second,
		AllowedOrigins: []string{"http://localhost:3000"},
		Environment:    "test",
	}
	store := testutil.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := container.NewContainerWithRepos(cfg, logger, container.Repositories{
		Users:    store,
		Spots:    store,
		Bookings: store,
		Health:   pinger{err: health},
	}, models.NewLocalLocker(cfg.LockWait))

	return &testServer{t: t, router: routes.SetupRoutes(c), store: store}
}

func (s *testServer) do(method, path, authHeader string, body interface{}) (*httptest.ResponseRecorder, apiEnvelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env apiEnvelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (s *testServer) register(email, phone string) string {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Test User", "email": email, "password": "secret1", "phone": phone,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"id"`
			Password string `json:"password"`
		} `json:"user"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(s.t, data.Token)
	require.Empty(s.t, data.User.Password)
	return data.Token
}

func (s *testServer) spot(capacity int) *models.Spot {
	s.t.Helper()
	spot, err := s.store.CreateSpot(context.Background(), &models.Spot{
		OwnerID: primitive.NewObjectID(), Title: "Basement Parking A", Address: "MG Road",
		City: "Bengaluru", Landmark: "Metro Gate 2", PricePerHour: 60, Capacity: capacity,
		Rating: 4.5, IsActive: true,
	})
	require.NoError(s.t, err)
	return spot
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	w, env := s.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, env = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"database":"connected"`)

	w, env = s.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Route not found", env.Message)
}

func TestHealthReportsDatabaseDown(t *testing.T) {
	s := newTestServer(t, errors.New("no primary"))
	w, env := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, env.Success)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.register("asha@example.com", "9876543210")

	w, env := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Dup", "email": "asha@example.com", "password": "secret1", "phone": "9000000000",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists with this email or phone number", env.Message)

	w, env = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", env.Message)
	assert.NotEmpty(t, env.Errors)

	w, _ = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "asha@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "asha@example.com", "password": "wrong-one",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", env.Message)

	for _, header := range []string{"Bearer " + token, "bearer " + token, token} {
		w, env = s.do(http.MethodGet, "/api/auth/profile", header, nil)
		assert.Equal(t, http.StatusOK, w.Code, header)
		assert.Contains(t, string(env.Data), "asha@example.com")
	}

	w, env = s.do(http.MethodPut, "/api/auth/profile", "Bearer "+token, map[string]interface{}{
		"name": "Asha Rao", "address": map[string]string{"city": "Pune"},
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"name":"Asha Rao"`)
}

func TestAuthRejections(t *testing.T) {
	s := newTestServer(t, nil)

	var bodies []string
	for _, header := range []string{"", "Bearer abc.def.ghi", "Basic dXNlcjpwYXNz", "Bearer"} {
		w, env := s.do(http.MethodGet, "/api/bookings/my", header, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Equal(t, helpers.UnauthorizedMessage, env.Message, header)
		bodies = append(bodies, w.Body.String())
	}
	// missing and rejected tokens are indistinguishable to the client
	for _, body := range bodies[1:] {
		assert.Equal(t, bodies[0], body)
	}
}

func TestPagingBounds(t *testing.T) {
	s := newTestServer(t, nil)
	token := "Bearer " + s.register("asha@example.com", "9876543210")
	s.spot(3)

	for _, path := range []string{
		"/api/parking/search?page=9223372036854775807",
		"/api/bookings/my?page=9223372036854775807",
		"/api/parking/search?page=2305843009213693953&limit=8",
	} {
		w, env := s.do(http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, "Validation failed", env.Message, path)
		assert.Equal(t, []string{"page must be at most 100000"}, env.Errors, path)
	}

	w, env := s.do(http.MethodGet, "/api/parking/search?page=100000&limit=24", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"results":[]`)
	assert.Contains(t, string(env.Data), `"total":1`)

	// values past int64 never reach the service
	w, env = s.do(http.MethodGet, "/api/parking/search?page=9223372036854775808", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestBookingFlow(t *testing.T) {
	s := newTestServer(t, nil)
	asha := "Bearer " + s.register("asha@example.com", "9876543210")
	ravi := "bearer " + s.register("ravi@example.com", "9123456780")
	spot := s.spot(1)

	booking := map[string]string{
		"spotId": spot.ID.Hex(), "date": "2025-03-09", "startTime": "09:00", "endTime": "11:00",
	}

	w, env := s.do(http.MethodPost, "/api/bookings", asha, booking)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		BookingID string `json:"bookingId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.BookingID)

	w, env = s.do(http.MethodPost, "/api/bookings", ravi, booking)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Spot not available for the given time range", env.Message)

	w, _ = s.do(http.MethodPost, "/api/bookings", ravi, map[string]string{
		"spotId": spot.ID.Hex(), "date": "2025-03-09", "startTime": "11:00", "endTime": "12:00",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, env = s.do(http.MethodPost, "/api/bookings", ravi, map[string]string{
		"spotId": primitive.NewObjectID().Hex(), "date": "2025-03-09", "startTime": "09:00", "endTime": "10:00",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Parking spot not found", env.Message)

	w, env = s.do(http.MethodPost, "/api/bookings", ravi, map[string]string{
		"spotId": spot.ID.Hex(), "date": "2025-03-09", "startTime": "12:00", "endTime": "10:00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", env.Message)

	w, env = s.do(http.MethodGet, "/api/parking/search?date=2025-03-09&startTime=10:00&endTime=11:00", ravi, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"results":[]`)
	assert.Contains(t, string(env.Data), `"total":1`)

	w, env = s.do(http.MethodGet, "/api/parking/search?onlyAvailable=false&date=2025-03-09&startTime=10:00&endTime=11:00", ravi, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"available":false`)

	w, env = s.do(http.MethodGet, "/api/bookings/my?page=1&limit=100", asha, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var mine struct {
		Bookings []struct {
			ID   string `json:"id"`
			Spot struct {
				Title string `json:"title"`
			} `json:"spot"`
		} `json:"bookings"`
		TotalPages int `json:"totalPages"`
		Total      int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine.Bookings, 1)
	assert.Equal(t, created.BookingID, mine.Bookings[0].ID)
	assert.Equal(t, "Basement Parking A", mine.Bookings[0].Spot.Title)
	assert.Equal(t, 1, mine.TotalPages)

	// someone else's booking looks missing
	w, env = s.do(http.MethodDelete, "/api/bookings/"+created.BookingID, ravi, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Booking not found", env.Message)

	w, env = s.do(http.MethodDelete, "/api/bookings/"+created.BookingID, asha, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, env = s.do(http.MethodDelete, "/api/bookings/"+created.BookingID, asha, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "This booking cannot be cancelled", env.Message)

	// the freed capacity can be booked again
	w, _ = s.do(http.MethodPost, "/api/bookings", ravi, booking)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestBadPayloads(t *testing.T) {
	s := newTestServer(t, nil)
	token := "Bearer " + s.register("asha@example.com", "9876543210")

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request payload")

	w, _ = s.do(http.MethodGet, "/api/bookings/my?page=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := s.do(http.MethodDelete, "/api/bookings/not-an-id", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}
