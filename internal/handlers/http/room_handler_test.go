package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"roomgate/internal/core/domain"
	"roomgate/internal/core/services"
	"roomgate/internal/infrastructure/middleware"
	"roomgate/internal/infrastructure/monitoring"
	"roomgate/internal/infrastructure/repositories/memory"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const apiSecret = "test-secret"

// exactFilter is a precise membership set so handler tests are deterministic.
type exactFilter struct {
	mu    sync.Mutex
	names map[domain.RoomName]bool
}

func (f *exactFilter) Add(name domain.RoomName) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names[name] = true
}

func (f *exactFilter) MayContain(name domain.RoomName) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.names[name]
}

func (f *exactFilter) Persist(ctx context.Context) error { return nil }

func (f *exactFilter) Reset(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = make(map[domain.RoomName]bool)
	return nil
}

type stubProvider struct{}

func (stubProvider) DeleteRoom(ctx context.Context, room domain.RoomName) error { return nil }
func (stubProvider) RemoveParticipant(ctx context.Context, room domain.RoomName, identity domain.Identity) error {
	return nil
}

func newAPITestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zaptest.NewLogger(t).Sugar()
	collector := monitoring.NewCollector(prometheus.NewRegistry())

	registry := memory.NewMemoryRoomRegistry()
	pending := memory.NewMemoryPendingQueue()
	handoff := memory.NewMemoryHandoffSlot()
	filter := &exactFilter{names: make(map[domain.RoomName]bool)}

	credentials := services.NewCredentialService("devkey", "devsecret", time.Hour)
	lifecycle := services.NewLifecycleService(registry, pending, stubProvider{}, collector, logger)
	admission := services.NewAdmissionService(
		registry, pending, handoff, filter,
		credentials, lifecycle, stubProvider{}, collector, logger,
		5*time.Minute, "http://localhost:5173",
	)

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(apiSecret))
	api.Use(middleware.ErrorHandlerMiddleware(logger))
	NewRoomHandler(admission).SetupRoutes(api)
	return router
}

func callerToken(t *testing.T, identity, name string) string {
	t.Helper()

	claims := &middleware.CallerClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(apiSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(router *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAPI_RequiresAuth(t *testing.T) {
	router := newAPITestServer(t)

	w := doJSON(router, http.MethodPost, "/api/v1/rooms", "", map[string]string{"room_name": "demo"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_CreateRoom(t *testing.T) {
	router := newAPITestServer(t)
	host := callerToken(t, "alice", "Alice")

	w := doJSON(router, http.MethodPost, "/api/v1/rooms", host, map[string]string{"room_name": "demo"})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "demo", body["room"])
	assert.NotEmpty(t, body["credential"])
	assert.Equal(t, "http://localhost:5173/demo?host=true", body["join_url"])

	// Same name again conflicts, with the mapped error payload.
	w = doJSON(router, http.MethodPost, "/api/v1/rooms", host, map[string]string{"room_name": "demo"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", decodeBody(t, w)["error"])
}

func TestAPI_CreateRoom_MissingName(t *testing.T) {
	router := newAPITestServer(t)

	w := doJSON(router, http.MethodPost, "/api/v1/rooms", callerToken(t, "alice", ""), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_CheckRoom(t *testing.T) {
	router := newAPITestServer(t)
	token := callerToken(t, "alice", "")

	w := doJSON(router, http.MethodPost, "/api/v1/rooms/check", token, map[string]string{"room_name": "demo"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["available"])

	doJSON(router, http.MethodPost, "/api/v1/rooms", token, map[string]string{"room_name": "demo"})

	w = doJSON(router, http.MethodPost, "/api/v1/rooms/check", token, map[string]string{"room_name": "demo"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["available"])
}

func TestAPI_JoinApproveClaimFlow(t *testing.T) {
	router := newAPITestServer(t)
	host := callerToken(t, "alice", "Alice")
	guest := callerToken(t, "bob", "Bob")

	w := doJSON(router, http.MethodPost, "/api/v1/rooms", host, map[string]string{"room_name": "demo"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Guest asks to join and lands in the queue.
	w = doJSON(router, http.MethodPost, "/api/v1/rooms/demo/join", guest, nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "queued", decodeBody(t, w)["status"])

	// Polling before approval yields no credential.
	w = doJSON(router, http.MethodGet, "/api/v1/rooms/demo/credential", guest, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["ready"])

	// Host sees the guest and approves.
	w = doJSON(router, http.MethodGet, "/api/v1/rooms/demo/pending", host, nil)
	require.Equal(t, http.StatusOK, w.Code)
	pending := decodeBody(t, w)["pending"].([]interface{})
	require.Len(t, pending, 1)

	w = doJSON(router, http.MethodPost, "/api/v1/rooms/demo/approve", host, map[string]string{"identity": "bob"})
	require.Equal(t, http.StatusOK, w.Code)

	// A join retry now reports the waiting approval.
	w = doJSON(router, http.MethodPost, "/api/v1/rooms/demo/join", guest, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "already_approved", decodeBody(t, w)["status"])

	// The claim hands out the credential exactly once.
	w = doJSON(router, http.MethodGet, "/api/v1/rooms/demo/credential", guest, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["ready"])
	assert.NotEmpty(t, body["credential"])

	w = doJSON(router, http.MethodGet, "/api/v1/rooms/demo/credential", guest, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["ready"])
}

func TestAPI_JoinUnknownRoom(t *testing.T) {
	router := newAPITestServer(t)

	w := doJSON(router, http.MethodPost, "/api/v1/rooms/ghost/join", callerToken(t, "bob", ""), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeBody(t, w)["error"])
}

func TestAPI_RejectGuest(t *testing.T) {
	router := newAPITestServer(t)
	host := callerToken(t, "alice", "")
	guest := callerToken(t, "bob", "")

	doJSON(router, http.MethodPost, "/api/v1/rooms", host, map[string]string{"room_name": "demo"})
	doJSON(router, http.MethodPost, "/api/v1/rooms/demo/join", guest, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/rooms/demo/reject", host, map[string]string{"identity": "bob"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/rooms/demo/pending", host, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody(t, w)["pending"])
}

func TestAPI_EndRoom_HostOnly(t *testing.T) {
	router := newAPITestServer(t)
	host := callerToken(t, "alice", "")
	other := callerToken(t, "bob", "")

	doJSON(router, http.MethodPost, "/api/v1/rooms", host, map[string]string{"room_name": "demo"})

	w := doJSON(router, http.MethodDelete, "/api/v1/rooms/demo", other, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decodeBody(t, w)["error"])

	w = doJSON(router, http.MethodDelete, "/api/v1/rooms/demo", host, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The name is reusable after teardown.
	w = doJSON(router, http.MethodPost, "/api/v1/rooms", host, map[string]string{"room_name": "demo"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAPI_RemoveParticipant(t *testing.T) {
	router := newAPITestServer(t)
	host := callerToken(t, "alice", "")
	other := callerToken(t, "bob", "")

	doJSON(router, http.MethodPost, "/api/v1/rooms", host, map[string]string{"room_name": "demo"})

	w := doJSON(router, http.MethodPost, "/api/v1/rooms/demo/participants/remove", other, map[string]string{"identity": "carol"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/rooms/demo/participants/remove", host, map[string]string{"identity": "carol"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "removed", decodeBody(t, w)["status"])
}
