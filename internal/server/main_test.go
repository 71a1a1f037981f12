package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"sangrachna/internal/config"
	"sangrachna/internal/notifications"
	"sangrachna/internal/repository"
	"sangrachna/internal/service"
	"sangrachna/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testOperatorName     = "asha"
	testOperatorPassword = "correct-horse-battery"
)

type testEnv struct {
	srv   *Server
	db    *gorm.DB
	mr    *miniredis.Miniredis
	token string
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:            "test-secret-that-is-at-least-32-bytes",
		JWTTTLHours:          1,
		Port:                 "0",
		AllowedOrigins:       "*",
		Env:                  "test",
		ModerationPolicy:     config.PolicyPermissive,
		NotifyTimeoutSeconds: 5,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db := testutil.NewSQLiteDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	srv, err := NewServerWithDeps(testConfig(), db, rdb)
	require.NoError(t, err)

	_, err = srv.authService.CreateOperator(context.Background(), testOperatorName, testOperatorPassword)
	require.NoError(t, err)
	res, err := srv.authService.Login(context.Background(), testOperatorName, testOperatorPassword)
	require.NoError(t, err)

	return &testEnv{srv: srv, db: db, mr: mr, token: res.Token}
}

// useDispatcher swaps the loan service for one that sends through d.
func (e *testEnv) useDispatcher(d notifications.Dispatcher) {
	e.srv.loans = service.NewLoanService(repository.NewBookRequestRepository(e.db), service.LoanServiceOptions{
		Dispatcher: d,
		Publisher:  e.srv.notifier,
	})
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.App().Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (e *testEnv) public(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	return e.do(t, method, path, body, "")
}

func (e *testEnv) admin(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	return e.do(t, method, path, body, e.token)
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

type stubDispatcher struct {
	sent []notifications.LoanApproval
	err  error
}

func (d *stubDispatcher) SendLoanApproval(_ context.Context, msg notifications.LoanApproval) error {
	d.sent = append(d.sent, msg)
	return d.err
}
