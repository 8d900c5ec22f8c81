package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/melcoco/registration-service/internal/api/http"
	"github.com/melcoco/registration-service/internal/api/http/handlers"
	"github.com/melcoco/registration-service/internal/observability"
	"github.com/melcoco/registration-service/internal/service"
)

type stubRegistrar struct {
	result *service.RegistrationResult
	err    error
	called bool
	input  service.RegisterInput
}

func (s *stubRegistrar) Register(_ context.Context, input service.RegisterInput) (*service.RegistrationResult, error) {
	s.called = true
	s.input = input
	return s.result, s.err
}

func newTestApp(registrar handlers.Registrar) *fiber.App {
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	handler := handlers.NewRegisterHandler(registrar)
	app.Post("/register", handler.Register)
	return app
}

func postRegister(t *testing.T, app *fiber.App, body map[string]interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp, decoded
}

func validBody() map[string]interface{} {
	return map[string]interface{}{
		"email":      "a@x.com",
		"name":       "A",
		"salonName":  "S",
		"prefecture": "Tokyo",
		"status":     "trial",
		"apps":       []string{"agent", "timer"},
	}
}

func TestRegister_Success(t *testing.T) {
	registrar := &stubRegistrar{result: &service.RegistrationResult{UID: "uid-1", Created: true, Trial: true}}
	app := newTestApp(registrar)

	resp, body := postRegister(t, app, validBody())

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, true, body["ok"])
	require.Equal(t, "uid-1", body["uid"])
	require.True(t, registrar.called)
	require.Equal(t, "a@x.com", registrar.input.Email)
	require.JSONEq(t, `["agent","timer"]`, string(registrar.input.Apps))
}

func TestRegister_MissingFieldFailsBeforeSideEffects(t *testing.T) {
	for _, field := range []string{"email", "name", "salonName", "prefecture", "status"} {
		t.Run(field, func(t *testing.T) {
			registrar := &stubRegistrar{result: &service.RegistrationResult{UID: "uid-1"}}
			app := newTestApp(registrar)

			body := validBody()
			delete(body, field)

			resp, decoded := postRegister(t, app, body)

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			require.Equal(t, false, decoded["ok"])
			require.NotEmpty(t, decoded["error"])
			require.False(t, registrar.called, "no side effect on validation failure")
		})
	}
}

func TestRegister_UnusualEmailStillAccepted(t *testing.T) {
	// The contract requires presence, not a well-formed address.
	registrar := &stubRegistrar{result: &service.RegistrationResult{UID: "uid-1"}}
	app := newTestApp(registrar)

	body := validBody()
	body["email"] = "not-an-address"

	resp, _ := postRegister(t, app, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, registrar.called)
	require.Equal(t, "not-an-address", registrar.input.Email)
}

func TestRegister_AppsOptional(t *testing.T) {
	registrar := &stubRegistrar{result: &service.RegistrationResult{UID: "uid-1"}}
	app := newTestApp(registrar)

	body := validBody()
	delete(body, "apps")

	resp, _ := postRegister(t, app, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, registrar.called)
}

func TestRegister_ServiceFailureIsServerError(t *testing.T) {
	registrar := &stubRegistrar{err: errors.New("identity provider rejected the request")}
	app := newTestApp(registrar)

	resp, body := postRegister(t, app, validBody())

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, false, body["ok"])
	require.Contains(t, body["error"], "identity provider rejected")
}
