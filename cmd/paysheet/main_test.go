package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paysheet "github.com/paysheet/paysheet/go"
)

func newStripeServer(t *testing.T, status string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "pi_123", "object": "payment_intent", "client_secret": "pi_123_secret_abc",
			"confirmation_method": "automatic", "payment_method_types": ["card"], "status": "` + status + `"}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func runCLI(t *testing.T, server *httptest.Server, args ...string) (paysheet.ResultView, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("PAYSHEET_PUBLISHABLE_KEY", "pk_test_123")
	t.Setenv("PAYSHEET_API_BASE_URL", server.URL)
	t.Setenv("PAYSHEET_MAX_NETWORK_RETRIES", "0")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()

	var view paysheet.ResultView
	if out.Len() > 0 {
		require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	}
	return view, err
}

func TestInitCommandSuccess(t *testing.T) {
	server := newStripeServer(t, "requires_payment_method")

	view, err := runCLI(t, server, "init", "--client-secret", "pi_123_secret_abc")
	require.NoError(t, err)
	assert.Equal(t, paysheet.ViewStatusSuccess, view.Status)
	assert.Equal(t, "pi_123", view.Data.PaymentIntent.ID)
	assert.Nil(t, view.Data.SavedSelection)
}

func TestInitCommandFailureExitsNonZero(t *testing.T) {
	server := newStripeServer(t, "succeeded")

	view, err := runCLI(t, server, "init", "--client-secret", "pi_123_secret_abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), paysheet.ErrCodeInvalidStatus)
	assert.Equal(t, paysheet.ViewStatusFailure, view.Status)
}

func TestInitCommandRequiresClientSecret(t *testing.T) {
	server := newStripeServer(t, "requires_payment_method")

	_, err := runCLI(t, server, "init")
	assert.Error(t, err)
}

func TestInitFlagsRequest(t *testing.T) {
	flags := &initFlags{
		clientSecret: "pi_123_secret_abc",
		customerID:   "cus_123",
		ephemeralKey: "ek_123",
		googlePayEnv: "test",
	}
	req := flags.request()

	config := req.Configuration()
	require.NotNil(t, config)
	assert.Equal(t, "cus_123", config.CustomerID())
	assert.Equal(t, paysheet.GooglePayEnvironmentTest, config.GooglePayEnvironment())

	assert.Nil(t, (&initFlags{clientSecret: "cs_1"}).request().Configuration())
}
