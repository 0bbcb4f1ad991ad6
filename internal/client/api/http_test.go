package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewHTTPClient(ts.URL, 5*time.Second)
}

func TestHTTPClient_Register_SendsBodyAndDecodes(t *testing.T) {
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/register", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"token": "tok-1", "id": "u1", "email": "ann@example.com", "displayName": "Ann",
		})
	})

	resp, err := c.Register(context.Background(), RegisterRequest{
		Email: "ann@example.com", Password: "secret1", Name: "Ann", UserType: "coach",
	})
	require.NoError(t, err)
	require.Equal(t, "tok-1", resp.Token)
	require.Equal(t, "u1", resp.UserID())
	require.Equal(t, "coach", gotBody["userType"])
}

func TestHTTPClient_BearerAttachedIffTokenSet(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "u1", "email": "a@x.com"})
	})

	_, err := c.Profile(context.Background())
	require.NoError(t, err)
	require.Empty(t, gotAuth, "no header without a token")

	c.SetToken("tok-42")
	_, err = c.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-42", gotAuth)

	c.SetToken("")
	_, err = c.Profile(context.Background())
	require.NoError(t, err)
	require.Empty(t, gotAuth, "header detached after clearing the token")
}

func TestHTTPClient_Unauthorized_MapsToSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid token"})
	})

	_, err := c.Profile(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnauthorized))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "invalid token", apiErr.Message)
}

func TestHTTPClient_ServerMessageExtracted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Email already in use"})
	})

	_, err := c.Register(context.Background(), RegisterRequest{Email: "a@x.com"})
	require.Error(t, err)
	require.Equal(t, "Email already in use", ErrorMessage(err, "fallback"))
}

func TestHTTPClient_TransportFailure_IsUnavailable(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", 200*time.Millisecond)

	err := c.Ping(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnavailable))
	require.Equal(t, "Unable to reach the server. Please try again.", ErrorMessage(err, "fallback"))
}

func TestHTTPClient_VerifyOTP_ReturnsTempToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify-otp", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "OTP verified", "tempToken": "tmp-1"})
	})

	resp, err := c.VerifyOTP(context.Background(), "a@x.com", "123456")
	require.NoError(t, err)
	require.Equal(t, "tmp-1", resp.TempToken)
}

func TestErrorMessage_FallbackForOpaqueErrors(t *testing.T) {
	require.Equal(t, "fallback", ErrorMessage(errors.New("weird"), "fallback"))
}

func TestAuthResponse_UserID_LegacyAliases(t *testing.T) {
	require.Equal(t, "a", (&AuthResponse{ID: "a", UID: "b", LegacyID: "c"}).UserID())
	require.Equal(t, "b", (&AuthResponse{UID: "b", LegacyID: "c"}).UserID())
	require.Equal(t, "c", (&AuthResponse{LegacyID: "c"}).UserID())
}
