// Package api contains the client-side contract for the FitLife identity
// API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     registration, login, the password-reset flow (request OTP, verify OTP,
//     complete reset), profile read/update, and the optional photo-upload
//     presign call.
//  2. A concrete HTTP/JSON implementation (see HTTPClient) that attaches the
//     bearer token to outgoing requests whenever one is set, extracts the
//     server's {message} error body, and maps common conditions to sentinel
//     errors.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable (transport failure) and ErrUnauthorized
// (HTTP 401). Other non-2xx responses are returned as *APIError carrying the
// status code and the server message.
package api
