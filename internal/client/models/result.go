package models

// Result is the tagged outcome returned by every public client operation.
// Operations never raise past their boundary: remote, validation, and
// storage failures all surface as Success=false with a human-readable
// Error message.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Ok builds a successful result carrying data.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// OkMsg builds a successful result carrying data and an informational
// message (e.g. the server's confirmation text).
func OkMsg[T any](data T, msg string) Result[T] {
	return Result[T]{Success: true, Data: data, Message: msg}
}

// Fail builds a failed result with the given error message.
func Fail[T any](errMsg string) Result[T] {
	return Result[T]{Error: errMsg}
}
