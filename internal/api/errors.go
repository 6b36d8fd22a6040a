package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a transport failure.
type Kind int

const (
	// KindNetwork is a connection level failure.
	KindNetwork Kind = iota + 1
	// KindTimeout means the request exceeded the client timeout.
	KindTimeout
	// KindStatus is a non-2xx response from the server.
	KindStatus
	// KindDecode means a 2xx response body could not be parsed.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// ErrorBody is the structured error payload the API sends with non-2xx
// responses.
type ErrorBody struct {
	Erro     string `json:"erro"`
	Mensagem string `json:"mensagem"`
}

// Error is returned by every Client call that does not succeed.
type Error struct {
	Kind   Kind
	Method string
	Path   string
	Status int
	Body   ErrorBody
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		msg := e.Body.Mensagem
		if e.Body.Erro != "" {
			msg = e.Body.Erro
		}
		if msg == "" {
			msg = http.StatusText(e.Status)
		}
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, msg)
	default:
		return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Path, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status of err, or 0 when err carries none.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindStatus {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsTimeout reports whether err is a client-side timeout.
func IsTimeout(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindTimeout
}

// messenger is implemented by local errors whose text is meant for the
// user as is.
type messenger interface {
	UserMessage() string
}

// UserMessage converts err into text for the user. Server supplied text is
// preferred: when the body carries "mensagem", "erro" wins if present,
// otherwise "mensagem" is used. Every other failure yields fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var local messenger
	if errors.As(err, &local) {
		return local.UserMessage()
	}

	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindStatus && apiErr.Body.Mensagem != "" {
		if apiErr.Body.Erro != "" {
			return apiErr.Body.Erro
		}
		return apiErr.Body.Mensagem
	}

	return fallback
}

// ResponseMessage is the looser rule of the login form: any status error
// body yields "erro", then "mensagem". Every other failure, or a body with
// neither, yields fallback.
func ResponseMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindStatus {
		if apiErr.Body.Erro != "" {
			return apiErr.Body.Erro
		}
		if apiErr.Body.Mensagem != "" {
			return apiErr.Body.Mensagem
		}
	}
	return UserMessage(err, fallback)
}
