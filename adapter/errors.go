package adapter

import (
	"fmt"

	"github.com/nojima/restfetch/exchange"
)

// adapterError is implemented by values a Host returns to signal failure.
type adapterError interface {
	error
	IsAdapterError() bool
}

func asAdapterError(v interface{}) (adapterError, bool) {
	e, ok := v.(adapterError)
	if !ok || !e.IsAdapterError() {
		return nil, false
	}
	return e, true
}

type ErrorKind int

const (
	GenericError ErrorKind = iota
	InvalidError
	UnauthorizedError
	ForbiddenError
	NotFoundError
	ConflictError
	ServerError
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidError:
		return "InvalidError"
	case UnauthorizedError:
		return "UnauthorizedError"
	case ForbiddenError:
		return "ForbiddenError"
	case NotFoundError:
		return "NotFoundError"
	case ConflictError:
		return "ConflictError"
	case ServerError:
		return "ServerError"
	default:
		return "AdapterError"
	}
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == 401:
		return UnauthorizedError
	case status == 403:
		return ForbiddenError
	case status == 404:
		return NotFoundError
	case status == 409:
		return ConflictError
	case status >= 500:
		return ServerError
	default:
		return GenericError
	}
}

// AdapterError is a failed request as classified by RESTHost.
type AdapterError struct {
	Kind    ErrorKind
	Status  int
	Errors  []interface{}
	Message string
	Payload interface{}
}

func (e *AdapterError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: the adapter operation failed", e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AdapterError) IsAdapterError() bool {
	return true
}

// ResponseError wraps a non-error value a Host produced for a failed
// response.
type ResponseError struct {
	Status  int
	Request exchange.RequestData
	Payload interface{}
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s %s returned a %d: %v", e.Request.Method, e.Request.URL, e.Status, e.Payload)
}
