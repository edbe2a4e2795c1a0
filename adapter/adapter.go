// Package adapter issues data-layer requests through a fetch-style
// Transport and classifies the outcome through a Host.
package adapter

import (
	"context"
	"net/http"

	"github.com/nojima/restfetch/exchange"
	"github.com/nojima/restfetch/input"
	"github.com/sirupsen/logrus"
)

// Host is the data adapter the exchange is performed for.
type Host interface {
	// HandleResponse turns a status, headers and payload into the value
	// returned to the caller. A result that reports IsAdapterError() is
	// treated as a failure even for 2xx responses.
	HandleResponse(status int, headers map[string]string, payload interface{}, req exchange.RequestData) interface{}

	// ParseErrorResponse refines an error payload. It returns nil when it
	// has nothing better to offer.
	ParseErrorResponse(payload interface{}) interface{}

	// Headers returns the headers sent with every request.
	Headers() map[string]string
}

// ErrorPayloadFunc picks the value handed to Host.ParseErrorResponse for
// a failed response.
type ErrorPayloadFunc func(resp *http.Response, payload interface{}) interface{}

// Adapter performs requests for a Host. The zero value is not usable; set
// Host and Transport, or use New.
type Adapter struct {
	Host      Host
	Transport exchange.Transport

	// ErrorPayload defaults to DefaultErrorPayload.
	ErrorPayload ErrorPayloadFunc

	// Logger defaults to the logrus standard logger.
	Logger logrus.FieldLogger
}

func New(host Host, transport exchange.Transport, logger logrus.FieldLogger) *Adapter {
	return &Adapter{
		Host:      host,
		Transport: transport,
		Logger:    logger,
	}
}

// AjaxOptions builds the request descriptor for url and method. options is
// not modified.
func (a *Adapter) AjaxOptions(url string, method input.Method, options *input.Options) (*exchange.Descriptor, error) {
	o := options.Clone()
	o.URL = url
	o.Type = method
	return exchange.MungeOptions(o, a.Host.Headers())
}

// Ajax performs one request and returns the payload produced by the Host.
//
// Transport errors are returned unchanged. Failed responses, and successful
// ones the Host flags as errors, are returned as errors built by AjaxError
// and AjaxSuccess.
func (a *Adapter) Ajax(ctx context.Context, url string, method input.Method, options *input.Options) (interface{}, error) {
	req := exchange.RequestData{URL: url, Method: method.Normalize()}
	d, err := a.AjaxOptions(url, method, options)
	if err != nil {
		return nil, err
	}

	resp, err := a.AjaxRequest(ctx, d)
	if err != nil {
		return nil, a.AjaxError(nil, nil, req, err)
	}

	payload, err := exchange.ResolveBody(resp, req, a.logger())
	if err != nil {
		return nil, err
	}

	if exchange.IsOK(resp) {
		return a.AjaxSuccess(resp, payload, req)
	}
	return nil, a.AjaxError(resp, payload, req, nil)
}

// AjaxRequest hands d to the Transport.
func (a *Adapter) AjaxRequest(ctx context.Context, d *exchange.Descriptor) (*http.Response, error) {
	return a.Transport.Fetch(ctx, d.URL, d)
}

// AjaxSuccess classifies a 2xx response through the Host.
func (a *Adapter) AjaxSuccess(resp *http.Response, payload interface{}, req exchange.RequestData) (interface{}, error) {
	result := a.Host.HandleResponse(resp.StatusCode, exchange.NormalizeHeaders(resp.Header), payload, req)
	if e, ok := asAdapterError(result); ok {
		return nil, e
	}
	return result, nil
}

// AjaxError builds the error for a failed exchange. A non-nil err is
// returned as is. When the Host cannot refine the error payload, the raw
// payload is handed to HandleResponse.
func (a *Adapter) AjaxError(resp *http.Response, payload interface{}, req exchange.RequestData, err error) error {
	if err != nil {
		return err
	}

	selectPayload := a.ErrorPayload
	if selectPayload == nil {
		selectPayload = DefaultErrorPayload
	}
	parsed := selectPayload(resp, payload)
	refined := a.Host.ParseErrorResponse(parsed)
	if refined == nil {
		refined = payload
	}

	result := a.Host.HandleResponse(resp.StatusCode, exchange.NormalizeHeaders(resp.Header), refined, req)
	if e, ok := result.(error); ok {
		return e
	}
	return &ResponseError{
		Status:  resp.StatusCode,
		Request: req,
		Payload: result,
	}
}

// DefaultErrorPayload returns payload when it carries something, and the
// status text of resp otherwise.
func DefaultErrorPayload(resp *http.Response, payload interface{}) interface{} {
	if isBlank(payload) {
		return exchange.StatusText(resp)
	}
	return payload
}

// isBlank reports whether v is a falsy JSON value: null, false, 0 or "".
func isBlank(v interface{}) bool {
	if v == nil || exchange.IsNoContent(v) {
		return true
	}
	switch x := v.(type) {
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	}
	return false
}

func (a *Adapter) logger() logrus.FieldLogger {
	if a.Logger == nil {
		return logrus.StandardLogger()
	}
	return a.Logger
}
