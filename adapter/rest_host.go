package adapter

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nojima/restfetch/exchange"
)

const defaultMessagePrefix = "Request"

// RESTHost is a Host for conventional JSON REST APIs.
type RESTHost struct {
	DefaultHeaders map[string]string
	// MessagePrefix starts the detailed message of errors. Defaults to
	// "Request".
	MessagePrefix string
}

// Headers implements Host.
func (h *RESTHost) Headers() map[string]string {
	headers := make(map[string]string, len(h.DefaultHeaders))
	for name, value := range h.DefaultHeaders {
		headers[name] = value
	}
	return headers
}

// IsSuccess reports whether status is 2xx or 304.
func (h *RESTHost) IsSuccess(status int) bool {
	return (status >= 200 && status < 300) || status == 304
}

// IsInvalid reports whether status signals a validation failure.
func (h *RESTHost) IsInvalid(status int) bool {
	return status == 422
}

// HandleResponse implements Host.
func (h *RESTHost) HandleResponse(status int, headers map[string]string, payload interface{}, req exchange.RequestData) interface{} {
	if h.IsSuccess(status) {
		return payload
	}
	if h.IsInvalid(status) {
		return &AdapterError{
			Kind:    InvalidError,
			Status:  status,
			Errors:  payloadErrors(payload),
			Message: "The adapter rejected the commit because it was invalid",
			Payload: payload,
		}
	}
	return &AdapterError{
		Kind:    kindForStatus(status),
		Status:  status,
		Errors:  h.normalizeErrorResponse(status, payload),
		Message: h.detailedMessage(status, headers, payload, req),
		Payload: payload,
	}
}

// ParseErrorResponse implements Host. JSON text is decoded; anything else
// is returned unchanged.
func (h *RESTHost) ParseErrorResponse(payload interface{}) interface{} {
	s, ok := payload.(string)
	if !ok {
		return payload
	}
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return payload
	}
	return v
}

func payloadErrors(payload interface{}) []interface{} {
	m, ok := payload.(map[string]interface{})
	if !ok {
		return nil
	}
	errs, _ := m["errors"].([]interface{})
	return errs
}

func (h *RESTHost) normalizeErrorResponse(status int, payload interface{}) []interface{} {
	if errs := payloadErrors(payload); errs != nil {
		return errs
	}
	return []interface{}{
		map[string]interface{}{
			"status": strconv.Itoa(status),
			"title":  "The backend responded with an error",
			"detail": formatPayload(payload),
		},
	}
}

func (h *RESTHost) detailedMessage(status int, headers map[string]string, payload interface{}, req exchange.RequestData) string {
	contentType := headers["Content-Type"]
	if contentType == "" {
		contentType = headers["content-type"]
	}
	if contentType == "" {
		contentType = "Empty Content-Type"
	}
	prefix := h.MessagePrefix
	if prefix == "" {
		prefix = defaultMessagePrefix
	}
	return fmt.Sprintf("%s %s %s returned a %d\nPayload (%s)\n%s",
		prefix, req.Method, req.URL, status, contentType, formatPayload(payload))
}

func formatPayload(payload interface{}) string {
	if exchange.IsNoContent(payload) {
		return ""
	}
	switch p := payload.(type) {
	case nil:
		return ""
	case string:
		return p
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return fmt.Sprint(p)
		}
		return string(b)
	}
}
