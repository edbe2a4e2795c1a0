package exchange

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/nojima/restfetch/input"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// IsOK reports whether resp has a 2xx status.
func IsOK(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// StatusText returns the reason phrase of resp, e.g. "Not Found".
func StatusText(resp *http.Response) string {
	if i := strings.IndexByte(resp.Status, ' '); i >= 0 {
		return resp.Status[i+1:]
	}
	return http.StatusText(resp.StatusCode)
}

// ResolveBody reads and closes the body of resp and decodes it as JSON.
//
// A body that is not JSON yields NoContent for successful 204 and 205
// responses and for HEAD requests, and the raw text otherwise. Errors
// other than malformed JSON are returned.
func ResolveBody(resp *http.Response, req RequestData, logger logrus.FieldLogger) (interface{}, error) {
	var text []byte
	if resp.Body != nil {
		defer resp.Body.Close()
		b, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "reading response body")
		}
		text = b
	}

	var payload interface{}
	err := json.Unmarshal(text, &payload)
	if err == nil {
		return payload, nil
	}
	if _, ok := err.(*json.SyntaxError); !ok {
		return nil, errors.Wrap(err, "parsing response body as JSON")
	}

	status := resp.StatusCode
	if IsOK(resp) && (status == http.StatusNoContent || status == http.StatusResetContent || req.Method.Normalize() == input.MethodHead) {
		return NoContent, nil
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithFields(logrus.Fields{
		"url":    req.URL,
		"method": req.Method,
		"status": status,
	}).Warn("response body could not be parsed as JSON")
	return string(text), nil
}
