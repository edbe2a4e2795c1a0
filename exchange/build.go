package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/nojima/restfetch/input"
	"github.com/nojima/restfetch/version"
	"github.com/pkg/errors"
)

const defaultContentType = "application/json; charset=utf-8"

// MungeOptions turns a legacy option bag into a request descriptor.
// defaults are the adapter's headers; they overwrite caller headers with
// the same key.
func MungeOptions(options *input.Options, defaults map[string]string) (*Descriptor, error) {
	if options == nil {
		options = &input.Options{}
	}

	d := &Descriptor{
		URL:         options.URL,
		Body:        options.Body,
		Credentials: CredentialsSameOrigin,
		Headers:     make(map[string]string, len(options.Headers)+len(defaults)),
	}
	if options.Credentials != "" {
		d.Credentials = Credentials(options.Credentials)
	}
	for name, value := range options.Headers {
		d.Headers[name] = value
	}
	for name, value := range defaults {
		d.Headers[name] = value
	}

	d.Method = options.Type.Normalize()
	if d.Method == "" {
		d.Method = input.MethodGet
	}

	if options.Data != nil {
		if d.Method.IsBodyless() {
			if len(options.Data) > 0 {
				delimiter := "?"
				if strings.Contains(d.URL, "?") {
					delimiter = "&"
				}
				d.URL += delimiter + SerializeQueryParams(options.Data)
			}
		} else {
			body, err := encodeJSON(options.Data)
			if err != nil {
				return nil, err
			}
			d.Body = body
		}
	}

	if d.Method != input.MethodGet && d.Body != "" && !hasContentType(d.Headers) {
		d.Headers["Content-Type"] = defaultContentType
	}
	return d, nil
}

func hasContentType(headers map[string]string) bool {
	return headers["Content-Type"] != "" || headers["content-type"] != ""
}

func encodeJSON(data map[string]interface{}) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(dropUndefined(data)); err != nil {
		return "", errors.Wrap(err, "marshaling JSON of HTTP body")
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// dropUndefined removes Undefined members from objects and replaces
// Undefined array elements with null.
func dropUndefined(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, elem := range x {
			if input.IsUndefined(elem) {
				continue
			}
			out[k] = dropUndefined(elem)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, elem := range x {
			if input.IsUndefined(elem) {
				continue
			}
			out[i] = dropUndefined(elem)
		}
		return out
	default:
		return v
	}
}

// BuildHTTPRequest converts a descriptor into a request for u.
func BuildHTTPRequest(ctx context.Context, u *url.URL, d *Descriptor, options *Options) (*http.Request, error) {
	header := make(http.Header, len(d.Headers))
	for name, value := range d.Headers {
		header.Set(name, value)
	}
	if header.Get("User-Agent") == "" {
		header.Set("User-Agent", fmt.Sprintf("restfetch/%s", version.Current()))
	}

	r, err := http.NewRequestWithContext(ctx, string(d.Method), u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating HTTP request")
	}
	r.Header = header
	if host := header.Get("Host"); host != "" {
		r.Host = host
	}
	if d.Body != "" && !d.Method.IsBodyless() {
		body := []byte(d.Body)
		r.Body = ioutil.NopCloser(bytes.NewReader(body))
		r.GetBody = func() (io.ReadCloser, error) {
			return ioutil.NopCloser(bytes.NewReader(body)), nil
		}
		r.ContentLength = int64(len(body))
	}

	if options != nil && options.Auth.Enabled && header.Get("Authorization") == "" {
		r.SetBasicAuth(options.Auth.UserName, options.Auth.Password)
	}
	return r, nil
}
