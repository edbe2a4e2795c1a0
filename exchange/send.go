package exchange

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Transport sends a request descriptor and returns the response.
type Transport interface {
	Fetch(ctx context.Context, url string, d *Descriptor) (*http.Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, url string, d *Descriptor) (*http.Response, error)

func (f TransportFunc) Fetch(ctx context.Context, url string, d *Descriptor) (*http.Response, error) {
	return f(ctx, url, d)
}

// HTTPTransport is a Transport backed by net/http.
type HTTPTransport struct {
	client  *http.Client
	options *Options
	baseURL *url.URL
	logger  logrus.FieldLogger
}

func NewHTTPTransport(options *Options, logger logrus.FieldLogger) (*HTTPTransport, error) {
	if options == nil {
		options = &Options{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	client, err := BuildHTTPClient(options)
	if err != nil {
		return nil, err
	}

	t := &HTTPTransport{
		client:  client,
		options: options,
		logger:  logger.WithField("component", "transport"),
	}
	if options.BaseURL != "" {
		u, err := url.Parse(options.BaseURL)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing base URL '%s'", options.BaseURL)
		}
		if !u.IsAbs() {
			return nil, errors.Errorf("base URL must be absolute: %s", options.BaseURL)
		}
		t.baseURL = u
	}
	return t, nil
}

// Fetch implements Transport.
func (t *HTTPTransport) Fetch(ctx context.Context, rawurl string, d *Descriptor) (*http.Response, error) {
	u, err := t.resolveURL(rawurl)
	if err != nil {
		return nil, err
	}
	r, err := BuildHTTPRequest(ctx, u, d, t.options)
	if err != nil {
		return nil, err
	}

	t.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"url":    u.String(),
	}).Debug("sending HTTP request")

	resp, err := t.clientFor(u, d.Credentials).Do(r)
	if err != nil {
		return nil, errors.Wrap(err, "sending HTTP request")
	}

	t.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"url":    u.String(),
		"status": resp.StatusCode,
	}).Debug("received HTTP response")
	return resp, nil
}

func (t *HTTPTransport) resolveURL(rawurl string) (*url.URL, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing URL '%s'", rawurl)
	}
	if t.baseURL != nil {
		u = t.baseURL.ResolveReference(u)
	}
	if !u.IsAbs() {
		return nil, errors.Errorf("relative URL requires a base URL: %s", rawurl)
	}
	return u, nil
}

// clientFor returns a client that sends cookies only when the credential
// policy allows it for u.
func (t *HTTPTransport) clientFor(u *url.URL, credentials Credentials) *http.Client {
	if t.client.Jar == nil {
		return t.client
	}
	switch credentials {
	case CredentialsInclude:
		return t.client
	case CredentialsOmit:
		return t.withoutJar()
	default:
		if t.isSameOrigin(u) {
			return t.client
		}
		return t.withoutJar()
	}
}

// Without a base URL there is no origin to compare against and every
// request counts as same-origin.
func (t *HTTPTransport) isSameOrigin(u *url.URL) bool {
	if t.baseURL == nil {
		return true
	}
	return strings.EqualFold(t.baseURL.Scheme, u.Scheme) && strings.EqualFold(t.baseURL.Host, u.Host)
}

func (t *HTTPTransport) withoutJar() *http.Client {
	c := *t.client
	c.Jar = nil
	return &c
}

func (t *HTTPTransport) HTTPClient() *http.Client {
	return t.client
}
