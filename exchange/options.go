package exchange

import (
	"net/http"
	"time"
)

type Options struct {
	Timeout         time.Duration
	FollowRedirects bool
	Auth            AuthOptions
	SkipVerify      bool
	ForceHTTP1      bool
	// BaseURL is used to resolve relative request URLs and decides which
	// requests are same-origin.
	BaseURL string
	// Session enables a cookie jar shared by all requests of the transport.
	Session   bool
	Transport http.RoundTripper
}

type AuthOptions struct {
	Enabled  bool
	UserName string
	Password string
}
