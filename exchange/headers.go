package exchange

import "net/http"

// NormalizeHeaders flattens h into a plain map. When a header has several
// values the last one wins.
func NormalizeHeaders(h http.Header) map[string]string {
	m := make(map[string]string, len(h))
	for name, values := range h {
		for _, value := range values {
			m[name] = value
		}
	}
	return m
}
