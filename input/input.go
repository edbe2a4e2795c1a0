package input

import "strings"

// Method is an HTTP request method such as "GET" or "POST".
type Method string

const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodOptions Method = "OPTIONS"
)

// Normalize returns the method in upper case.
func (m Method) Normalize() Method {
	return Method(strings.ToUpper(strings.TrimSpace(string(m))))
}

// IsBodyless reports whether requests with this method must not carry a body.
func (m Method) IsBodyless() bool {
	switch m.Normalize() {
	case MethodGet, MethodHead:
		return true
	default:
		return false
	}
}

// Options is the legacy AJAX-style option bag handed to the adapter.
type Options struct {
	URL         string                 `mapstructure:"url"`
	Type        Method                 `mapstructure:"type"`
	Data        map[string]interface{} `mapstructure:"data"`
	Headers     map[string]string      `mapstructure:"headers"`
	Body        string                 `mapstructure:"body"`
	Credentials string                 `mapstructure:"credentials"`
}

// Clone returns a copy of o whose maps can be modified without touching o.
// Data values are shared.
func (o *Options) Clone() *Options {
	if o == nil {
		return &Options{}
	}
	c := *o
	if o.Data != nil {
		c.Data = make(map[string]interface{}, len(o.Data))
		for k, v := range o.Data {
			c.Data[k] = v
		}
	}
	if o.Headers != nil {
		c.Headers = make(map[string]string, len(o.Headers))
		for k, v := range o.Headers {
			c.Headers[k] = v
		}
	}
	return &c
}

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined marks a data member that is present but has no value.
// JSON encoding drops object members holding it.
var Undefined interface{} = undefined{}

// IsUndefined reports whether v is Undefined.
func IsUndefined(v interface{}) bool {
	_, ok := v.(undefined)
	return ok
}
