package exchange

import (
	"strings"

	"github.com/nojima/restfetch/input"
	"github.com/pkg/errors"
)

// Credentials is the policy deciding whether cookies accompany a request.
type Credentials string

const (
	CredentialsOmit       Credentials = "omit"
	CredentialsSameOrigin Credentials = "same-origin"
	CredentialsInclude    Credentials = "include"
)

func ParseCredentials(s string) (Credentials, error) {
	switch c := Credentials(strings.ToLower(strings.TrimSpace(s))); c {
	case CredentialsOmit, CredentialsSameOrigin, CredentialsInclude:
		return c, nil
	case "":
		return CredentialsSameOrigin, nil
	default:
		return "", errors.Errorf("unknown credentials policy: %s", s)
	}
}

// Descriptor is a request ready to be handed to a Transport.
type Descriptor struct {
	URL         string
	Method      input.Method
	Headers     map[string]string
	Body        string
	Credentials Credentials
}

// RequestData identifies the request a response belongs to.
type RequestData struct {
	URL    string
	Method input.Method
}

type noContent struct{}

func (noContent) String() string { return "<no content>" }

// NoContent is the payload of a response that carried nothing to decode.
var NoContent interface{} = noContent{}

// IsNoContent reports whether payload is NoContent.
func IsNoContent(payload interface{}) bool {
	_, ok := payload.(noContent)
	return ok
}
