package input

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	reMethod          = regexp.MustCompile(`^[a-zA-Z]+$`)
	reHeaderFieldName = regexp.MustCompile("^[-!#$%&'*+.^_|~a-zA-Z0-9]+$")
	reScheme          = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+-.]*://`)
	emptyMethod       = Method("")
)

type itemType int

const (
	unknownItem itemType = iota
	httpHeaderItem
	urlParameterItem
	dataFieldItem
	rawJSONFieldItem
)

type UsageError string

func (e *UsageError) Error() string {
	return string(*e)
}

func newUsageError(message string) error {
	u := UsageError(message)
	return errors.WithStack(&u)
}

// ArgOptions controls how command line arguments are interpreted.
type ArgOptions struct {
	ReadStdin bool
	// KeepRelativeURL leaves URLs such as "/widgets" untouched so that a
	// base URL can be applied later.
	KeepRelativeURL bool
}

// Request is a request described on the command line.
type Request struct {
	Method  Method
	URL     string
	Options Options
}

type state struct {
	stdinConsumed bool
}

func ParseArgs(args []string, stdin io.Reader, options *ArgOptions) (*Request, error) {
	var argMethod string
	var argURL string
	var argItems []string
	switch len(args) {
	case 0:
		return nil, newUsageError("URL is required")
	case 1:
		argURL = args[0]
	default:
		if reMethod.MatchString(args[0]) {
			argMethod = args[0]
			argURL = args[1]
			argItems = args[2:]
		} else {
			argURL = args[0]
			argItems = args[1:]
		}
	}

	req := Request{}
	state := state{}

	u, err := parseURL(argURL, options.KeepRelativeURL)
	if err != nil {
		return nil, err
	}

	var params url.Values
	for _, arg := range argItems {
		if err := parseItem(arg, stdin, &state, &req, &params); err != nil {
			return nil, err
		}
	}
	if len(params) > 0 {
		q, err := url.ParseQuery(u.RawQuery)
		if err != nil {
			return nil, errors.Wrap(err, "parsing query string")
		}
		for name, values := range params {
			for _, value := range values {
				q.Add(name, value)
			}
		}
		u.RawQuery = q.Encode()
	}
	req.URL = u.String()

	if options.ReadStdin && !state.stdinConsumed {
		if err := readStdinData(stdin, &req); err != nil {
			return nil, err
		}
	}

	if argMethod != "" {
		method, err := parseMethod(argMethod)
		if err != nil {
			return nil, err
		}
		req.Method = method
	} else {
		req.Method = guessMethod(&req)
	}
	req.Options.URL = req.URL
	req.Options.Type = req.Method

	return &req, nil
}

func readStdinData(stdin io.Reader, req *Request) error {
	b, err := ioutil.ReadAll(stdin)
	if err != nil {
		return errors.Wrap(err, "failed to read stdin")
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil
	}
	if req.Options.Data != nil {
		return errors.New("request data (from stdin) and request item (key=value) cannot be mixed")
	}
	var data map[string]interface{}
	if err := json.Unmarshal(b, &data); err != nil {
		return errors.Wrap(err, "stdin must contain a JSON object")
	}
	req.Options.Data = data
	return nil
}

func parseMethod(s string) (Method, error) {
	if !reMethod.MatchString(s) {
		return emptyMethod, errors.Errorf("METHOD must consist of alphabets: %s", s)
	}
	return Method(s).Normalize(), nil
}

func guessMethod(req *Request) Method {
	if req.Options.Data == nil {
		return MethodGet
	}
	return MethodPost
}

func parseURL(s string, keepRelative bool) (*url.URL, error) {
	defaultScheme := "http"
	defaultHost := "localhost"

	if keepRelative && strings.HasPrefix(s, "/") {
		u, err := url.Parse(s)
		if err != nil {
			return nil, newUsageError("Invalid URL: " + s)
		}
		return u, nil
	}

	// ex) :8080/hello or /hello
	if strings.HasPrefix(s, ":") || strings.HasPrefix(s, "/") {
		s = defaultHost + s
	}

	// ex) example.com/hello
	if !reScheme.MatchString(s) {
		s = defaultScheme + "://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, newUsageError("Invalid URL: " + s)
	}
	u.Host = strings.TrimSuffix(u.Host, ":")
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

func parseItem(s string, stdin io.Reader, state *state, req *Request, params *url.Values) error {
	itemType, name, value := splitItem(s)
	switch itemType {
	case dataFieldItem:
		v, err := resolveFieldValue(name, value, stdin, state)
		if err != nil {
			return err
		}
		setData(req, name, v)
	case rawJSONFieldItem:
		raw, err := resolveFieldValue(name, value, stdin, state)
		if err != nil {
			return err
		}
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return errors.Errorf("invalid JSON at '%s': %s", name, raw)
		}
		setData(req, name, v)
	case httpHeaderItem:
		if !isValidHeaderFieldName(name) {
			return errors.Errorf("invalid header field name: %s", name)
		}
		v, err := resolveFieldValue(name, value, stdin, state)
		if err != nil {
			return err
		}
		if req.Options.Headers == nil {
			req.Options.Headers = map[string]string{}
		}
		req.Options.Headers[name] = v
	case urlParameterItem:
		v, err := resolveFieldValue(name, value, stdin, state)
		if err != nil {
			return err
		}
		if *params == nil {
			*params = url.Values{}
		}
		params.Add(name, v)
	default:
		return errors.Errorf("unknown request item: %s", s)
	}
	return nil
}

func setData(req *Request, name string, value interface{}) {
	if req.Options.Data == nil {
		req.Options.Data = map[string]interface{}{}
	}
	req.Options.Data[name] = value
}

func splitItem(s string) (itemType, string, string) {
	for i, c := range s {
		switch c {
		case ':':
			if i+1 < len(s) && s[i+1] == '=' {
				return rawJSONFieldItem, s[:i], s[i+2:]
			} else {
				return httpHeaderItem, s[:i], s[i+1:]
			}
		case '=':
			if i+1 < len(s) && s[i+1] == '=' {
				return urlParameterItem, s[:i], s[i+2:]
			} else {
				return dataFieldItem, s[:i], s[i+1:]
			}
		}
	}
	return unknownItem, "", ""
}

func isValidHeaderFieldName(s string) bool {
	return reHeaderFieldName.MatchString(s)
}

// resolveFieldValue expands "@file" and "@-" (stdin) references.
func resolveFieldValue(name, value string, stdin io.Reader, state *state) (string, error) {
	if !strings.HasPrefix(value, "@") {
		return value, nil
	}
	if value[1:] == "-" {
		b, err := ioutil.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrapf(err, "reading stdin for '%s'", name)
		}
		state.stdinConsumed = true
		return string(b), nil
	}
	data, err := ioutil.ReadFile(value[1:])
	if err != nil {
		return "", errors.Wrapf(err, "reading field value of '%s'", name)
	}
	return string(data), nil
}
