package input

import (
	"io/ioutil"
	"net/url"
	"os"
	"reflect"
	"strings"
	"testing"
)

func TestParseArgs(t *testing.T) {
	testCases := []struct {
		title           string
		args            []string
		stdin           string
		options         ArgOptions
		expectedRequest *Request
		shouldBeError   bool
	}{
		{
			title: "Happy case",
			args:  []string{"GET", "http://example.com/hello"},
			expectedRequest: &Request{
				Method: MethodGet,
				URL:    "http://example.com/hello",
				Options: Options{
					URL:  "http://example.com/hello",
					Type: MethodGet,
				},
			},
		},
		{
			title: "Lower-case method",
			args:  []string{"delete", "http://example.com/widgets/1"},
			expectedRequest: &Request{
				Method: MethodDelete,
				URL:    "http://example.com/widgets/1",
				Options: Options{
					URL:  "http://example.com/widgets/1",
					Type: MethodDelete,
				},
			},
		},
		{
			title: "Method guessed from data",
			args:  []string{"example.com/widgets", "name=a", "count:=3", "X-Token:abc"},
			expectedRequest: &Request{
				Method: MethodPost,
				URL:    "http://example.com/widgets",
				Options: Options{
					URL:     "http://example.com/widgets",
					Type:    MethodPost,
					Data:    map[string]interface{}{"name": "a", "count": float64(3)},
					Headers: map[string]string{"X-Token": "abc"},
				},
			},
		},
		{
			title: "URL parameters are merged into query string",
			args:  []string{"GET", "http://example.com/widgets?page=2", "sort==id"},
			expectedRequest: &Request{
				Method: MethodGet,
				URL:    "http://example.com/widgets?page=2&sort=id",
				Options: Options{
					URL:  "http://example.com/widgets?page=2&sort=id",
					Type: MethodGet,
				},
			},
		},
		{
			title:   "Relative URL kept",
			args:    []string{"/widgets"},
			options: ArgOptions{KeepRelativeURL: true},
			expectedRequest: &Request{
				Method: MethodGet,
				URL:    "/widgets",
				Options: Options{
					URL:  "/widgets",
					Type: MethodGet,
				},
			},
		},
		{
			title:   "Data from stdin",
			args:    []string{"PUT", "http://example.com/widgets/1"},
			stdin:   `{"name": "b"}`,
			options: ArgOptions{ReadStdin: true},
			expectedRequest: &Request{
				Method: MethodPut,
				URL:    "http://example.com/widgets/1",
				Options: Options{
					URL:  "http://example.com/widgets/1",
					Type: MethodPut,
					Data: map[string]interface{}{"name": "b"},
				},
			},
		},
		{
			title:         "Stdin mixed with data items",
			args:          []string{"PUT", "http://example.com/widgets/1", "name=a"},
			stdin:         `{"name": "b"}`,
			options:       ArgOptions{ReadStdin: true},
			shouldBeError: true,
		},
		{
			title:         "Stdin is not an object",
			args:          []string{"PUT", "http://example.com/widgets/1"},
			stdin:         `[1, 2]`,
			options:       ArgOptions{ReadStdin: true},
			shouldBeError: true,
		},
		{
			title:         "Invalid method",
			args:          []string{"GET/POST", "http://example.com/hello"},
			shouldBeError: true,
		},
		{
			title:         "URL missing",
			args:          []string{},
			shouldBeError: true,
		},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			options := tt.options
			request, err := ParseArgs(tt.args, strings.NewReader(tt.stdin), &options)
			if (err != nil) != tt.shouldBeError {
				t.Fatalf("unexpected error: shouldBeError=%v, err=%v", tt.shouldBeError, err)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(request, tt.expectedRequest) {
				t.Errorf("unexpected request: expected=%+v, actual=%+v", tt.expectedRequest, request)
			}
		})
	}
}

func makeTempFile(t *testing.T, content string) string {
	tmpfile, err := ioutil.TempFile("", "restfetch-test-")
	if err != nil {
		t.Fatalf("failed to create temporary file: %v", err)
	}
	defer tmpfile.Close()
	if _, err := tmpfile.Write([]byte(content)); err != nil {
		os.Remove(tmpfile.Name())
		t.Fatalf("failed to write to temporary file: %v", err)
	}
	return tmpfile.Name()
}

func TestParseItem(t *testing.T) {
	fileName := makeTempFile(t, "from file")
	defer os.Remove(fileName)

	testCases := []struct {
		title              string
		input              string
		expectedData       map[string]interface{}
		expectedHeaders    map[string]string
		expectedParameters url.Values
		shouldBeError      bool
	}{
		{
			title:        "Data field",
			input:        "hello=world",
			expectedData: map[string]interface{}{"hello": "world"},
		},
		{
			title:        "Data field with empty value",
			input:        "hello=",
			expectedData: map[string]interface{}{"hello": ""},
		},
		{
			title:        "Data field from file",
			input:        "hello=@" + fileName,
			expectedData: map[string]interface{}{"hello": "from file"},
		},
		{
			title:        "Raw JSON field",
			input:        `hello:=[1, true, "world"]`,
			expectedData: map[string]interface{}{"hello": []interface{}{float64(1), true, "world"}},
		},
		{
			title:         "Raw JSON field with invalid JSON",
			input:         `hello:={invalid: JSON}`,
			shouldBeError: true,
		},
		{
			title:           "Header field",
			input:           "X-Example:Sample Value",
			expectedHeaders: map[string]string{"X-Example": "Sample Value"},
		},
		{
			title:           "Header field with empty value",
			input:           "X-Example:",
			expectedHeaders: map[string]string{"X-Example": ""},
		},
		{
			title:         "Invalid header field name",
			input:         `Bad"header":test`,
			shouldBeError: true,
		},
		{
			title:              "URL parameter",
			input:              "hello==world",
			expectedParameters: url.Values{"hello": []string{"world"}},
		},
		{
			title:         "Unknown item",
			input:         "hello",
			shouldBeError: true,
		},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			request := Request{}
			var params url.Values
			err := parseItem(tt.input, strings.NewReader(""), &state{}, &request, &params)
			if (err != nil) != tt.shouldBeError {
				t.Fatalf("unexpected error: shouldBeError=%v, err=%v", tt.shouldBeError, err)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(request.Options.Data, tt.expectedData) {
				t.Errorf("unexpected data: expected=%+v, actual=%+v", tt.expectedData, request.Options.Data)
			}
			if !reflect.DeepEqual(request.Options.Headers, tt.expectedHeaders) {
				t.Errorf("unexpected headers: expected=%+v, actual=%+v", tt.expectedHeaders, request.Options.Headers)
			}
			if !reflect.DeepEqual(params, tt.expectedParameters) {
				t.Errorf("unexpected parameters: expected=%+v, actual=%+v", tt.expectedParameters, params)
			}
		})
	}
}

func TestParseURL(t *testing.T) {
	testCases := []struct {
		title    string
		input    string
		expected url.URL
	}{
		{
			title: "Typical case",
			input: "http://example.com/hello/world",
			expected: url.URL{
				Scheme: "http",
				Host:   "example.com",
				Path:   "/hello/world",
			},
		},
		{
			title: "No scheme",
			input: "example.com/hello/world",
			expected: url.URL{
				Scheme: "http",
				Host:   "example.com",
				Path:   "/hello/world",
			},
		},
		{
			title: "No host and port",
			input: "/hello/world",
			expected: url.URL{
				Scheme: "http",
				Host:   "localhost",
				Path:   "/hello/world",
			},
		},
		{
			title: "No host but has port",
			input: ":8080/hello/world",
			expected: url.URL{
				Scheme: "http",
				Host:   "localhost:8080",
				Path:   "/hello/world",
			},
		},
		{
			title: "Has query parameters",
			input: "http://example.com/?q=hello&lang=ja",
			expected: url.URL{
				Scheme:   "http",
				Host:     "example.com",
				Path:     "/",
				RawQuery: "q=hello&lang=ja",
			},
		},
		{
			title: "No path",
			input: "https://example.com",
			expected: url.URL{
				Scheme: "https",
				Host:   "example.com",
				Path:   "/",
			},
		},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			u, err := parseURL(tt.input, false)
			if err != nil {
				t.Fatalf("unexpected error: err=%v", err)
			}
			if !reflect.DeepEqual(*u, tt.expected) {
				t.Errorf("unexpected result: expected=%+v, actual=%+v", tt.expected, *u)
			}
		})
	}
}
