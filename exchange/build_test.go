package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nojima/restfetch/input"
	"github.com/nojima/restfetch/version"
)

func parseURL(t *testing.T, rawurl string) *url.URL {
	u, err := url.Parse(rawurl)
	if err != nil {
		t.Fatalf("failed to parse URL: %s", err)
	}
	return u
}

func isEquivalentJSON(t *testing.T, json1, json2 string) bool {
	var obj1, obj2 interface{}
	if err := json.Unmarshal([]byte(json1), &obj1); err != nil {
		t.Fatalf("failed to unmarshal json1: %v", err)
	}
	if err := json.Unmarshal([]byte(json2), &obj2); err != nil {
		t.Fatalf("failed to unmarshal json2: %v", err)
	}
	return reflect.DeepEqual(obj1, obj2)
}

func readAll(t *testing.T, reader io.Reader) string {
	b, err := ioutil.ReadAll(reader)
	if err != nil {
		t.Fatalf("failed to read all: %s", err)
	}
	return string(b)
}

func TestMungeOptions_PostWithData(t *testing.T) {
	// Setup
	options := &input.Options{
		URL:  "/widgets",
		Type: input.MethodPost,
		Data: map[string]interface{}{"name": "a"},
	}

	// Exercise
	d, err := MungeOptions(options, nil)
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}

	// Verify
	expected := &Descriptor{
		URL:         "/widgets",
		Method:      input.MethodPost,
		Headers:     map[string]string{"Content-Type": "application/json; charset=utf-8"},
		Body:        `{"name":"a"}`,
		Credentials: CredentialsSameOrigin,
	}
	if diff := cmp.Diff(expected, d); diff != "" {
		t.Errorf("unexpected descriptor (-expected +actual):\n%s", diff)
	}
}

func TestMungeOptions_GetWithData(t *testing.T) {
	// Setup
	options := &input.Options{
		URL:  "/widgets?page=2",
		Type: input.MethodGet,
		Data: map[string]interface{}{"sort": "id"},
	}

	// Exercise
	d, err := MungeOptions(options, nil)
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}

	// Verify
	if d.URL != "/widgets?page=2&sort=id" {
		t.Errorf("unexpected URL: expected=%s, actual=%s", "/widgets?page=2&sort=id", d.URL)
	}
	if d.Body != "" {
		t.Errorf("unexpected body: %s", d.Body)
	}
	if _, ok := d.Headers["Content-Type"]; ok {
		t.Errorf("unexpected content type: %v", d.Headers)
	}
}

func TestMungeOptions_Data(t *testing.T) {
	testCases := []struct {
		title        string
		url          string
		method       input.Method
		data         map[string]interface{}
		expectedURL  string
		expectedBody string
	}{
		{
			title:       "GET appends query string with '?'",
			url:         "/widgets",
			method:      input.MethodGet,
			data:        map[string]interface{}{"sort": "id", "page": float64(2)},
			expectedURL: "/widgets?page=2&sort=id",
		},
		{
			title:       "HEAD appends query string",
			url:         "/widgets?a=1",
			method:      input.MethodHead,
			data:        map[string]interface{}{"b": "2"},
			expectedURL: "/widgets?a=1&b=2",
		},
		{
			title:       "Empty data leaves GET URL alone",
			url:         "/widgets",
			method:      input.MethodGet,
			data:        map[string]interface{}{},
			expectedURL: "/widgets",
		},
		{
			title:       "Empty data leaves HEAD URL alone",
			url:         "/widgets?x=1",
			method:      input.MethodHead,
			data:        map[string]interface{}{},
			expectedURL: "/widgets?x=1",
		},
		{
			title:        "Method defaults to GET",
			url:          "/widgets",
			data:         map[string]interface{}{"q": "hello world"},
			expectedURL:  "/widgets?q=hello+world",
			expectedBody: "",
		},
		{
			title:        "PUT encodes data as JSON body",
			url:          "/widgets/1?x=1",
			method:       input.MethodPut,
			data:         map[string]interface{}{"name": "a", "tags": []interface{}{"x", "y"}},
			expectedURL:  "/widgets/1?x=1",
			expectedBody: `{"name":"a","tags":["x","y"]}`,
		},
		{
			title:        "Undefined members are dropped",
			url:          "/widgets/1",
			method:       input.MethodPatch,
			data:         map[string]interface{}{"name": "a", "gone": input.Undefined, "nested": map[string]interface{}{"gone": input.Undefined}},
			expectedURL:  "/widgets/1",
			expectedBody: `{"name":"a","nested":{}}`,
		},
		{
			title:        "Undefined array elements become null",
			url:          "/widgets",
			method:       input.MethodPost,
			data:         map[string]interface{}{"list": []interface{}{1, input.Undefined}},
			expectedURL:  "/widgets",
			expectedBody: `{"list":[1,null]}`,
		},
		{
			title:        "HTML characters are not escaped",
			url:          "/widgets",
			method:       input.MethodPost,
			data:         map[string]interface{}{"html": "<b>&</b>"},
			expectedURL:  "/widgets",
			expectedBody: `{"html":"<b>&</b>"}`,
		},
		{
			title:        "Empty data on DELETE is still encoded",
			url:          "/widgets/1",
			method:       input.MethodDelete,
			data:         map[string]interface{}{},
			expectedURL:  "/widgets/1",
			expectedBody: `{}`,
		},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			d, err := MungeOptions(&input.Options{URL: tt.url, Type: tt.method, Data: tt.data}, nil)
			if err != nil {
				t.Fatalf("unexpected error: err=%+v", err)
			}
			if d.URL != tt.expectedURL {
				t.Errorf("unexpected URL: expected=%s, actual=%s", tt.expectedURL, d.URL)
			}
			if d.Body != tt.expectedBody {
				t.Errorf("unexpected body: expected=%s, actual=%s", tt.expectedBody, d.Body)
			}
		})
	}
}

func TestMungeOptions_ContentType(t *testing.T) {
	testCases := []struct {
		title           string
		method          input.Method
		headers         map[string]string
		body            string
		expectedHeaders map[string]string
	}{
		{
			title:           "Default content type is set",
			method:          input.MethodPost,
			body:            `{"a":1}`,
			expectedHeaders: map[string]string{"Content-Type": "application/json; charset=utf-8"},
		},
		{
			title:           "Existing Content-Type is kept",
			method:          input.MethodPost,
			headers:         map[string]string{"Content-Type": "application/vnd.api+json"},
			body:            `{"a":1}`,
			expectedHeaders: map[string]string{"Content-Type": "application/vnd.api+json"},
		},
		{
			title:           "Existing lower-case content-type is kept",
			method:          input.MethodPut,
			headers:         map[string]string{"content-type": "text/plain"},
			body:            "hello",
			expectedHeaders: map[string]string{"content-type": "text/plain"},
		},
		{
			title:           "No body, no content type",
			method:          input.MethodDelete,
			expectedHeaders: map[string]string{},
		},
		{
			title:           "GET never gets a content type",
			method:          input.MethodGet,
			body:            "ignored",
			expectedHeaders: map[string]string{},
		},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			d, err := MungeOptions(&input.Options{URL: "/x", Type: tt.method, Headers: tt.headers, Body: tt.body}, nil)
			if err != nil {
				t.Fatalf("unexpected error: err=%+v", err)
			}
			if diff := cmp.Diff(tt.expectedHeaders, d.Headers); diff != "" {
				t.Errorf("unexpected headers (-expected +actual):\n%s", diff)
			}
		})
	}
}

func TestMungeOptions_HeaderPrecedence(t *testing.T) {
	// Setup
	options := &input.Options{
		URL:     "/widgets",
		Headers: map[string]string{"X-Caller": "caller", "X-Shared": "caller"},
	}
	defaults := map[string]string{"X-Adapter": "adapter", "X-Shared": "adapter"}

	// Exercise
	d, err := MungeOptions(options, defaults)
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}

	// Verify
	expected := map[string]string{
		"X-Caller":  "caller",
		"X-Adapter": "adapter",
		"X-Shared":  "adapter",
	}
	if diff := cmp.Diff(expected, d.Headers); diff != "" {
		t.Errorf("unexpected headers (-expected +actual):\n%s", diff)
	}
	if len(options.Headers) != 2 {
		t.Errorf("caller headers were modified: %v", options.Headers)
	}
}

func TestMungeOptions_Credentials(t *testing.T) {
	d, err := MungeOptions(&input.Options{URL: "/x"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}
	if d.Credentials != CredentialsSameOrigin {
		t.Errorf("unexpected credentials: expected=%s, actual=%s", CredentialsSameOrigin, d.Credentials)
	}

	d, err = MungeOptions(&input.Options{URL: "/x", Credentials: "include"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}
	if d.Credentials != CredentialsInclude {
		t.Errorf("unexpected credentials: expected=%s, actual=%s", CredentialsInclude, d.Credentials)
	}
}

func TestMungeOptions_UnencodableData(t *testing.T) {
	_, err := MungeOptions(&input.Options{URL: "/x", Type: input.MethodPost, Data: map[string]interface{}{"ch": make(chan int)}}, nil)
	if err == nil {
		t.Errorf("expected error for unencodable data")
	}
}

func TestBuildHTTPRequest(t *testing.T) {
	// Setup
	d := &Descriptor{
		URL:    "/foo",
		Method: input.MethodPost,
		Headers: map[string]string{
			"X-Foo":        "fizz buzz",
			"Host":         "example.com:8080",
			"content-type": "application/json; charset=utf-8",
		},
		Body:        `{"hoge":"fuga"}`,
		Credentials: CredentialsSameOrigin,
	}
	options := Options{
		Auth: AuthOptions{
			Enabled:  true,
			UserName: "alice",
			Password: "open sesame",
		},
	}

	// Exercise
	actual, err := BuildHTTPRequest(context.Background(), parseURL(t, "https://localhost:4000/foo"), d, &options)
	if err != nil {
		t.Fatalf("unexpected error: err=%v", err)
	}

	// Verify
	if actual.Method != "POST" {
		t.Errorf("unexpected method: expected=%v, actual=%v", "POST", actual.Method)
	}
	expectedURL := "https://localhost:4000/foo"
	if actual.URL.String() != expectedURL {
		t.Errorf("unexpected URL: expected=%v, actual=%v", expectedURL, actual.URL)
	}
	expectedHeader := http.Header{
		"X-Foo":         []string{"fizz buzz"},
		"Content-Type":  []string{"application/json; charset=utf-8"},
		"User-Agent":    []string{fmt.Sprintf("restfetch/%s", version.Current())},
		"Host":          []string{"example.com:8080"},
		"Authorization": []string{"Basic YWxpY2U6b3BlbiBzZXNhbWU="},
	}
	if !reflect.DeepEqual(expectedHeader, actual.Header) {
		t.Errorf("unexpected header: expected=%v, actual=%v", expectedHeader, actual.Header)
	}
	expectedHost := "example.com:8080"
	if actual.Host != expectedHost {
		t.Errorf("unexpected host: expected=%v, actual=%v", expectedHost, actual.Host)
	}
	actualBody := readAll(t, actual.Body)
	if !isEquivalentJSON(t, d.Body, actualBody) {
		t.Errorf("unexpected body: expected=%v, actual=%v", d.Body, actualBody)
	}
	if actual.ContentLength != int64(len(actualBody)) {
		t.Errorf("invalid content length: len(body)=%v, actual=%v", len(actualBody), actual.ContentLength)
	}
}

func TestBuildHTTPRequest_BodylessMethod(t *testing.T) {
	d := &Descriptor{
		Method:  input.MethodHead,
		Headers: map[string]string{},
		Body:    "should not be sent",
	}
	r, err := BuildHTTPRequest(context.Background(), parseURL(t, "http://example.com/"), d, nil)
	if err != nil {
		t.Fatalf("unexpected error: err=%v", err)
	}
	if r.Body != nil && r.Body != http.NoBody {
		t.Errorf("unexpected body on HEAD request")
	}
	if r.ContentLength != 0 {
		t.Errorf("unexpected content length: %d", r.ContentLength)
	}
}
