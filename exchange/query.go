package exchange

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/nojima/restfetch/input"
)

// url.QueryEscape escapes a few characters that query strings built by
// browsers leave alone.
var componentUnescaper = strings.NewReplacer(
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// SerializeQueryParams encodes data as a query string. Nested maps become
// "key[sub]=v", slices of scalars "key[]=v" and slices of containers
// "key[0][sub]=v". Keys are emitted in sorted order.
func SerializeQueryParams(data map[string]interface{}) string {
	var s []string
	for _, key := range sortedKeys(reflect.ValueOf(data)) {
		s = buildParams(s, key, data[key])
	}
	return strings.Join(s, "&")
}

func buildParams(s []string, prefix string, v interface{}) []string {
	rv := reflect.ValueOf(v)
	switch {
	case v == nil || input.IsUndefined(v):
		return addParam(s, prefix, v)
	case isSequence(rv):
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i).Interface()
			if strings.HasSuffix(prefix, "[]") {
				s = addParam(s, prefix, elem)
				continue
			}
			index := ""
			if isContainer(elem) {
				index = strconv.Itoa(i)
			}
			s = buildParams(s, prefix+"["+index+"]", elem)
		}
		return s
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		for _, key := range sortedKeys(rv) {
			s = buildParams(s, prefix+"["+key+"]", rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key())).Interface())
		}
		return s
	default:
		return addParam(s, prefix, v)
	}
}

func addParam(s []string, key string, v interface{}) []string {
	return append(s, escapeComponent(key)+"="+escapeComponent(formatParam(v)))
}

func formatParam(v interface{}) string {
	if input.IsUndefined(v) {
		return ""
	}
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func escapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

func isSequence(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice:
		return rv.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	default:
		return false
	}
}

func isContainer(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return isSequence(rv) || rv.Kind() == reflect.Map
}

func sortedKeys(rv reflect.Value) []string {
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys
}
