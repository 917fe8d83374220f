package sms

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	common "github.com/example/messaging-mcp/internal/adapters/common"
)

// BasicAuthHeader composes the Authorization header value for key:secret.
// Both halves must be non-blank; the check happens here so a missing secret
// is reported locally instead of as a remote 401.
func BasicAuthHeader(key, secret string) (string, error) {
	key = strings.TrimSpace(key)
	secret = strings.TrimSpace(secret)
	switch {
	case key == "" && secret == "":
		return "", common.Configuration("api key and api secret are required")
	case key == "":
		return "", common.Configuration("api key is required")
	case secret == "":
		return "", common.Configuration("api secret is required")
	}
	token := base64.StdEncoding.EncodeToString([]byte(key + ":" + secret))
	return "Basic " + token, nil
}

// EncodeForm converts a flat parameter map into form values. Nil values and
// nil pointers are dropped; slices emit one field per element under the same
// key, in order.
func EncodeForm(params map[string]any) url.Values {
	values := url.Values{}
	for key, value := range params {
		appendValue(values, key, value)
	}
	return values
}

func appendValue(values url.Values, key string, value any) {
	switch v := value.(type) {
	case nil:
		return
	case string:
		values.Add(key, v)
	case []string:
		for _, item := range v {
			values.Add(key, item)
		}
	case []any:
		for _, item := range v {
			appendValue(values, key, item)
		}
	case bool:
		values.Add(key, strconv.FormatBool(v))
	case int:
		values.Add(key, strconv.Itoa(v))
	case int64:
		values.Add(key, strconv.FormatInt(v, 10))
	case float64:
		values.Add(key, strconv.FormatFloat(v, 'f', -1, 64))
	case fmt.Stringer:
		if isNil(v) {
			return
		}
		values.Add(key, v.String())
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Pointer:
			if rv.IsNil() {
				return
			}
			appendValue(values, key, rv.Elem().Interface())
		case reflect.Slice, reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				appendValue(values, key, rv.Index(i).Interface())
			}
		default:
			values.Add(key, fmt.Sprint(value))
		}
	}
}

func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
