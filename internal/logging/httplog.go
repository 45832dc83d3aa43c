package logging

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"
)

const maxLoggedPayload = 1024

// LogHTTPRequest records an outbound request at debug level with credentials
// masked.
func LogHTTPRequest(req *http.Request, body []byte) {
	if !DebugEnabled() || req == nil {
		return
	}
	fields := []interface{}{"method", req.Method, "url", redactURL(req.URL)}
	if len(req.Header) > 0 {
		fields = append(fields, "headers", redactHeaders(req.Header))
	}
	if len(body) > 0 {
		fields = append(fields, payloadFields(body)...)
	}
	L().Debugw("http request", fields...)
}

// LogHTTPResponse records a response at debug level. body is whatever prefix
// of the payload the caller chose to read.
func LogHTTPResponse(resp *http.Response, body []byte) {
	if !DebugEnabled() || resp == nil {
		return
	}
	target := "<unknown>"
	if resp.Request != nil {
		target = redactURL(resp.Request.URL)
	}
	fields := []interface{}{"status", resp.Status, "url", target}
	if len(resp.Header) > 0 {
		fields = append(fields, "headers", redactHeaders(resp.Header))
	}
	if len(body) > 0 {
		fields = append(fields, payloadFields(body)...)
	}
	L().Debugw("http response", fields...)
}

// redactHeaders renders headers as "Name: v1, v2; Name2: v" in name order.
func redactHeaders(headers http.Header) string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	parts := make([]string, 0, len(names))
	for _, name := range names {
		values := make([]string, 0, len(headers[name]))
		for _, v := range headers[name] {
			values = append(values, redactValue(name, v))
		}
		parts = append(parts, name+": "+strings.Join(values, ", "))
	}
	return strings.Join(parts, "; ")
}

func payloadFields(body []byte) []interface{} {
	size := len(body)
	if len(body) > maxLoggedPayload {
		body = body[:maxLoggedPayload]
	}
	if utf8.Valid(body) {
		return []interface{}{"bytes", size, "payload", string(body)}
	}
	return []interface{}{"bytes", size, "payload_base64", base64.StdEncoding.EncodeToString(body)}
}

func redactURL(u *url.URL) string {
	if u == nil {
		return "<unknown>"
	}
	clone := *u

	if clone.RawQuery != "" {
		query := clone.Query()
		changed := false
		for key, values := range query {
			if !isSensitiveKey(key) {
				continue
			}
			for i, v := range values {
				values[i] = redactValue(key, v)
			}
			changed = true
		}
		if changed {
			clone.RawQuery = query.Encode()
		}
	}

	if clone.User != nil {
		if password, ok := clone.User.Password(); ok {
			clone.User = url.UserPassword(clone.User.Username(), MaskIdentifier(password))
		}
	}
	return clone.String()
}

var sensitiveFragments = []string{"api-key", "apikey", "authorization", "password", "secret", "token"}

func isSensitiveKey(name string) bool {
	lower := strings.ToLower(name)
	for _, fragment := range sensitiveFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

func redactValue(name, value string) string {
	if value == "" || !isSensitiveKey(name) {
		return value
	}
	// "Bearer ****abcd" keeps the scheme readable.
	if scheme, credential, ok := strings.Cut(value, " "); ok && strings.EqualFold(name, "authorization") {
		return scheme + " " + MaskIdentifier(credential)
	}
	return MaskIdentifier(value)
}
