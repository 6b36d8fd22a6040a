// Package token decodes the payload of a signed session token for display.
//
// Nothing here verifies signatures or expiry. The server that issued the
// token is the only party that decides whether it is valid, so the values
// returned by Decode must never be used for authorization.
package token

import (
	"bytes"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

// segmentParser decodes base64url segments, padded or not.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// stdToURL maps the standard base64 alphabet onto the URL-safe one so
// segments written in either alphabet decode the same way.
var stdToURL = strings.NewReplacer("+", "-", "/", "_")

// Payload is the decoded claim set of a token.
type Payload map[string]any

// Decode returns the payload segment of raw parsed as a JSON object.
// It reports false for any malformed input and never panics.
func Decode(raw string) (Payload, bool) {
	parts := strings.Split(raw, ".")
	if len(parts) < 2 {
		return nil, false
	}

	data, err := segmentParser.DecodeSegment(stdToURL.Replace(parts[1]))
	if err != nil {
		return nil, false
	}

	// Numbers stay json.Number so large numeric ids keep every digit.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var payload Payload
	if err := dec.Decode(&payload); err != nil || payload == nil {
		return nil, false
	}

	return payload, true
}

// ID returns the "id" claim, falling back to "sub", then to "".
func (p Payload) ID() string {
	if id := p.text("id"); id != "" {
		return id
	}
	return p.text("sub")
}

// Email returns the "email" claim or "".
func (p Payload) Email() string {
	return p.text("email")
}

// Expiry returns the "exp" claim. ok is false when the claim is missing
// or not a number.
func (p Payload) Expiry() (t time.Time, ok bool) {
	n, found := p["exp"].(json.Number)
	if !found {
		return time.Time{}, false
	}
	v, err := n.Float64()
	if err != nil || v <= 0 {
		return time.Time{}, false
	}
	return time.Unix(int64(v), 0), true
}

// text renders a claim as a string. Empty strings, zero, false and null
// all count as absent.
func (p Payload) text(name string) string {
	switch v := p[name].(type) {
	case string:
		return v
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			return ""
		}
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return ""
	default:
		return ""
	}
}
