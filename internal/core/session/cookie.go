// Package session builds and checks the Set-Cookie headers that carry session
// tokens back to clients.
package session

import (
	"fmt"
	"strings"

	"github.com/99minutos/account-service/internal/core/domain"
)

const (
	AttrHTTPOnly    = "HttpOnly"
	AttrPath        = "Path"
	AttrSecure      = "Secure"
	AttrSameSite    = "SameSite"
	AttrPartitioned = "Partitioned"
)

// Attribute is one cookie attribute. Flags such as Secure have an empty Value.
type Attribute struct {
	Key   string
	Value string
}

func (a Attribute) String() string {
	if a.Value == "" {
		return a.Key
	}
	return a.Key + "=" + a.Value
}

// Cookie is a parsed Set-Cookie value with attributes kept in original order.
type Cookie struct {
	Name  string
	Value string
	Attrs []Attribute
}

// requiredAttrs are appended, in this order, to any cookie that lacks them.
var requiredAttrs = []Attribute{
	{Key: AttrHTTPOnly},
	{Key: AttrPath, Value: "/"},
	{Key: AttrSameSite, Value: "None"},
	{Key: AttrSecure},
	{Key: AttrPartitioned},
}

// Parse splits a raw Set-Cookie value into name, value and attributes.
func Parse(raw string) (Cookie, error) {
	parts := strings.Split(raw, ";")
	name, value, ok := strings.Cut(strings.TrimSpace(parts[0]), "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Cookie{}, fmt.Errorf("parse cookie: missing name=value pair in %q", raw)
	}

	c := Cookie{Name: name, Value: strings.TrimSpace(value)}
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		k, v, _ := strings.Cut(p, "=")
		c.Attrs = append(c.Attrs, Attribute{Key: strings.TrimSpace(k), Value: strings.TrimSpace(v)})
	}
	return c, nil
}

// Has reports whether the cookie carries the attribute (case-insensitive).
func (c Cookie) Has(key string) bool {
	for _, a := range c.Attrs {
		if strings.EqualFold(a.Key, key) {
			return true
		}
	}
	return false
}

// With returns a copy of the cookie with the attribute appended unless an
// attribute with the same key is already present.
func (c Cookie) With(attr Attribute) Cookie {
	if c.Has(attr.Key) {
		return c
	}
	attrs := make([]Attribute, len(c.Attrs), len(c.Attrs)+1)
	copy(attrs, c.Attrs)
	c.Attrs = append(attrs, attr)
	return c
}

// String renders the cookie as a Set-Cookie header value.
func (c Cookie) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)
	for _, a := range c.Attrs {
		b.WriteString("; ")
		b.WriteString(a.String())
	}
	return b.String()
}

// Normalize adds the attributes every outgoing session cookie needs.
// Attributes already present are left as they are, so Normalize is idempotent.
func Normalize(c Cookie) Cookie {
	for _, attr := range requiredAttrs {
		c = c.With(attr)
	}
	return c
}

// BuildHeader parses and normalizes a raw cookie string.
func BuildHeader(raw string) (string, error) {
	c, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return Normalize(c).String(), nil
}

// Extract normalizes the session cookies found in setCookieHeaders. Headers for
// other cookies are ignored even when they do not parse; a malformed session
// cookie is reported as a malformed response.
func Extract(setCookieHeaders []string) (domain.SessionCookies, error) {
	cookies := make(domain.SessionCookies, len(domain.SessionCookieNames))
	for _, raw := range setCookieHeaders {
		if !isSessionCookie(rawName(raw)) {
			continue
		}
		c, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
		}
		cookies[c.Name] = Normalize(c).String()
	}
	return cookies, nil
}

// rawName returns the cookie name of a Set-Cookie value without validating it.
func rawName(raw string) string {
	first, _, _ := strings.Cut(raw, ";")
	name, _, _ := strings.Cut(first, "=")
	return strings.TrimSpace(name)
}

// ValidateRequired fails with a MissingRequiredCookieError naming the first
// name absent from cookies.
func ValidateRequired(cookies domain.SessionCookies, names ...string) error {
	for _, name := range names {
		if _, ok := cookies[name]; !ok {
			return &domain.MissingRequiredCookieError{Name: name}
		}
	}
	return nil
}

func isSessionCookie(name string) bool {
	for _, n := range domain.SessionCookieNames {
		if n == name {
			return true
		}
	}
	return false
}
