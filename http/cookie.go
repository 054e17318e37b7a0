package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	headerCookie    = "Cookie"
	headerSetCookie = "Set-Cookie"
	maxCookieValue  = 4096
)

type SameSite int

const (
	SameSiteDefaultMode SameSite = iota + 1
	SameSiteLaxMode
	SameSiteStrictMode
	SameSiteNoneMode
)

var (
	ErrNoCookie      = errors.New("http: named cookie not present")
	ErrInvalidCookie = errors.New("http: invalid cookie")
)

type Cookie struct {
	Name  string
	Value string

	Path        string
	Domain      string
	Expires     time.Time
	MaxAge      int
	Secure      bool
	HttpOnly    bool
	SameSite    SameSite
	Partitioned bool
}

// String renders the cookie as a Set-Cookie value.
func (c *Cookie) String() string {
	var b strings.Builder

	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)

	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(FormatDate(c.Expires))
	}

	if c.MaxAge > 0 {
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(c.MaxAge))
	} else if c.MaxAge < 0 {
		b.WriteString("; Max-Age=0")
	}

	if c.Secure {
		b.WriteString("; Secure")
	}
	if c.HttpOnly {
		b.WriteString("; HttpOnly")
	}

	switch c.SameSite {
	case SameSiteLaxMode:
		b.WriteString("; SameSite=Lax")
	case SameSiteStrictMode:
		b.WriteString("; SameSite=Strict")
	case SameSiteNoneMode:
		b.WriteString("; SameSite=None")
	}

	if c.Partitioned {
		b.WriteString("; Partitioned")
	}

	return b.String()
}

// Valid checks the name against the RFC 6265 token rules.
func (c *Cookie) Valid() error {
	if !isToken([]byte(c.Name)) {
		return errors.Wrapf(ErrInvalidCookie, "name %q", c.Name)
	}
	if len(c.Value) > maxCookieValue {
		return errors.Wrapf(ErrInvalidCookie, "value of %d bytes", len(c.Value))
	}
	if c.SameSite == SameSiteNoneMode && !c.Secure {
		return errors.Wrap(ErrInvalidCookie, "SameSite=None requires Secure")
	}
	return nil
}

func (c *Cookie) IsExpired() bool {
	if c.MaxAge < 0 {
		return true
	}
	return !c.Expires.IsZero() && c.Expires.Before(time.Now())
}

func (c *Cookie) SetExpiry(d time.Duration) {
	c.Expires = time.Now().Add(d)
	c.MaxAge = int(d.Seconds())
}

// Delete turns the cookie into one that removes itself from the client.
func (c *Cookie) Delete() {
	c.Value = ""
	c.MaxAge = -1
	c.Expires = time.Unix(1, 0)
}

// ParseCookies parses the value of a Cookie request header. Pairs without a
// name are skipped.
func ParseCookies(header string) []*Cookie {
	var cookies []*Cookie
	for part := range strings.SplitSeq(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if !isToken([]byte(name)) {
			continue
		}
		cookies = append(cookies, &Cookie{Name: name, Value: strings.TrimSpace(value)})
	}
	return cookies
}

// Cookie returns the named cookie sent with the request.
func (req *Request) Cookie(name string) (*Cookie, error) {
	header, ok := req.HeaderField(headerCookie)
	if !ok {
		return nil, ErrNoCookie
	}
	for _, c := range ParseCookies(header) {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, ErrNoCookie
}

// AddCookie appends a Set-Cookie field for c. An invalid cookie is not added.
func (res *Response) AddCookie(c *Cookie) error {
	if err := c.Valid(); err != nil {
		return err
	}
	return res.AddHeaderField(headerSetCookie, c.String())
}
