package http

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrMalformedHeader      = errors.New("http: malformed header")
	ErrInvalidContentLength = errors.New("http: invalid content-length")
	ErrRequestTooLarge      = errors.New("http: request too large")
)

var (
	crlf             = []byte("\r\n")
	headerTerminator = []byte("\r\n\r\n")
)

const headerContentLength = "Content-Length"

// message is the parsed start-line and header block of a request.
type message struct {
	method string
	target string
	proto  string
	url    *url.URL
	header map[string]string
	names  []string // field names in received order, repeats included
}

// parseHeader parses a header block ending in CRLFCRLF.
func parseHeader(block []byte) (*message, error) {
	block = bytes.TrimSuffix(block, headerTerminator)
	lines := bytes.Split(block, crlf)

	m, err := parseRequestLine(lines[0])
	if err != nil {
		return nil, err
	}

	m.header = make(map[string]string, len(lines)-1)
	for i, line := range lines[1:] {
		name, value, found := bytes.Cut(line, []byte{':'})
		if !found || !isToken(name) {
			return nil, errors.Wrapf(ErrMalformedHeader, "line %d: %q", i+2, line)
		}
		m.header[string(name)] = string(trimOWS(value))
		m.names = append(m.names, string(name))
	}

	return m, nil
}

func parseRequestLine(line []byte) (*message, error) {
	parts := bytes.Split(line, []byte{' '})
	if len(parts) != 3 {
		return nil, errors.Wrapf(ErrMalformedHeader, "request line: %q", line)
	}

	method, target, proto := parts[0], parts[1], parts[2]
	if !isToken(method) || len(target) == 0 || !validProto(proto) {
		return nil, errors.Wrapf(ErrMalformedHeader, "request line: %q", line)
	}

	m := &message{
		method: string(method),
		target: string(target),
		proto:  string(proto),
	}

	if m.target == "*" {
		m.url = &url.URL{Path: "*"}
		return m, nil
	}

	u, err := url.ParseRequestURI(m.target)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedHeader, "request target: %v", err)
	}
	m.url = u

	return m, nil
}

// validProto accepts HTTP/<digit>.<digit>.
func validProto(b []byte) bool {
	const prefix = "HTTP/"
	if len(b) != len(prefix)+3 || !bytes.HasPrefix(b, []byte(prefix)) {
		return false
	}
	v := b[len(prefix):]
	return '0' <= v[0] && v[0] <= '9' && v[1] == '.' && '0' <= v[2] && v[2] <= '9'
}

// lookup finds a header field ignoring case, preferring an exact match.
// Among differently cased fields the last one received wins.
func (m *message) lookup(name string) (string, bool) {
	if v, ok := m.header[name]; ok {
		return v, true
	}
	for i := len(m.names) - 1; i >= 0; i-- {
		if strings.EqualFold(m.names[i], name) {
			return m.header[m.names[i]], true
		}
	}
	return "", false
}

// bodyLength is the value of Content-Length, or 0 without one. Differently
// cased duplicates must agree.
func (m *message) bodyLength() (int, error) {
	var (
		value string
		found bool
	)
	for k, v := range m.header {
		if !strings.EqualFold(k, headerContentLength) {
			continue
		}
		if found && v != value {
			return 0, errors.Wrapf(ErrInvalidContentLength, "conflicting values %q and %q", value, v)
		}
		value, found = v, true
	}
	if !found {
		return 0, nil
	}

	n, err := atoi([]byte(value))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidContentLength, "%q", value)
	}
	return n, nil
}
