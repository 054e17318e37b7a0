package http

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"
)

var ErrInvalidHeaderField = errors.New("http: invalid header field")

const (
	protocolHTTP11   = "HTTP/1.1"
	headerConnection = "Connection"
	headerDate       = "Date"
	headerType       = "Content-Type"
	connectionClose  = "close"
)

// Response is a response value. Copies share one message until one of them
// is modified: every mutator first replaces the shared message with its own
// clone, so earlier copies never observe the change.
//
// Keep-alive is not supported; every response carries "Connection: close".
type Response struct {
	m *responseMessage
}

type responseMessage struct {
	status int
	phrase string
	fields []field
	body   []byte
}

type field struct {
	name  string
	value string
}

// NewResponse creates a response with statusCode. An empty statusPhrase
// selects the default phrase for the code, or "Unknown".
func NewResponse(statusCode int, statusPhrase string) Response {
	if statusPhrase == "" {
		statusPhrase = StatusText(statusCode)
	}

	return Response{m: &responseMessage{
		status: statusCode,
		phrase: statusPhrase,
		fields: []field{{name: headerConnection, value: connectionClose}},
	}}
}

func (m *responseMessage) clone() *responseMessage {
	return &responseMessage{
		status: m.status,
		phrase: m.phrase,
		fields: slices.Clone(m.fields),
		body:   m.body,
	}
}

func (m *responseMessage) index(name string) int {
	return slices.IndexFunc(m.fields, func(f field) bool {
		return strings.EqualFold(f.name, name)
	})
}

func (res *Response) message() *responseMessage {
	if res.m == nil {
		res.m = NewResponse(StatusOK, "").m
	}
	return res.m
}

// detach gives res a message no other Response refers to.
func (res *Response) detach() *responseMessage {
	res.m = res.message().clone()
	return res.m
}

func (res Response) StatusCode() int {
	return res.message().status
}

func (res Response) StatusPhrase() string {
	return res.message().phrase
}

// SetHeaderField sets or replaces a header field. Connection cannot be
// changed. A name that is not a token or a value holding control characters
// leaves the response untouched and returns ErrInvalidHeaderField.
func (res *Response) SetHeaderField(name, value string) error {
	if strings.EqualFold(name, headerConnection) {
		return nil
	}
	if err := validField(name, value); err != nil {
		return err
	}

	m := res.detach()
	if i := m.index(name); i >= 0 {
		m.fields[i] = field{name: name, value: value}
		return nil
	}
	m.fields = append(m.fields, field{name: name, value: value})
	return nil
}

// AddHeaderField appends a header field without replacing fields of the
// same name. Connection cannot be added.
func (res *Response) AddHeaderField(name, value string) error {
	if strings.EqualFold(name, headerConnection) {
		return nil
	}
	if err := validField(name, value); err != nil {
		return err
	}

	m := res.detach()
	m.fields = append(m.fields, field{name: name, value: value})
	return nil
}

func validField(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return errors.Wrapf(ErrInvalidHeaderField, "name %q", name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return errors.Wrapf(ErrInvalidHeaderField, "value of %s: %q", name, value)
	}
	return nil
}

// RemoveHeaderField removes every header field called name. Connection
// cannot be removed.
func (res *Response) RemoveHeaderField(name string) {
	if strings.EqualFold(name, headerConnection) {
		return
	}
	if res.message().index(name) < 0 {
		return
	}

	m := res.detach()
	m.fields = slices.DeleteFunc(m.fields, func(f field) bool {
		return strings.EqualFold(f.name, name)
	})
}

// HeaderField returns the value of a header field, ignoring case.
func (res Response) HeaderField(name string) (string, bool) {
	m := res.message()
	if i := m.index(name); i >= 0 {
		return m.fields[i].value, true
	}
	return "", false
}

// HeaderFields returns a copy of all header fields.
func (res Response) HeaderFields() map[string]string {
	m := res.message()
	fields := make(map[string]string, len(m.fields))
	for _, f := range m.fields {
		fields[f.name] = f.value
	}
	return fields
}

func (res Response) Body() []byte {
	return bytes.Clone(res.message().body)
}

func (res *Response) SetBody(body []byte) {
	res.detach().body = bytes.Clone(body)
}

func (res *Response) WithStatus(statusCode int) *Response {
	m := res.detach()
	m.status = statusCode
	m.phrase = StatusText(statusCode)
	return res
}

func (res *Response) WithText(payload string) *Response {
	res.SetHeaderField(headerType, "text/plain; charset=utf-8")
	res.SetBody([]byte(payload))
	return res
}

func (res *Response) WithJSON(payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return res, errors.Wrap(err, "http: encoding response body")
	}

	res.SetHeaderField(headerType, "application/json")
	res.detach().body = body
	return res, nil
}

// Serialize renders the response in wire format. Content-Length is added
// when the fields do not contain one.
func (res Response) Serialize() []byte {
	m := res.message()

	size := len(protocolHTTP11) + len(m.phrase) + len(m.body) + 32
	for _, f := range m.fields {
		size += len(f.name) + len(f.value) + 4
	}
	buf := make([]byte, 0, size)

	buf = append(buf, protocolHTTP11...)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(m.status), 10)
	buf = append(buf, ' ')
	buf = append(buf, m.phrase...)
	buf = append(buf, crlf...)

	for _, f := range m.fields {
		buf = append(buf, f.name...)
		buf = append(buf, ": "...)
		buf = append(buf, f.value...)
		buf = append(buf, crlf...)
	}

	if m.index(headerContentLength) < 0 {
		buf = append(buf, headerContentLength...)
		buf = append(buf, ": "...)
		buf = strconv.AppendInt(buf, int64(len(m.body)), 10)
		buf = append(buf, crlf...)
	}

	buf = append(buf, crlf...)
	return append(buf, m.body...)
}

func (res Response) String() string {
	return string(res.Serialize())
}
