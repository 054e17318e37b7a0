package http

import "bytes"

// maxBodyPrealloc caps the body buffer reserved up front from an untrusted
// Content-Length.
const maxBodyPrealloc = 64 * 1024

type ParseStatus uint8

const (
	StateEmpty ParseStatus = iota
	StateHeaderIncomplete
	StateBodyIncomplete
	StateComplete
	StateError
)

func (s ParseStatus) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateHeaderIncomplete:
		return "header_incomplete"
	case StateBodyIncomplete:
		return "body_incomplete"
	case StateComplete:
		return "complete"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseState is a request in progress. The zero value is StateEmpty.
//
// Transitions only move forward: Empty and HeaderIncomplete lead to
// BodyIncomplete, Complete or Error, BodyIncomplete leads to Complete, and
// Complete and Error are final.
//
// The body grows in place, so a BodyIncomplete state must be consumed at
// most once; keep the returned state instead.
type ParseState struct {
	status   ParseStatus
	msg      *message
	expected int
	body     []byte
	err      error
}

func (s ParseState) Status() ParseStatus {
	return s.status
}

// Err is the reason for StateError.
func (s ParseState) Err() error {
	return s.err
}

// ExpectedBodyLength is the declared body length once the header is parsed.
func (s ParseState) ExpectedBodyLength() int {
	return s.expected
}

// Request returns the parsed request once the state is complete.
func (s ParseState) Request() (*Request, bool) {
	if s.status != StateComplete {
		return nil, false
	}
	return &Request{msg: s.msg, body: s.body}, true
}

// Consume feeds the accumulated, not yet consumed bytes into the state. It
// returns the next state and the bytes this transition did not consume:
//   - without a complete header block all of data is returned so the caller
//     can append to it and try again;
//   - once the header is parsed the body bytes are taken over and only what
//     follows the body is returned;
//   - Complete and Error take nothing.
func (s ParseState) Consume(data []byte) (ParseState, []byte) {
	switch s.status {
	case StateComplete, StateError:
		return s, data
	case StateBodyIncomplete:
		return s.consumeBody(data)
	default:
		return consumeHeader(data)
	}
}

func consumeHeader(data []byte) (ParseState, []byte) {
	i := bytes.Index(data, headerTerminator)
	if i < 0 {
		return ParseState{status: StateHeaderIncomplete}, data
	}

	end := i + len(headerTerminator)
	header, tail := data[:end], data[end:]

	msg, err := parseHeader(header)
	if err != nil {
		return ParseState{status: StateError, err: err}, data
	}

	n, err := msg.bodyLength()
	if err != nil {
		return ParseState{status: StateError, err: err}, data
	}

	s := ParseState{
		status:   StateBodyIncomplete,
		msg:      msg,
		expected: n,
		body:     make([]byte, 0, min(n, maxBodyPrealloc)),
	}
	return s.consumeBody(tail)
}

func (s ParseState) consumeBody(data []byte) (ParseState, []byte) {
	need := s.expected - len(s.body)
	if len(data) >= need {
		s.body = append(s.body, data[:need]...)
		s.status = StateComplete
		return s, data[need:]
	}

	s.body = append(s.body, data...)
	return s, nil
}
