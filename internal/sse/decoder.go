// Package sse incrementally decodes the provider's server-sent-event wire
// format out of arbitrarily chunked bytes. The provider controls the framing,
// not us: lines may split anywhere across chunk boundaries, and occasional
// non-JSON keepalive noise is expected between real events.
package sse

import (
	"bytes"
	"encoding/json"
)

// EventType discriminates decoded provider events.
type EventType int

const (
	// EventToken carries one incremental text fragment.
	EventToken EventType = iota
	// EventTerminal is the provider's [DONE] sentinel, the normal end of stream.
	EventTerminal
)

// Event is one decoded provider event.
type Event struct {
	Type EventType
	Text string
}

const (
	dataPrefix   = "data:"
	doneSentinel = "[DONE]"
)

// chunk mirrors the provider's per-event JSON payload. Only the incremental
// delta path is read; everything else is ignored.
type chunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
			Role    string `json:"role,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Decoder turns a chunked byte stream into Token/Terminal events. One Decoder
// serves exactly one relay invocation; state is never shared across streams.
// The zero value is not usable, call NewDecoder.
type Decoder struct {
	carry []byte
	done  bool
	noise int
}

// NewDecoder returns a fresh decoder with empty carry-over state.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed consumes one chunk of bytes and returns the events completed by it.
// Only the trailing fragment of a chunk can be incomplete, so everything
// before the last newline is processed immediately and the remainder is
// carried into the next call. After the terminal sentinel the decoder is
// inert: further input produces nothing.
func (d *Decoder) Feed(p []byte) []Event {
	if d.done || len(p) == 0 {
		return nil
	}

	d.carry = append(d.carry, p...)

	var events []Event
	for {
		idx := bytes.IndexByte(d.carry, '\n')
		if idx < 0 {
			break
		}
		line := d.carry[:idx]
		d.carry = d.carry[idx+1:]

		ev, ok := d.decodeLine(line)
		if !ok {
			continue
		}
		events = append(events, ev)
		if ev.Type == EventTerminal {
			d.done = true
			d.carry = nil
			break
		}
	}
	return events
}

// decodeLine parses one complete line. Lines without the data prefix, events
// without text (role-only deltas), and malformed payloads all decode to
// nothing; only the malformed ones count as noise.
func (d *Decoder) decodeLine(line []byte) (Event, bool) {
	line = bytes.TrimRight(line, "\r")
	if !bytes.HasPrefix(line, []byte(dataPrefix)) {
		return Event{}, false
	}

	payload := line[len(dataPrefix):]
	if len(payload) > 0 && payload[0] == ' ' {
		payload = payload[1:]
	}

	if string(bytes.TrimSpace(payload)) == doneSentinel {
		return Event{Type: EventTerminal}, true
	}

	var c chunk
	if err := json.Unmarshal(payload, &c); err != nil {
		// Known provider behaviour: keepalive noise between events.
		// Swallow it, but keep count for observability.
		d.noise++
		return Event{}, false
	}

	if len(c.Choices) == 0 || c.Choices[0].Delta.Content == "" {
		return Event{}, false
	}
	return Event{Type: EventToken, Text: c.Choices[0].Delta.Content}, true
}

// Done reports whether the terminal sentinel has been seen.
func (d *Decoder) Done() bool {
	return d.done
}

// Noise returns how many malformed data payloads were discarded.
func (d *Decoder) Noise() int {
	return d.noise
}
