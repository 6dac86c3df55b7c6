package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenEvent(text string) Event {
	return Event{Type: EventToken, Text: text}
}

func feedAll(d *Decoder, chunks ...string) []Event {
	var events []Event
	for _, c := range chunks {
		events = append(events, d.Feed([]byte(c))...)
	}
	return events
}

func TestDecodeSimpleStream(t *testing.T) {
	d := NewDecoder()
	events := feedAll(d,
		"data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n",
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo!\"}}]}\n\n",
		"data: [DONE]\n\n",
	)

	require.Len(t, events, 3)
	assert.Equal(t, tokenEvent("Hel"), events[0])
	assert.Equal(t, tokenEvent("lo!"), events[1])
	assert.Equal(t, EventTerminal, events[2].Type)
	assert.True(t, d.Done())
	assert.Zero(t, d.Noise())
}

func TestChunkIndependence(t *testing.T) {
	// The decoded sequence must not depend on where the byte stream is cut
	payload := "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo \"}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"world\"}}]}\n\n" +
		"data: [DONE]\n\n"

	reference := NewDecoder().Feed([]byte(payload))
	require.Len(t, reference, 4)

	for _, size := range []int{1, 2, 3, 7, 16, 33, len(payload)} {
		d := NewDecoder()
		var events []Event
		for i := 0; i < len(payload); i += size {
			end := i + size
			if end > len(payload) {
				end = len(payload)
			}
			events = append(events, d.Feed([]byte(payload[i:end]))...)
		}
		assert.Equal(t, reference, events, "chunk size %d", size)
	}
}

func TestLineSplitAcrossChunkBoundary(t *testing.T) {
	d := NewDecoder()

	events := d.Feed([]byte("data: {\"choices\":[{\"delta\":{\"con"))
	assert.Empty(t, events)

	events = d.Feed([]byte("tent\":\"hi\"}}]}\n"))
	require.Len(t, events, 1)
	assert.Equal(t, tokenEvent("hi"), events[0])
}

func TestTerminalIdempotence(t *testing.T) {
	d := NewDecoder()
	events := d.Feed([]byte("data: [DONE]\n"))
	require.Len(t, events, 1)
	assert.Equal(t, EventTerminal, events[0].Type)

	// Bytes after the sentinel must never produce more tokens
	events = d.Feed([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"late\"}}]}\n"))
	assert.Empty(t, events)
	assert.True(t, d.Done())
}

func TestTrailingBytesInSameChunkAsTerminal(t *testing.T) {
	d := NewDecoder()
	events := d.Feed([]byte("data: [DONE]\ndata: {\"choices\":[{\"delta\":{\"content\":\"late\"}}]}\n"))
	require.Len(t, events, 1)
	assert.Equal(t, EventTerminal, events[0].Type)
}

func TestMalformedPayloadTolerance(t *testing.T) {
	d := NewDecoder()
	events := feedAll(d,
		"data: {\"choices\":[{\"delta\":{\"content\":\"one\"}}]}\n",
		"data: {this is not json\n",
		"data: {\"choices\":[{\"delta\":{\"content\":\"two\"}}]}\n",
	)

	require.Len(t, events, 2)
	assert.Equal(t, tokenEvent("one"), events[0])
	assert.Equal(t, tokenEvent("two"), events[1])
	assert.Equal(t, 1, d.Noise())
}

func TestRoleOnlyDeltaSkipped(t *testing.T) {
	d := NewDecoder()
	events := feedAll(d,
		"data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n",
		"data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\n",
	)

	require.Len(t, events, 1)
	assert.Equal(t, tokenEvent("hi"), events[0])
	// A content-free delta is not noise, it's a valid event with nothing to say
	assert.Zero(t, d.Noise())
}

func TestNonDataLinesIgnored(t *testing.T) {
	d := NewDecoder()
	events := feedAll(d,
		": keepalive comment\n",
		"event: ping\n",
		"\n",
		"data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\n",
	)

	require.Len(t, events, 1)
	assert.Equal(t, tokenEvent("hi"), events[0])
	assert.Zero(t, d.Noise())
}

func TestCarriageReturnStripped(t *testing.T) {
	d := NewDecoder()
	events := d.Feed([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\r\ndata: [DONE]\r\n"))

	require.Len(t, events, 2)
	assert.Equal(t, tokenEvent("hi"), events[0])
	assert.Equal(t, EventTerminal, events[1].Type)
}

func TestDataPrefixWithoutSpace(t *testing.T) {
	d := NewDecoder()
	events := d.Feed([]byte("data:{\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\n"))

	require.Len(t, events, 1)
	assert.Equal(t, tokenEvent("hi"), events[0])
}

func TestFreshDecoderPerStream(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte("data: [DONE]\n"))
	assert.True(t, d.Done())

	// A new decoder carries nothing over
	d2 := NewDecoder()
	assert.False(t, d2.Done())
	events := d2.Feed([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\n"))
	require.Len(t, events, 1)
}
