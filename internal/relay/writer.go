package relay

import (
	"fmt"
	"net/http"
)

// FrameWriter formats the client-facing SSE stream and manages the underlying
// connection lifecycle. The normal-completion path and the error path may
// both race to close, so every method is safe to call after End.
type FrameWriter interface {
	// Open sets the streaming response headers. Exactly once, before any frame.
	Open()
	// WriteToken emits one "data: <text>" frame. A write error means the
	// client is gone.
	WriteToken(text string) error
	// WriteClose emits the terminal "event: close" frame.
	WriteClose() error
	// End closes the stream. Further writes are no-ops.
	End()
}

// HTTPFrameWriter writes SSE frames to an http.ResponseWriter, flushing after
// every frame so tokens reach the browser as they decode.
type HTTPFrameWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	opened  bool
	ended   bool
}

// NewHTTPFrameWriter wraps a response writer. Flushing degrades to a no-op if
// the writer does not support it.
func NewHTTPFrameWriter(w http.ResponseWriter) *HTTPFrameWriter {
	flusher, _ := w.(http.Flusher)
	return &HTTPFrameWriter{w: w, flusher: flusher}
}

func (fw *HTTPFrameWriter) Open() {
	if fw.opened || fw.ended {
		return
	}
	fw.opened = true

	header := fw.w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	fw.w.WriteHeader(http.StatusOK)
	fw.flush()
}

func (fw *HTTPFrameWriter) WriteToken(text string) error {
	if fw.ended {
		return nil
	}
	if _, err := fmt.Fprintf(fw.w, "data: %s\n\n", text); err != nil {
		return err
	}
	fw.flush()
	return nil
}

func (fw *HTTPFrameWriter) WriteClose() error {
	if fw.ended {
		return nil
	}
	if _, err := fmt.Fprint(fw.w, "event: close\ndata: done\n\n"); err != nil {
		return err
	}
	fw.flush()
	return nil
}

// End marks the stream closed. The connection itself is released when the
// handler returns.
func (fw *HTTPFrameWriter) End() {
	fw.ended = true
}

func (fw *HTTPFrameWriter) flush() {
	if fw.flusher != nil {
		fw.flusher.Flush()
	}
}
