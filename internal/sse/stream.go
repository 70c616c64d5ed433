package sse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
)

// readChunkSize is the buffer size for each read from the response body.
// Frames are far smaller than this in practice; the decoder handles frames
// split across reads regardless.
const readChunkSize = 4096

// ErrStreamClosed is returned when the server ends the stream before a
// terminal event was observed.
var ErrStreamClosed = errors.New("sse: stream closed by server")

// Stream is one open Server-Sent Events connection.
//
// A Stream owns its response body. Exactly one goroutine reads from it
// (started by Frames); Close releases the underlying connection and causes
// the read loop to stop.
type Stream struct {
	resp *http.Response
}

// Connect performs a streaming HTTP request and validates the response.
//
// The request should be created with http.NewRequestWithContext so that
// cancelling the context actually aborts a pending read. Connect sets the
// Accept and Cache-Control headers expected by the event-stream endpoints.
//
// A non-2xx status or an absent body is surfaced as a single transport
// error; no retry is attempted.
//
// Parameters:
//   - client: The HTTP client to use (must have no timeout for streaming)
//   - req: The prepared request
//
// Returns:
//   - *Stream: The open stream
//   - error: Transport error if the connection could not be established
func Connect(client *http.Client, req *http.Request) (*Stream, error) {
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stream connection failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("stream connection failed with status %d", resp.StatusCode)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, fmt.Errorf("stream connection returned no body")
	}

	return &Stream{resp: resp}, nil
}

// Close releases the underlying connection. Safe to call more than once.
func (s *Stream) Close() {
	if s.resp != nil && s.resp.Body != nil {
		s.resp.Body.Close()
	}
}

// Frames starts the read loop and returns the frame and error channels.
//
// The loop reads the body in chunks, splits them into lines with a
// LineDecoder, and sends each extracted payload on the frames channel in
// arrival order. The frames channel is closed when the stream ends for any
// reason. At most one error is sent: a read failure before EOF. A clean EOF
// closes the channels without an error; callers that require a terminal
// event treat that as ErrStreamClosed themselves.
//
// On context cancellation the loop stops after the current chunk and closes
// the connection; no frames are delivered after cancellation is observed.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - <-chan string: Channel of frame payloads
//   - <-chan error: Channel that receives a terminal read error, if any
func (s *Stream) Frames(ctx context.Context) (<-chan string, <-chan error) {
	frames := make(chan string, 16)
	errs := make(chan error, 1)

	go func() {
		defer close(frames)
		defer close(errs)
		defer s.Close()

		var dec LineDecoder
		buf := make([]byte, readChunkSize)

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			n, err := s.resp.Body.Read(buf)
			if n > 0 {
				for _, line := range dec.Write(buf[:n]) {
					payload, ok := ExtractFrame(line)
					if !ok {
						continue
					}
					select {
					case frames <- payload:
					case <-ctx.Done():
						return
					}
				}
			}
			if err != nil {
				if dec.Pending() {
					// An unterminated trailing line cannot be a complete
					// frame; drop it.
					log.Debug("discarding partial trailing line at end of stream")
					dec.Reset()
				}
				if err != io.EOF && ctx.Err() == nil {
					errs <- err
				}
				return
			}
		}
	}()

	return frames, errs
}
