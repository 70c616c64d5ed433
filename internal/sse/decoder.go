// Package sse provides the Server-Sent Events client used for chat and
// workflow streaming.
//
// This package handles the byte-level protocol: splitting a chunked response
// body into complete lines, extracting data frame payloads, and running the
// read loop for one streaming connection.
package sse

import "bytes"

// LineDecoder converts raw byte chunks from a streaming response body into
// complete newline-terminated text lines.
//
// Chunks may split a line, or even a multi-byte UTF-8 character, at any byte
// boundary. The decoder buffers bytes until a terminator arrives, so a line
// is only ever emitted once all of its bytes are present; the UTF-8 decode
// therefore always sees whole runes. A trailing carriage return is stripped
// to tolerate CRLF framing.
type LineDecoder struct {
	// buf holds the bytes of the current, not-yet-terminated line.
	buf []byte
}

// Write feeds one chunk of bytes into the decoder.
//
// Parameters:
//   - chunk: The raw bytes read from the connection
//
// Returns:
//   - []string: All complete lines terminated within this chunk, in order,
//     without their line terminators. Nil if no line completed.
func (d *LineDecoder) Write(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}

	var lines []string
	rest := chunk
	for {
		idx := bytes.IndexByte(rest, '\n')
		if idx < 0 {
			d.buf = append(d.buf, rest...)
			return lines
		}

		line := rest[:idx]
		rest = rest[idx+1:]

		if len(d.buf) > 0 {
			line = append(d.buf, line...)
			d.buf = nil
		}
		line = bytes.TrimSuffix(line, []byte("\r"))
		lines = append(lines, string(line))
	}
}

// Pending reports whether the decoder holds a partial, unterminated line.
func (d *LineDecoder) Pending() bool {
	return len(d.buf) > 0
}

// Reset discards any buffered partial line.
//
// Called at end of stream: an unterminated trailing buffer cannot be a
// complete protocol frame, so it is dropped rather than emitted.
func (d *LineDecoder) Reset() {
	d.buf = nil
}
