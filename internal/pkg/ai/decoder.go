package ai

import (
	"bytes"
	"encoding/json"
)

const (
	dataPrefix   = "data:"
	doneSentinel = "[DONE]"
)

// streamFrame is the subset of a chat completion chunk the decoder reads.
// Content stays raw so a non-string value is dropped instead of failing
// the whole frame.
type streamFrame struct {
	Choices []struct {
		Delta struct {
			Content json.RawMessage `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// StreamDecoder turns server-sent-event bytes into completion fragments.
// Bytes may arrive in arbitrary chunks: an incomplete trailing line is
// buffered until the rest of it arrives.
type StreamDecoder struct {
	pending []byte
	done    bool
	skipped int
}

// NewStreamDecoder creates an empty decoder.
func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{}
}

// Feed consumes one transport chunk and returns the fragments of every
// line it completed, in order.
func (d *StreamDecoder) Feed(chunk []byte) []string {
	d.pending = append(d.pending, chunk...)

	var fragments []string
	for {
		idx := bytes.IndexByte(d.pending, '\n')
		if idx < 0 {
			break
		}
		line := d.pending[:idx]
		if frag, ok := d.decodeLine(line); ok {
			fragments = append(fragments, frag)
		}
		d.pending = d.pending[idx+1:]
	}

	// Reclaim the consumed prefix once the buffer is drained.
	if len(d.pending) == 0 {
		d.pending = nil
	}
	return fragments
}

// Flush decodes whatever is left in the buffer as a final line. It is
// called once the transport reaches end of stream.
func (d *StreamDecoder) Flush() []string {
	if len(d.pending) == 0 {
		return nil
	}
	line := d.pending
	d.pending = nil
	if frag, ok := d.decodeLine(line); ok {
		return []string{frag}
	}
	return nil
}

// Done reports whether the [DONE] sentinel has been seen.
func (d *StreamDecoder) Done() bool {
	return d.done
}

// Skipped returns the number of data frames dropped as malformed.
func (d *StreamDecoder) Skipped() int {
	return d.skipped
}

func (d *StreamDecoder) decodeLine(line []byte) (string, bool) {
	if d.done {
		return "", false
	}

	line = bytes.TrimRight(line, "\r")
	if !bytes.HasPrefix(line, []byte(dataPrefix)) {
		// Comments, event names, ids and blank separators.
		return "", false
	}

	payload := line[len(dataPrefix):]
	payload = bytes.TrimPrefix(payload, []byte(" "))

	if string(bytes.TrimSpace(payload)) == doneSentinel {
		d.done = true
		return "", false
	}

	var frame streamFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		d.skipped++
		return "", false
	}
	if len(frame.Choices) == 0 {
		return "", false
	}

	raw := frame.Choices[0].Delta.Content
	if len(raw) == 0 || raw[0] != '"' {
		// Role-only deltas, null content and non-string values.
		return "", false
	}

	var content string
	if err := json.Unmarshal(raw, &content); err != nil {
		d.skipped++
		return "", false
	}
	return content, true
}
