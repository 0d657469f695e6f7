package ai

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	apperrors "github.com/jcommit/jcommit/internal/pkg/errors"
)

const readChunkSize = 4096

// FragmentStream is a lazily consumed sequence of message fragments.
type FragmentStream interface {
	// Recv returns the next fragment, or io.EOF at the end of the stream.
	Recv() (string, error)
	Close() error
}

var _ FragmentStream = (*CompletionStream)(nil)

// CompletionStream yields the fragments of one streamed completion.
// It is not safe for concurrent use and cannot be restarted.
type CompletionStream struct {
	ctx     context.Context
	body    io.ReadCloser
	decoder *StreamDecoder
	queue   []string
	buf     []byte
	eof     bool
	closed  bool

	started   time.Time
	fragments int
}

func newCompletionStream(ctx context.Context, body io.ReadCloser) *CompletionStream {
	return &CompletionStream{
		ctx:     ctx,
		body:    body,
		decoder: NewStreamDecoder(),
		buf:     make([]byte, readChunkSize),
		started: time.Now(),
	}
}

// Recv returns the next fragment. It returns io.EOF once the stream has
// ended, either through the [DONE] sentinel or the end of the body.
func (s *CompletionStream) Recv() (string, error) {
	for {
		if len(s.queue) > 0 {
			frag := s.queue[0]
			s.queue = s.queue[1:]
			s.fragments++
			return frag, nil
		}
		if s.closed || s.eof || s.decoder.Done() {
			s.finish()
			return "", io.EOF
		}

		n, err := s.body.Read(s.buf)
		if n > 0 {
			s.queue = append(s.queue, s.decoder.Feed(s.buf[:n])...)
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			s.eof = true
			s.queue = append(s.queue, s.decoder.Flush()...)
			continue
		}
		if ctxErr := s.ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if s.decoder.Done() {
			continue
		}
		return "", apperrors.NewNetworkError(err)
	}
}

// Close releases the underlying connection. Fragments not yet received
// are discarded.
func (s *CompletionStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.queue = nil
	return s.body.Close()
}

// Skipped returns the number of malformed frames dropped so far.
func (s *CompletionStream) Skipped() int {
	return s.decoder.Skipped()
}

func (s *CompletionStream) finish() {
	if s.started.IsZero() {
		return
	}
	apperrors.LogStreamEnd(s.fragments, s.decoder.Skipped(), time.Since(s.started))
	s.started = time.Time{}
}

// Collect drains the stream, passing each fragment to onFragment (which
// may be nil), and returns the concatenated message. The stream is closed
// on return.
func Collect(stream FragmentStream, onFragment func(string)) (string, error) {
	defer stream.Close()

	var sb strings.Builder
	for {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(frag)
		if onFragment != nil {
			onFragment(frag)
		}
	}
}
