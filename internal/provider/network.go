package provider

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cbegin/audiograph/internal/apperr"
	"github.com/cbegin/audiograph/internal/format"
)

// NetworkProvider feeds a ring buffer from a background download
// goroutine supervised by an errgroup.Group, so a broken connection's
// error surfaces through Close() instead of silently stalling Read.
// Reads block up to a timeout waiting for data, then return short
// (0 frames, no error) rather than blocking the audio thread forever.
type NetworkProvider struct {
	base
	fmtv       format.AudioFormat
	ring       *ringBuffer
	group      *errgroup.Group
	cancel     context.CancelFunc
	readTimeout time.Duration
	ended      bool
	pos        int64
}

// Fetcher supplies successive chunks of already-PCM (format fmtv) float32
// samples. Returning a nil slice with a nil error ends the stream; a
// non-nil error stops the prefetch and is returned by Close.
type Fetcher func(ctx context.Context) ([]float32, error)

// NewNetworkProvider starts the background prefetch goroutine immediately.
func NewNetworkProvider(fmtv format.AudioFormat, ringFrames int, readTimeout time.Duration, fetch Fetcher) *NetworkProvider {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	np := &NetworkProvider{
		fmtv:        fmtv,
		ring:        newRingBuffer(ringFrames * fmtv.Channels),
		group:       g,
		cancel:      cancel,
		readTimeout: readTimeout,
	}
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			chunk, err := fetch(gctx)
			if err != nil {
				return apperr.Wrap(apperr.KindDecoderError, "network fetch failed", err)
			}
			if chunk == nil {
				np.ring.closeWrite()
				return nil
			}
			np.ring.write(chunk)
		}
	})
	return np
}

func (n *NetworkProvider) Format() format.AudioFormat  { return n.fmtv }
func (n *NetworkProvider) Position() int64             { return n.pos }
func (n *NetworkProvider) LengthFrames() (int64, bool) { return 0, false }
func (n *NetworkProvider) CanSeek() bool               { return false }

func (n *NetworkProvider) Read(dst []float32) (int, error) {
	got, closed := n.ring.readWithTimeout(dst, n.readTimeout)
	if got == 0 && closed {
		if !n.ended {
			n.ended = true
			n.fireEnd()
		}
		return 0, nil
	}
	n.pos += int64(got / n.fmtv.Channels)
	if got > 0 {
		n.firePosition(n.pos)
	}
	return got / n.fmtv.Channels, nil
}

func (n *NetworkProvider) Seek(int64) error {
	return apperr.New(apperr.KindNotSeekable, "network provider is forward-only")
}

// Close stops the background fetch and returns its terminal error, if any.
func (n *NetworkProvider) Close() error {
	n.cancel()
	return n.group.Wait()
}
