package player

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/grafov/m3u8"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// segmented is a sequential reader over the media segments of an HLS
// playlist. Segments are fetched by a background goroutine into a pipe.
type segmented struct {
	pr     *io.PipeReader
	cancel context.CancelFunc
	done   chan struct{}
	ext    string
	total  time.Duration
}

func (s *segmented) Read(b []byte) (int, error) { return s.pr.Read(b) }

func (s *segmented) Close() error {
	s.cancel()
	err := s.pr.Close()
	<-s.done
	return err
}

type segment struct {
	uri      string
	duration time.Duration
}

// openSegmented resolves a master or media playlist to its segment list
// and starts fetching. The token goes in an Authorization header. A
// playlist without an end tag plays the segments listed when it was opened.
func openSegmented(ctx context.Context, client *http.Client, locator, token string, log logrus.FieldLogger) (*segmented, error) {
	segs, closed, err := loadMediaPlaylist(ctx, client, locator, token, 0)
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("playlist %s: no segments", locator)
	}
	ext := extOf(segs[0].uri)
	if !Supported(segs[0].uri) {
		return nil, fmt.Errorf("%w: segment %s", ErrUnsupportedFormat, ext)
	}

	var total time.Duration
	if closed {
		total = lo.SumBy(segs, func(s segment) time.Duration { return s.duration })
	}

	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	s := &segmented{pr: pr, cancel: cancel, done: make(chan struct{}), ext: ext, total: total}

	go func() {
		defer close(s.done)
		for i, seg := range segs {
			n, err := fetchSegment(ctx, client, seg.uri, token, pw)
			if err != nil {
				pw.CloseWithError(fmt.Errorf("segment %d: %w", i, err))
				return
			}
			log.WithFields(logrus.Fields{
				"segment": i,
				"size":    humanize.Bytes(uint64(n)),
			}).Debug("segment fetched")
		}
		pw.Close()
	}()
	return s, nil
}

const maxPlaylistDepth = 2

func loadMediaPlaylist(ctx context.Context, client *http.Client, locator, token string, depth int) ([]segment, bool, error) {
	if depth >= maxPlaylistDepth {
		return nil, false, fmt.Errorf("playlist %s: nested too deep", locator)
	}
	base, err := url.Parse(locator)
	if err != nil {
		return nil, false, err
	}

	body, err := get(ctx, client, locator, token)
	if err != nil {
		return nil, false, err
	}
	defer body.Close()

	pl, kind, err := m3u8.DecodeFrom(body, false)
	if err != nil {
		return nil, false, fmt.Errorf("parse playlist %s: %w", locator, err)
	}

	switch kind {
	case m3u8.MASTER:
		master := pl.(*m3u8.MasterPlaylist)
		variants := lo.Filter(master.Variants, func(v *m3u8.Variant, _ int) bool { return v != nil && v.URI != "" })
		if len(variants) == 0 {
			return nil, false, fmt.Errorf("playlist %s: no variants", locator)
		}
		best := lo.MaxBy(variants, func(a, b *m3u8.Variant) bool { return a.Bandwidth > b.Bandwidth })
		ref, err := base.Parse(best.URI)
		if err != nil {
			return nil, false, err
		}
		return loadMediaPlaylist(ctx, client, ref.String(), token, depth+1)

	case m3u8.MEDIA:
		media := pl.(*m3u8.MediaPlaylist)
		var segs []segment
		for _, ms := range media.Segments {
			if ms == nil {
				continue
			}
			ref, err := base.Parse(ms.URI)
			if err != nil {
				return nil, false, err
			}
			segs = append(segs, segment{
				uri:      ref.String(),
				duration: time.Duration(ms.Duration * float64(time.Second)),
			})
		}
		return segs, media.Closed, nil

	default:
		return nil, false, fmt.Errorf("playlist %s: unknown type", locator)
	}
}

func get(ctx context.Context, client *http.Client, locator, token string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", locator, resp.Status)
	}
	return resp.Body, nil
}

func fetchSegment(ctx context.Context, client *http.Client, locator, token string, w io.Writer) (int64, error) {
	body, err := get(ctx, client, locator, token)
	if err != nil {
		return 0, err
	}
	defer body.Close()
	return io.Copy(w, body)
}
