package player

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
	extOGG  = ".ogg"
	extHLS  = ".m3u8"
)

// source is a decoded stream plus whatever must be released with it.
type source struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	closers  []io.Closer
	seekable bool
	// fixed overrides the decoder length for segmented sources.
	fixed time.Duration
}

func (s *source) duration() time.Duration {
	if s.fixed > 0 {
		return s.fixed
	}
	n := s.streamer.Len()
	if n <= 0 {
		return 0
	}
	return s.format.SampleRate.D(n)
}

func (s *source) Close() {
	_ = s.streamer.Close()
	for _, c := range s.closers {
		_ = c.Close()
	}
}

// IsSegmented reports whether locator names an HLS playlist.
func IsSegmented(locator string) bool {
	return strings.EqualFold(extOf(locator), extHLS)
}

// IsRemote reports whether locator is an http(s) URL.
func IsRemote(locator string) bool {
	u, err := url.Parse(locator)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// Supported reports whether a direct locator has a decodable extension.
func Supported(locator string) bool {
	switch extOf(locator) {
	case extMP3, extFLAC, extWAV, extOGG:
		return true
	default:
		return false
	}
}

// extOf returns the lower-cased extension of a path or URL path.
func extOf(locator string) string {
	if u, err := url.Parse(locator); err == nil && u.Scheme != "" && u.Scheme != "file" {
		return strings.ToLower(path.Ext(u.Path))
	}
	return strings.ToLower(filepath.Ext(locator))
}

func (p *Player) open(locator string) (*source, error) {
	switch {
	case IsSegmented(locator):
		seg, err := openSegmented(context.Background(), p.client, locator, p.token, p.log)
		if err != nil {
			return nil, err
		}
		src, err := decode(seg, seg.ext)
		if err != nil {
			_ = seg.Close()
			return nil, err
		}
		src.closers = append(src.closers, seg)
		src.fixed = seg.total
		return src, nil

	case IsRemote(locator):
		return p.openRemote(locator)

	default:
		return openFile(locator)
	}
}

func openFile(name string) (*source, error) {
	ext := extOf(name)
	if !Supported(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	if ext == extFLAC {
		// Some taggers prepend ID3v2 to FLAC files.
		if err := skipID3v2(f); err != nil {
			f.Close()
			return nil, err
		}
	}
	src, err := decode(f, ext)
	if err != nil {
		f.Close()
		return nil, err
	}
	src.closers = append(src.closers, f)
	src.seekable = true
	return src, nil
}

func (p *Player) openRemote(locator string) (*source, error) {
	ext := extOf(locator)
	if !Supported(locator) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	resp, err := p.client.Get(withToken(locator, p.token))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", locator, resp.Status)
	}
	src, err := decode(resp.Body, ext)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	src.closers = append(src.closers, resp.Body)
	return src, nil
}

// withToken appends the access token as a query parameter.
func withToken(locator, token string) string {
	if token == "" {
		return locator
	}
	u, err := url.Parse(locator)
	if err != nil {
		return locator
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func decode(r io.ReadCloser, ext string) (*source, error) {
	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	switch ext {
	case extMP3:
		streamer, format, err = mp3.Decode(r)
	case extFLAC:
		streamer, format, err = flac.Decode(r)
	case extWAV:
		streamer, format, err = wav.Decode(r)
	case extOGG:
		streamer, format, err = vorbis.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ext, err)
	}
	return &source{streamer: streamer, format: format}, nil
}

// skipID3v2 skips an ID3v2 tag if present at the beginning of the file.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return err
	}
	if n < 10 || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// Syncsafe integer: 7 bits per byte.
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
