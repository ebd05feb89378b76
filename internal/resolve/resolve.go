// Package resolve turns tracks into transport locators.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/llehouerou/duet/internal/media"
)

// ErrNoPath is returned for tracks without a path.
var ErrNoPath = errors.New("track has no path")

// Error is a failed resolution. The engine skips the track.
type Error struct {
	TrackID string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("resolve track %q: %v", e.TrackID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Resolver maps a track to a locator the transport can load.
type Resolver interface {
	Resolve(ctx context.Context, t media.Track) (string, error)
}

// Func adapts a function to Resolver.
type Func func(ctx context.Context, t media.Track) (string, error)

func (f Func) Resolve(ctx context.Context, t media.Track) (string, error) {
	return f(ctx, t)
}

// Base resolves a track path against a base URL or directory. Paths that
// are already absolute URLs, and paths with an empty base, pass through.
type Base struct {
	Base string
}

// Resolve joins the base and the track path. URL paths are escaped, so
// characters such as '#' and spaces survive the transport.
func (b Base) Resolve(ctx context.Context, t media.Track) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{TrackID: t.ID, Err: err}
	}
	if t.Path == "" {
		return "", &Error{TrackID: t.ID, Err: ErrNoPath}
	}
	if isAbsURL(t.Path) || b.Base == "" {
		return t.Path, nil
	}

	if !isAbsURL(b.Base) {
		return filepath.Join(b.Base, t.Path), nil
	}
	u, err := url.Parse(b.Base)
	if err != nil {
		return "", &Error{TrackID: t.ID, Err: fmt.Errorf("base url: %w", err)}
	}
	return u.JoinPath(t.Path).String(), nil
}

func isAbsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

var _ Resolver = Base{}
