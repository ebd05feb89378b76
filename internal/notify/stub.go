//go:build !linux

package notify

import "errors"

// New fails on non-Linux platforms, where there is no notification
// server to talk to.
func New() (Notifier, error) {
	return nil, errors.New("desktop notifications need D-Bus")
}

func albumArt(string) string { return "" }
