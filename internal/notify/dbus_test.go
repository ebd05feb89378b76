//go:build linux

package notify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/duet/internal/media"
)

func requireSessionBus(t *testing.T) Notifier {
	t.Helper()
	// Skip if no D-Bus session (CI environment)
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no D-Bus session available")
	}
	n, err := New()
	require.NoError(t, err)
	return n
}

func TestDBusNotifier_NotifyAndReplace(t *testing.T) {
	n := requireSessionBus(t)

	id1, err := n.Notify(Notification{Title: "Track 1", Body: "Artist - Album", Timeout: 2000})
	if err != nil {
		t.Skipf("no notification server: %v", err)
	}
	require.NotZero(t, id1)

	id2, err := n.Notify(Notification{Title: "Track 2", Timeout: 1000, ReplacesID: id1})
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "replacing keeps the id")

	assert.NoError(t, n.Close(id2))
}

func TestTrackNotification_UsesArtNextToFile(t *testing.T) {
	dir := t.TempDir()
	cover := filepath.Join(dir, "folder.jpg")
	require.NoError(t, os.WriteFile(cover, []byte("fake"), 0o600))

	got := trackNotification(media.Track{Name: "x", Path: filepath.Join(dir, "x.flac")}, 0)
	assert.Equal(t, cover, got.Icon)
}
