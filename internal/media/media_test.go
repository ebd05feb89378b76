package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrack_CloneIsDeep(t *testing.T) {
	orig := Track{ID: "1", Name: "a", Artists: []string{"x", "y"}}
	c := orig.Clone()
	c.Artists[0] = "changed"
	c.Name = "b"

	assert.Equal(t, "x", orig.Artists[0])
	assert.Equal(t, "a", orig.Name)
}

func TestCloneAll(t *testing.T) {
	assert.Nil(t, CloneAll(nil))

	in := []Track{{ID: "1", Artists: []string{"a"}}}
	out := CloneAll(in)
	out[0].Artists[0] = "b"
	assert.Equal(t, "a", in[0].Artists[0])
}

func TestClonePtr(t *testing.T) {
	assert.Nil(t, ClonePtr(nil))

	in := &Track{ID: "1"}
	out := ClonePtr(in)
	require.NotNil(t, out)
	assert.NotSame(t, in, out)
	assert.True(t, in.Same(*out))
}

func TestParseRepeatMode(t *testing.T) {
	tests := []struct {
		in      string
		want    RepeatMode
		wantErr bool
	}{
		{"", RepeatOff, false},
		{"off", RepeatOff, false},
		{"ALL", RepeatAll, false},
		{" one ", RepeatOne, false},
		{"radio", RepeatOff, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRepeatMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) RepeatMode {
	t.Helper()
	m, err := ParseRepeatMode(s)
	require.NoError(t, err)
	return m
}

func TestRepeatMode_Next(t *testing.T) {
	assert.Equal(t, RepeatAll, RepeatOff.Next())
	assert.Equal(t, RepeatOne, RepeatAll.Next())
	assert.Equal(t, RepeatOff, RepeatOne.Next())
}

func TestNewTimeState(t *testing.T) {
	ts := NewTimeState(30*time.Second, 120*time.Second, 1)
	assert.Equal(t, 90*time.Second, ts.Remaining)
	assert.InDelta(t, 25.0, ts.Percentage, 0.001)
	assert.True(t, ts.Known())

	live := NewTimeState(5*time.Second, 0, 0)
	assert.Equal(t, Unbounded, live.Remaining)
	assert.Zero(t, live.Percentage)
	assert.False(t, live.Known())
}
