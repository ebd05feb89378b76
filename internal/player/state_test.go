package player

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Stopped, "Stopped"},
		{Loading, "Loading"},
		{Ready, "Ready"},
		{Playing, "Playing"},
		{Paused, "Paused"},
		{Ended, "Ended"},
		{Failed, "Failed"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("State.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestState_HasSource(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{Stopped, false},
		{Loading, false},
		{Ready, true},
		{Playing, true},
		{Paused, true},
		{Ended, true},
		{Failed, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.HasSource(); got != tt.want {
				t.Errorf("State.HasSource() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_CanPlay(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{Stopped, false},
		{Ready, true},
		{Playing, false},
		{Paused, true},
		{Ended, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.CanPlay(); got != tt.want {
				t.Errorf("State.CanPlay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventKind_String(t *testing.T) {
	if got := EventTimeUpdate.String(); got != "timeupdate" {
		t.Errorf("EventTimeUpdate.String() = %q", got)
	}
	if got := EventKind(42).String(); got != "unknown" {
		t.Errorf("EventKind(42).String() = %q", got)
	}
}
