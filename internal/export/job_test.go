package export

import "testing"

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusComplete, StatusCancelled, StatusFailed} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusPreparing, StatusRendering} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPreparing, StatusRendering, true},
		{StatusPreparing, StatusFailed, true},
		{StatusPreparing, StatusCancelled, true},
		{StatusPreparing, StatusComplete, false},
		{StatusRendering, StatusComplete, true},
		{StatusRendering, StatusFailed, true},
		{StatusRendering, StatusCancelled, true},
		{StatusRendering, StatusRendering, false},
		{StatusCancelled, StatusComplete, false},
		{StatusCancelled, StatusFailed, false},
		{StatusComplete, StatusCancelled, false},
		{StatusFailed, StatusRendering, false},
	}
	for _, tc := range cases {
		if got := canTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("canTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
