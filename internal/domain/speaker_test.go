package domain

import "testing"

func TestNormalizeSpeaker(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Pablo", "pablo"},
		{"  Pablo  ", "pablo"},
		{"María", "maria"},
		{"JUAN", "juan"},
		{"Ana.", "ana"},
		{"'Pedro!'", "pedro"},
		{"¿Sofía?", "sofia"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeSpeaker(tc.in); got != tc.want {
			t.Errorf("NormalizeSpeaker(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeSpeakerIsStable(t *testing.T) {
	t.Parallel()

	// Normalizing an already-normalized identifier must be a no-op, since
	// store keys are derived from detector output that was normalized once.
	for _, name := range []string{"María López", "PABLO", "josé"} {
		once := NormalizeSpeaker(name)
		if twice := NormalizeSpeaker(once); twice != once {
			t.Errorf("NormalizeSpeaker not idempotent for %q: %q != %q", name, once, twice)
		}
	}
}
