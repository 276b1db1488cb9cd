package strata

import "testing"

func TestSource_Priority(t *testing.T) {
	tests := []struct {
		name   string
		source Source
		want   Priority
	}{
		{name: "default", source: SourceDefault, want: 1},
		{name: "filesystem", source: SourceFilesystem, want: 2},
		{name: "control-plane", source: SourceControlPlane, want: 3},
		{name: "runtime", source: SourceRuntime, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.source.Priority(); got != tt.want {
				t.Errorf("Priority() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSource_Ordering(t *testing.T) {
	// Verify that priorities are in ascending order
	sources := []Source{SourceDefault, SourceFilesystem, SourceControlPlane, SourceRuntime}
	for i := 0; i < len(sources)-1; i++ {
		if sources[i].Priority() >= sources[i+1].Priority() {
			t.Errorf("Priority[%d] (%d) >= Priority[%d] (%d), expected ascending order",
				i, sources[i].Priority(), i+1, sources[i+1].Priority())
		}
	}
}

func TestSource_StringRoundTrip(t *testing.T) {
	for _, src := range []Source{SourceDefault, SourceFilesystem, SourceControlPlane, SourceRuntime} {
		parsed, err := ParseSource(src.String())
		if err != nil {
			t.Errorf("ParseSource(%q) error = %v", src.String(), err)
			continue
		}
		if parsed != src {
			t.Errorf("ParseSource(%q) = %v, want %v", src.String(), parsed, src)
		}
	}

	if _, err := ParseSource("bogus"); err == nil {
		t.Error("ParseSource(bogus) should fail")
	}

	if !SourceRuntime.Valid() {
		t.Error("SourceRuntime.Valid() = false")
	}
	if Source(0).Valid() || Source(5).Valid() {
		t.Error("out-of-range sources reported valid")
	}
}

func TestKey_String(t *testing.T) {
	k := Key{ID: "svc-a", Type: "service"}
	if got := k.String(); got != "service:svc-a" {
		t.Errorf("String() = %q, want %q", got, "service:svc-a")
	}
}
