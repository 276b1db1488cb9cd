package format

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/strataconf/strata/merge"
)

func TestByExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want string
		ok   bool
	}{
		{ext: "json", want: "json", ok: true},
		{ext: ".json", want: "json", ok: true},
		{ext: ".YAML", want: "yaml", ok: true},
		{ext: "yml", want: "yaml", ok: true},
		{ext: ".toml", want: "toml", ok: true},
		{ext: ".ini", ok: false},
		{ext: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			c, ok := ByExtension(tt.ext)
			if ok != tt.ok {
				t.Fatalf("ByExtension(%q) ok = %v, want %v", tt.ext, ok, tt.ok)
			}
			if ok && c.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", c.Name(), tt.want)
			}
			if Supported(tt.ext) != tt.ok {
				t.Errorf("Supported(%q) = %v, want %v", tt.ext, !tt.ok, tt.ok)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{
			name: "json",
			ext:  "json",
			data: `{"plugins": ["logging"], "settings": {"server": {"port": 8080}}}`,
		},
		{
			name: "yaml",
			ext:  "yaml",
			data: "plugins:\n  - logging\nsettings:\n  server:\n    port: 8080\n",
		},
		{
			name: "toml",
			ext:  "toml",
			data: "plugins = [\"logging\"]\n\n[settings.server]\nport = 8080\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, err := Decode(tt.ext, []byte(tt.data))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}

			plugins, ok := frag["plugins"].([]any)
			if !ok || len(plugins) != 1 || plugins[0] != "logging" {
				t.Errorf("plugins = %#v, want [logging] as []any", frag["plugins"])
			}

			settings, ok := frag["settings"].(map[string]any)
			if !ok {
				t.Fatalf("settings = %#v, want map", frag["settings"])
			}
			server, ok := settings["server"].(map[string]any)
			if !ok {
				t.Fatalf("settings.server = %#v, want map", settings["server"])
			}
			// Decoders disagree on the numeric type (float64 for JSON,
			// int/int64 for YAML and TOML); compare loosely.
			switch port := server["port"].(type) {
			case float64:
				if port != 8080 {
					t.Errorf("port = %v, want 8080", port)
				}
			case int:
				if port != 8080 {
					t.Errorf("port = %v, want 8080", port)
				}
			case int64:
				if port != 8080 {
					t.Errorf("port = %v, want 8080", port)
				}
			default:
				t.Errorf("port has unexpected type %T", server["port"])
			}
		})
	}

	t.Run("unsupported extension", func(t *testing.T) {
		if _, err := Decode("ini", []byte("k=v")); err == nil {
			t.Error("Decode(ini) should fail")
		}
	})

	t.Run("malformed input", func(t *testing.T) {
		if _, err := Decode("json", []byte("{not json")); err == nil {
			t.Error("Decode() should fail on malformed input")
		}
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	frag := merge.Fragment{
		"plugins": []any{"logging", "metrics"},
		"settings": map[string]any{
			"name":  "svc-a",
			"debug": true,
		},
	}

	for _, ext := range []string{"json", "yaml", "toml"} {
		t.Run(ext, func(t *testing.T) {
			data, err := Encode(ext, frag)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			got, err := Decode(ext, data)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(frag, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
