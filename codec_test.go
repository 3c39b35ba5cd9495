package docstore

import (
	"path/filepath"
	"reflect"
	"testing"
)

// TestCodecRoundTrip exercises every codec and compression pairing through
// a full write, flush, reopen, read cycle.
func TestCodecRoundTrip(t *testing.T) {
	// Strings, bools and containers only: JSON and YAML agree on how these
	// decode into any, so one expected value serves all pairings.
	doc := map[string]any{
		"name":    "config",
		"enabled": true,
		"tags":    []any{"alpha", "beta"},
		"meta":    map[string]any{"owner": "me"},
	}

	tests := []struct {
		name  string
		codec Codec
		comp  Compression
	}{
		{"json zstd defaults", nil, nil},
		{"json indented plain", JSON{Indent: "  "}, NoCompression{}},
		{"yaml zstd", YAML{}, Zstd{}},
		{"yaml plain", YAML{}, NoCompression{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "store.db")
			opts := testOptions(ReadWrite)
			opts.Codec = tt.codec
			opts.Compression = tt.comp
			s, err := Open(path, opts)
			if err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			if err := s.Write(doc); err != nil {
				t.Fatalf("Write() failed: %v", err)
			}
			if err := s.Close(); err != nil {
				t.Fatalf("Close() failed: %v", err)
			}

			ropts := testOptions(ReadOnly)
			ropts.Codec = tt.codec
			ropts.Compression = tt.comp
			s, err = Open(path, ropts)
			if err != nil {
				t.Fatalf("reopen failed: %v", err)
			}
			defer s.Close()
			if got := s.Read(); !reflect.DeepEqual(got, doc) {
				t.Fatalf("Read() = %v, want %v", got, doc)
			}
		})
	}
}

func TestZstd(t *testing.T) {
	t.Run("shrinks repetitive data", func(t *testing.T) {
		data := make([]byte, 16*1024)
		for i := range data {
			data[i] = byte(i % 7)
		}
		z := Zstd{}
		packed, err := z.Compress(data)
		if err != nil {
			t.Fatalf("Compress() failed: %v", err)
		}
		if len(packed) >= len(data) {
			t.Fatalf("compressed size %d >= input size %d", len(packed), len(data))
		}
		out, err := z.Decompress(packed)
		if err != nil {
			t.Fatalf("Decompress() failed: %v", err)
		}
		if !reflect.DeepEqual(out, data) {
			t.Fatal("round trip did not preserve data")
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := (Zstd{}).Decompress([]byte("not a zstd frame")); err == nil {
			t.Fatal("Decompress() accepted garbage")
		}
	})
}
