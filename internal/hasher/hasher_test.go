package hasher

import (
	"bytes"
	"testing"
)

func TestContentHash(t *testing.T) {
	data := []byte("imgpress")
	full := ContentHash(data, 0)
	if len(full) != 16 {
		t.Fatalf("full hash: got %d chars", len(full))
	}
	if got := ContentHash(data, 8); got != full[:8] {
		t.Errorf("truncated: got %s, want %s", got, full[:8])
	}
	if got := ContentHash(data, 64); got != full {
		t.Errorf("over-long length should return the full hash, got %s", got)
	}
	if ContentHash([]byte("other"), 0) == full {
		t.Error("different inputs hashed equal")
	}
	// xxhash64 of empty input.
	if got := ContentHash(nil, 0); got != "ef46db3751d8e999" {
		t.Errorf("empty: got %s", got)
	}
}

func TestContentHashReaderMatches(t *testing.T) {
	data := bytes.Repeat([]byte{1, 2, 3}, 10000)
	got, err := ContentHashReader(bytes.NewReader(data), 16)
	if err != nil {
		t.Fatal(err)
	}
	if want := ContentHash(data, 16); got != want {
		t.Errorf("reader: got %s, want %s", got, want)
	}
}
