package imgerr

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestWrapKeepsExistingKind(t *testing.T) {
	inner := New(KindCorrupt, "decode png", "bad chunk")
	wrapped := fmt.Errorf("job 3: %w", inner)

	got := Wrap(KindUnknown, "pipeline", wrapped)
	if got.Kind != KindCorrupt {
		t.Errorf("kind: got %s, want %s", got.Kind, KindCorrupt)
	}
	if got.Op != "decode png" {
		t.Errorf("op: got %q", got.Op)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(KindCorrupt, "x", nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if As(nil, KindCorrupt) != nil {
		t.Error("As(nil) should be nil")
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", Wrap(KindCorrupt, "decode jpeg", io.ErrUnexpectedEOF))

	if !errors.Is(err, ErrCorrupt) {
		t.Error("errors.Is(err, ErrCorrupt) = false")
	}
	if errors.Is(err, ErrCancelled) {
		t.Error("errors.Is(err, ErrCancelled) = true")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("underlying error lost")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{New(KindUnsupportedMode, "encode avif", "no lossless"), KindUnsupportedMode},
		{fmt.Errorf("x: %w", ErrInvalidInput), KindInvalidInput},
		{errors.New("plain"), KindUnknown},
		{nil, KindUnknown},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v): got %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestKindNamesRoundTrip(t *testing.T) {
	for k := KindUnknown; k <= KindIO; k++ {
		if got := ParseKind(k.String()); got != k {
			t.Errorf("ParseKind(%q): got %v, want %v", k.String(), got, k)
		}
	}
	if ParseKind("nope") != KindUnknown {
		t.Error("unknown name should parse to KindUnknown")
	}
}

func TestMessage(t *testing.T) {
	e := New(KindInvalidParameters, "transform crop", "rect %dx%d outside", 4, 4)
	if got, want := e.Message(), "transform crop: rect 4x4 outside"; got != want {
		t.Errorf("message: got %q, want %q", got, want)
	}
	if got, want := e.Error(), "transform crop: invalid_parameters: rect 4x4 outside"; got != want {
		t.Errorf("error: got %q, want %q", got, want)
	}
}
