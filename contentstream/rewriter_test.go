package contentstream

import (
	"bytes"
	"testing"
)

func TestStripReferencesRemovesInvocation(t *testing.T) {
	stream := []byte("q\n1 0 0 1 50 50 cm\n/Im2 Do\nQ\n/Im1 Do\n")
	r := NewRewriter()

	out := r.StripReferences(stream, []string{"Im2"})

	if bytes.Contains(out, []byte("/Im2 Do")) {
		t.Fatalf("output still invokes /Im2: %q", out)
	}
	if bytes.Contains(out, []byte("/Im2")) {
		t.Fatalf("output still references /Im2: %q", out)
	}
	if !bytes.Contains(out, []byte("/Im1 Do")) {
		t.Fatalf("unrelated invocation was lost: %q", out)
	}
}

func TestStripReferencesIdempotent(t *testing.T) {
	stream := []byte("q\n0.24 0 0 0.24 0 0 cm\n/WM1 Do\nQ\nBT\n(hello) Tj\nET\n")
	r := NewRewriter()

	once := r.StripReferences(stream, []string{"WM1"})
	twice := r.StripReferences(once, []string{"WM1"})

	if !bytes.Equal(once, twice) {
		t.Fatalf("second application changed the stream:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestStripReferencesNoMatchReturnsInput(t *testing.T) {
	stream := []byte("BT\n/F1 12 Tf\n(hi) Tj\nET\n")
	r := NewRewriter()

	out := r.StripReferences(stream, []string{"Im9"})

	if !bytes.Equal(out, stream) {
		t.Fatalf("stream without references should be unchanged: %q", out)
	}
}

func TestStripReferencesDoesNotTouchPrefixedNames(t *testing.T) {
	// /Im21 must survive a removal of /Im2.
	stream := []byte("/Im21 Do\n/Im2 Do\n")
	r := NewRewriter()

	out := r.StripReferences(stream, []string{"Im2"})

	if !bytes.Contains(out, []byte("/Im21 Do")) {
		t.Fatalf("longer identifier was clobbered: %q", out)
	}
	if bytes.Contains(out, []byte("/Im2 Do")) {
		t.Fatalf("target identifier survived: %q", out)
	}
}

func TestStripReferencesCollapsesEmptyBrackets(t *testing.T) {
	stream := []byte("q\n/Im3 Do\nQ\n")
	r := NewRewriter()

	out := r.StripReferences(stream, []string{"Im3"})

	if bytes.Contains(out, []byte("q")) && bytes.Contains(out, []byte("Q")) {
		if emptyBracket.Match(out) {
			t.Fatalf("empty q/Q bracket left behind: %q", out)
		}
	}
}

func TestStripReferencesCollapsesBlankRuns(t *testing.T) {
	stream := []byte("1 0 0 1 0 0 cm /A Do\n\n\n\n0 g\n")
	r := NewRewriter()

	out := r.StripReferences(stream, []string{"A"})

	if bytes.Contains(out, []byte("\n\n\n")) {
		t.Fatalf("blank-line run not collapsed: %q", out)
	}
	if !bytes.Contains(out, []byte("0 g")) {
		t.Fatalf("unrelated operator lost: %q", out)
	}
}

func TestStripReferencesMultipleIdentifiers(t *testing.T) {
	stream := []byte("/A Do\n/B Do\n/C Do\n")
	r := NewRewriter()

	out := r.StripReferences(stream, []string{"A", "C"})

	if bytes.Contains(out, []byte("/A")) || bytes.Contains(out, []byte("/C")) {
		t.Fatalf("target references remain: %q", out)
	}
	if !bytes.Contains(out, []byte("/B Do")) {
		t.Fatalf("kept reference lost: %q", out)
	}
}
