package frame

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	cases := [][]byte{
		{0x01},
		bytes.Repeat([]byte{0xAB}, 1024),
		bytes.Repeat([]byte{0xCD}, MaxPayload),
	}
	for _, payload := range cases {
		encoded, err := AppendFrame(nil, payload)
		if err != nil {
			t.Fatalf("AppendFrame: %v", err)
		}
		got, consumed, err := Extract(encoded)
		if err != nil {
			t.Fatalf("Extract: %v", err)
		}
		if consumed != len(encoded) {
			t.Fatalf("consumed = %d, want %d", consumed, len(encoded))
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("payload mismatch: got %d bytes, want %d", len(got), len(payload))
		}
	}
}

func TestSplitAcrossBuffers(t *testing.T) {
	payload := bytes.Repeat([]byte{0x42}, 5000)
	encoded, err := AppendFrame(nil, payload)
	if err != nil {
		t.Fatal(err)
	}

	split := len(encoded) / 2
	var buf []byte
	buf = append(buf, encoded[:split]...)

	if _, _, err := Extract(buf); err != ErrNeedMore {
		t.Fatalf("expected ErrNeedMore on partial buffer, got %v", err)
	}

	buf = append(buf, encoded[split:]...)
	got, consumed, err := Extract(buf)
	if err != nil {
		t.Fatalf("Extract after completion: %v", err)
	}
	if consumed != len(buf) {
		t.Fatalf("consumed = %d, want %d", consumed, len(buf))
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("payload mismatch after incremental feed")
	}
}

func TestRejectsZeroLength(t *testing.T) {
	if _, err := AppendFrame(nil, nil); err != ErrZeroLength {
		t.Fatalf("expected ErrZeroLength, got %v", err)
	}
	var lenBuf [HeaderSize]byte // encodes length 0
	if _, _, err := Extract(lenBuf[:]); err != ErrZeroLength {
		t.Fatalf("expected ErrZeroLength on decode, got %v", err)
	}
}

func TestRejectsOversize(t *testing.T) {
	oversize := make([]byte, MaxPayload+1)
	if _, err := AppendFrame(nil, oversize); err != ErrTooLarge {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestExtractCopyIsIndependent(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	encoded, _ := AppendFrame(nil, payload)

	got, _, err := ExtractCopy(encoded)
	if err != nil {
		t.Fatal(err)
	}
	encoded[HeaderSize] = 0xFF // mutate the original buffer
	if got[0] != 1 {
		t.Fatal("ExtractCopy payload aliased the source buffer")
	}
}

func TestMultipleFramesInOneBuffer(t *testing.T) {
	var buf []byte
	buf, _ = AppendFrame(buf, []byte("first"))
	buf, _ = AppendFrame(buf, []byte("second"))

	p1, c1, err := Extract(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(p1) != "first" {
		t.Fatalf("got %q, want %q", p1, "first")
	}
	p2, c2, err := Extract(buf[c1:])
	if err != nil {
		t.Fatal(err)
	}
	if string(p2) != "second" {
		t.Fatalf("got %q, want %q", p2, "second")
	}
	if c1+c2 != len(buf) {
		t.Fatalf("consumed %d+%d != %d", c1, c2, len(buf))
	}
}
