package eris

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func TestStreamReader_ReadAll(t *testing.T) {
	ctx := context.Background()
	secret := Secret{}
	blockSize := BlockSize1KiB
	content := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 200)

	store := newMemBlockStore()
	rc, err := EncodeAll(ctx, store, bytes.NewReader(content), secret, blockSize)
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}

	reader := NewStreamReader(fetchFromMemBlockStore(store), rc)
	got, err := io.ReadAll(&contextReaderAdapter{ctx: ctx, r: reader})
	if err != nil {
		t.Fatalf("reading all: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("read content does not match original: got %d bytes, want %d", len(got), len(content))
	}
}

func TestStreamReader_SeekAndLength(t *testing.T) {
	ctx := context.Background()
	secret := Secret{}
	blockSize := BlockSize1KiB
	content := bytes.Repeat([]byte("0123456789"), 500)

	store := newMemBlockStore()
	rc, err := EncodeAll(ctx, store, bytes.NewReader(content), secret, blockSize)
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}

	reader := NewStreamReader(fetchFromMemBlockStore(store), rc)

	length, err := reader.Length(ctx)
	if err != nil {
		t.Fatalf("Length: %v", err)
	}
	if length != int64(len(content)) {
		t.Errorf("Length() = %d, want %d", length, len(content))
	}

	pos, err := reader.SeekContext(ctx, 100, io.SeekStart)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if pos != 100 {
		t.Fatalf("Seek returned %d, want 100", pos)
	}

	buf := make([]byte, 10)
	n, err := reader.ReadContext(ctx, buf)
	if err != nil {
		t.Fatalf("ReadContext: %v", err)
	}
	if n != 10 {
		t.Fatalf("ReadContext returned %d bytes, want 10", n)
	}
	if !bytes.Equal(buf, content[100:110]) {
		t.Errorf("read %q, want %q", buf, content[100:110])
	}

	if got := reader.Tell(); got != 110 {
		t.Errorf("Tell() = %d, want 110", got)
	}
}

func TestStreamReader_ReadLine(t *testing.T) {
	ctx := context.Background()
	secret := Secret{}
	blockSize := BlockSize1KiB
	content := []byte("first line\nsecond line\nthird line")

	store := newMemBlockStore()
	rc, err := EncodeAll(ctx, store, bytes.NewReader(content), secret, blockSize)
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}

	reader := NewStreamReader(fetchFromMemBlockStore(store), rc)

	var lines [][]byte
	for {
		line, err := reader.ReadLineContext(ctx)
		if err == io.EOF {
			if line != nil {
				lines = append(lines, line)
			}
			break
		}
		if err != nil {
			t.Fatalf("ReadLineContext: %v", err)
		}
		lines = append(lines, line)
	}

	want := []string{"first line", "second line", "third line"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), lines)
	}
	for i, line := range lines {
		if string(line) != want[i] {
			t.Errorf("line %d: got %q, want %q", i, line, want[i])
		}
	}
}

func TestStreamReader_EmptyContent(t *testing.T) {
	ctx := context.Background()
	secret := Secret{}
	blockSize := BlockSize1KiB

	store := newMemBlockStore()
	rc, err := EncodeAll(ctx, store, bytes.NewReader(nil), secret, blockSize)
	if err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	if rc.Level != 0 {
		t.Errorf("empty content capability level = %d, want 0", rc.Level)
	}

	reader := NewStreamReader(fetchFromMemBlockStore(store), rc)
	length, err := reader.Length(ctx)
	if err != nil {
		t.Fatalf("Length: %v", err)
	}
	if length != 0 {
		t.Errorf("Length() = %d, want 0", length)
	}

	buf := make([]byte, 10)
	n, err := reader.ReadContext(ctx, buf)
	if n != 0 || err != io.EOF {
		t.Errorf("ReadContext on empty content = (%d, %v), want (0, io.EOF)", n, err)
	}
}

// contextReaderAdapter adapts a ReadContext-shaped reader to io.Reader.
type contextReaderAdapter struct {
	ctx context.Context
	r   *StreamReader
}

func (a *contextReaderAdapter) Read(p []byte) (int, error) {
	return a.r.ReadContext(a.ctx, p)
}
