package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func seedBackend(t *testing.T, b Backend) map[string]string {
	t.Helper()
	ctx := context.Background()
	want := map[string]string{
		"users":         "AYJlYWxpY2VjYm9i",
		"content":       strings.Repeat("AYNlYWxpY2WBhAECAAU", 8),
		"content/alice": strings.Repeat("AYNlYWxpY2WBhAECAAU", 8),
		"content/bob":   "AYNjYm9igA",
	}
	for k, v := range want {
		if err := b.Set(ctx, k, v); err != nil {
			t.Fatalf("seed %q: %v", k, err)
		}
	}
	return want
}

func dump(t *testing.T, b Backend) map[string]string {
	t.Helper()
	ctx := context.Background()
	keys, err := b.Keys(ctx, "")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	out := map[string]string{}
	for _, k := range keys {
		v, _, err := b.Get(ctx, k)
		if err != nil {
			t.Fatalf("Get %q: %v", k, err)
		}
		out[k] = v
	}
	return out
}

func TestBackup_RoundTripEachCompression(t *testing.T) {
	ctx := context.Background()
	for _, tag := range []CompressionTag{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(tag.String(), func(t *testing.T) {
			src := NewMemory()
			want := seedBackend(t, src)

			var buf bytes.Buffer
			n, err := Export(ctx, src, &buf, tag)
			if err != nil {
				t.Fatalf("Export: %v", err)
			}
			if n != len(want) {
				t.Fatalf("exported %d entries, want %d", n, len(want))
			}
			if got := buf.String()[:4]; got != "MUSL" {
				t.Fatalf("magic: %q", got)
			}

			dst := NewMemory()
			_ = dst.Set(ctx, "content/stale", "x")
			if _, err := Import(ctx, dst, &buf); err != nil {
				t.Fatalf("Import: %v", err)
			}
			if got := dump(t, dst); !reflect.DeepEqual(got, want) {
				t.Fatalf("restored %v, want %v", got, want)
			}
		})
	}
}

func TestBackup_RejectsCorruption(t *testing.T) {
	ctx := context.Background()
	src := NewMemory()
	seedBackend(t, src)

	var buf bytes.Buffer
	if _, err := Export(ctx, src, &buf, CompressionNone); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data := buf.Bytes()
	data[len(data)-1] ^= 0xff

	dst := NewMemory()
	_ = dst.Set(ctx, "content", "keep")
	if _, err := Import(ctx, dst, bytes.NewReader(data)); !errors.Is(err, ErrArchiveDigest) {
		t.Fatalf("expected digest error, got %v", err)
	}
	if v, _, _ := dst.Get(ctx, "content"); v != "keep" {
		t.Fatalf("failed import must not touch the backend, got %q", v)
	}

	if _, err := Import(ctx, dst, strings.NewReader("nope")); !errors.Is(err, ErrArchiveMagic) {
		t.Fatalf("expected magic error, got %v", err)
	}
}

func TestBackup_FileRoundTripWithSQLite(t *testing.T) {
	ctx := context.Background()
	src := Store{Dir: t.TempDir()}
	want := seedBackend(t, src)

	path := filepath.Join(t.TempDir(), "nested", "backup.musl")
	if _, err := ExportFile(ctx, src, path, CompressionZstd); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}
	dst := Store{Dir: t.TempDir()}
	if _, err := ImportFile(ctx, dst, path); err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if got := dump(t, dst); !reflect.DeepEqual(got, want) {
		t.Fatalf("restored %v, want %v", got, want)
	}
}

func TestParseCompression(t *testing.T) {
	for _, name := range []string{"none", "lz4", "zstd"} {
		tag, err := ParseCompression(name)
		if err != nil || tag.String() != name {
			t.Fatalf("%s: got (%v,%v)", name, tag, err)
		}
	}
	if _, err := ParseCompression("gzip"); err == nil {
		t.Fatalf("expected error for gzip")
	}
}
