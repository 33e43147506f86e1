package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"
)

// Archive layout:
//
//	magic "MUSL" | tag (1) | blake3(body) (32) | len(body) (8, big endian) | compressed body
//
// body is the CBOR encoding of archiveBody. The digest covers the
// uncompressed body so an archive can be recompressed without rehashing.
const (
	archiveMagic      = "MUSL"
	archiveHeaderSize = 4 + 1 + 32 + 8
	archiveVersion    = 1

	// An archive holds a handful of short tokens; anything past this is
	// not one of ours.
	maxArchiveBody = 64 << 20
)

var (
	ErrArchiveMagic  = errors.New("backup: not a musicalist archive")
	ErrArchiveDigest = errors.New("backup: digest mismatch")
)

// CompressionTag identifies how an archive body is compressed. The values
// are written into archives; do not renumber.
type CompressionTag uint8

const (
	CompressionNone CompressionTag = 0
	CompressionLZ4  CompressionTag = 1
	CompressionZstd CompressionTag = 2
)

func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

func ParseCompression(name string) (CompressionTag, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression: %q", name)
	}
}

type archiveEntry struct {
	_     struct{} `cbor:",toarray"`
	Key   string
	Value string
}

type archiveBody struct {
	_       struct{} `cbor:",toarray"`
	Version uint8
	Entries []archiveEntry
}

var archiveEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("backup: cbor encoder initialization failed: " + err.Error())
	}
	return em
}()

// Export writes every key in b to w as one archive. It returns the number
// of entries written.
func Export(ctx context.Context, b Backend, w io.Writer, tag CompressionTag) (int, error) {
	keys, err := b.Keys(ctx, "")
	if err != nil {
		return 0, err
	}
	body := archiveBody{Version: archiveVersion, Entries: make([]archiveEntry, 0, len(keys))}
	for _, k := range keys {
		v, ok, err := b.Get(ctx, k)
		if err != nil {
			return 0, fmt.Errorf("backup: read %q: %w", k, err)
		}
		if ok {
			body.Entries = append(body.Entries, archiveEntry{Key: k, Value: v})
		}
	}
	raw, err := archiveEncMode.Marshal(body)
	if err != nil {
		return 0, err
	}

	compressed, used, err := compressBody(raw, tag)
	if err != nil {
		return 0, err
	}
	digest := blake3.Sum256(raw)

	var hdr bytes.Buffer
	hdr.WriteString(archiveMagic)
	hdr.WriteByte(byte(used))
	hdr.Write(digest[:])
	_ = binary.Write(&hdr, binary.BigEndian, uint64(len(raw)))

	if _, err := w.Write(hdr.Bytes()); err != nil {
		return 0, err
	}
	if _, err := w.Write(compressed); err != nil {
		return 0, err
	}
	return len(body.Entries), nil
}

// Import verifies the archive in r and replaces the contents of b with it.
// Nothing is written unless the whole archive checks out.
func Import(ctx context.Context, b Backend, r io.Reader) (int, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxArchiveBody+archiveHeaderSize+1))
	if err != nil {
		return 0, err
	}
	body, err := readArchive(data)
	if err != nil {
		return 0, err
	}

	existing, err := b.Keys(ctx, "")
	if err != nil {
		return 0, err
	}
	keep := make(map[string]struct{}, len(body.Entries))
	for _, e := range body.Entries {
		keep[e.Key] = struct{}{}
	}
	for _, k := range existing {
		if _, ok := keep[k]; ok {
			continue
		}
		if err := b.Delete(ctx, k); err != nil {
			return 0, fmt.Errorf("backup: delete %q: %w", k, err)
		}
	}
	for _, e := range body.Entries {
		if err := b.Set(ctx, e.Key, e.Value); err != nil {
			return 0, fmt.Errorf("backup: write %q: %w", e.Key, err)
		}
	}
	return len(body.Entries), nil
}

func readArchive(data []byte) (archiveBody, error) {
	if len(data) < archiveHeaderSize || string(data[:4]) != archiveMagic {
		return archiveBody{}, ErrArchiveMagic
	}
	tag := CompressionTag(data[4])
	var digest [32]byte
	copy(digest[:], data[5:37])
	size := binary.BigEndian.Uint64(data[37:45])
	if size > maxArchiveBody {
		return archiveBody{}, fmt.Errorf("backup: body too large (%d bytes)", size)
	}

	raw, err := decompressBody(data[archiveHeaderSize:], tag, int(size))
	if err != nil {
		return archiveBody{}, err
	}
	if blake3.Sum256(raw) != digest {
		return archiveBody{}, ErrArchiveDigest
	}
	var body archiveBody
	if err := cbor.Unmarshal(raw, &body); err != nil {
		return archiveBody{}, fmt.Errorf("backup: body: %w", err)
	}
	if body.Version != archiveVersion {
		return archiveBody{}, fmt.Errorf("backup: unsupported archive version %d", body.Version)
	}
	return body, nil
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("backup: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("backup: zstd decoder initialization failed: " + err.Error())
	}
}

// compressBody falls back to CompressionNone when tag does not shrink raw.
func compressBody(raw []byte, tag CompressionTag) ([]byte, CompressionTag, error) {
	switch tag {
	case CompressionNone:
		return raw, CompressionNone, nil
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, dst, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("lz4 compress: %w", err)
		}
		if n == 0 || n >= len(raw) {
			return raw, CompressionNone, nil
		}
		return dst[:n], CompressionLZ4, nil
	case CompressionZstd:
		out := zstdEncoder.EncodeAll(raw, nil)
		if len(out) >= len(raw) {
			return raw, CompressionNone, nil
		}
		return out, CompressionZstd, nil
	default:
		return nil, 0, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

func decompressBody(compressed []byte, tag CompressionTag, size int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(compressed) != size {
			return nil, fmt.Errorf("backup: size %d does not match header %d", len(compressed), size)
		}
		return compressed, nil
	case CompressionLZ4:
		dst := make([]byte, size)
		n, err := lz4.UncompressBlock(compressed, dst)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if n != size {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", n, size)
		}
		return dst, nil
	case CompressionZstd:
		out, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(out) != size {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(out), size)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

// ExportFile writes the archive atomically to path.
func ExportFile(ctx context.Context, b Backend, path string, tag CompressionTag) (int, error) {
	var buf bytes.Buffer
	n, err := Export(ctx, b, &buf, tag)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(filepath.Clean(path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	if err := atomicWriteFile(dir, ".musicalist-backup.*.tmp", path, buf.Bytes(), 0o600); err != nil {
		return 0, err
	}
	return n, nil
}

func ImportFile(ctx context.Context, b Backend, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return Import(ctx, b, f)
}
