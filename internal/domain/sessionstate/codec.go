package sessionstate

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression formats for the environment payload
const (
	CompressionZstd = "zstd"
	CompressionGzip = "gzip"
	CompressionNone = "none"
)

// fileExt returns the environment file extension for a format
func fileExt(format string) (string, error) {
	switch format {
	case CompressionZstd:
		return ".zst", nil
	case CompressionGzip:
		return ".gz", nil
	case CompressionNone:
		return ".bin", nil
	default:
		return "", fmt.Errorf("unknown compression %q", format)
	}
}

func compress(format string, data []byte) ([]byte, error) {
	switch format {
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd failed: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
	case CompressionGzip:
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if _, err := gz.Write(data); err != nil {
			return nil, fmt.Errorf("gzip failed: %w", err)
		}
		if err := gz.Close(); err != nil {
			return nil, fmt.Errorf("gzip failed: %w", err)
		}
		return buf.Bytes(), nil
	case CompressionNone:
		return data, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", format)
	}
}

func decompress(format string, data []byte) ([]byte, error) {
	switch format {
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd failed: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd failed: %w", err)
		}
		return out, nil
	case CompressionGzip:
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip failed: %w", err)
		}
		defer gz.Close()
		out, err := io.ReadAll(gz)
		if err != nil {
			return nil, fmt.Errorf("gzip failed: %w", err)
		}
		return out, nil
	case CompressionNone:
		return data, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", format)
	}
}
