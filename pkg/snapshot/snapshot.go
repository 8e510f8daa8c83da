package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vango-dev/dilithium/pkg/memdom"
)

// Format is a snapshot encoding.
type Format string

const (
	FormatHTML    Format = "html"
	FormatMsgpack Format = "msgpack"
)

// Sentinel errors for snapshot storage.
var (
	// ErrUnknownFormat is returned for a format other than html or msgpack.
	ErrUnknownFormat = errors.New("snapshot: unknown format")

	// ErrInvalidName is returned for empty names or names containing path separators.
	ErrInvalidName = errors.New("snapshot: invalid name")
)

// Store persists named snapshots.
type Store interface {
	// Put writes data under name and returns where it was written.
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatHTML, FormatMsgpack:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	if f == FormatMsgpack {
		return ".msgpack"
	}
	return ".html"
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatMsgpack {
		return "application/msgpack"
	}
	return "text/html; charset=utf-8"
}

// Encode serializes the tree rooted at n.
func Encode(n *memdom.Node, f Format) ([]byte, error) {
	switch f {
	case FormatHTML:
		return []byte(memdom.RenderHTML(n)), nil
	case FormatMsgpack:
		return memdom.MarshalMsgpack(n)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// Save encodes n and writes it to store as name plus the format's extension.
func Save(ctx context.Context, store Store, name string, n *memdom.Node, f Format) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	data, err := Encode(n, f)
	if err != nil {
		return "", err
	}
	return store.Put(ctx, name+f.Extension(), data, f.ContentType())
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Open returns a store for location: "s3://bucket/prefix" for S3,
// anything else is a local directory.
func Open(location string, cfg S3Config) (Store, error) {
	if rest, ok := strings.CutPrefix(location, "s3://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, fmt.Errorf("snapshot: missing bucket in %q", location)
		}
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		cfg.Bucket, cfg.Prefix = bucket, prefix
		return NewS3Store(NewS3Client(cfg), cfg.Bucket, cfg.Prefix), nil
	}
	return NewDiskStore(location)
}
