// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package snapshot keeps the local dataset file in step with a mounted source
copy (a NAS share or object-store mount) before the server starts.

The dataset is refreshed out-of-band by replacing the whole file. The server
reads a local copy, so the copy is refreshed only when the source is newer or
has a different size, and it is written to a temp file and renamed into place
so a reader never sees a half-written dataset.
*/
package snapshot

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Result describes one Sync run.
type Result struct {
	Copied  bool
	Bytes   int64
	Elapsed time.Duration
}

// Sync copies src to dst when dst is missing, older than src, or of a
// different size. The parent directory of dst is created when needed.
func Sync(ctx context.Context, src, dst string) (Result, error) {
	start := time.Now()

	srcInfo, err := os.Stat(src)
	if err != nil {
		return Result{}, fmt.Errorf("snapshot: source %s: %w", src, err)
	}
	if srcInfo.IsDir() {
		return Result{}, fmt.Errorf("snapshot: source %s is a directory", src)
	}

	// 1. Skip when the local copy is current
	if dstInfo, err := os.Stat(dst); err == nil {
		if dstInfo.Size() == srcInfo.Size() && !srcInfo.ModTime().After(dstInfo.ModTime()) {
			return Result{Bytes: dstInfo.Size(), Elapsed: time.Since(start)}, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Result{}, fmt.Errorf("snapshot: create target directory: %w", err)
	}

	// 2. Copy into a sibling temp file
	n, err := copyAtomic(ctx, src, dst)
	if err != nil {
		return Result{}, err
	}

	// 3. Carry the source mtime so the next run can compare
	if err := os.Chtimes(dst, time.Now(), srcInfo.ModTime()); err != nil {
		return Result{}, fmt.Errorf("snapshot: set mtime: %w", err)
	}

	return Result{Copied: true, Bytes: n, Elapsed: time.Since(start)}, nil
}

func copyAtomic(ctx context.Context, src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("snapshot: open source: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("snapshot: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	n, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: in})
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("snapshot: copy: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("snapshot: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("snapshot: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		return 0, fmt.Errorf("snapshot: rename into place: %w", err)
	}
	return n, nil
}

// ctxReader stops a long copy when the context is cancelled.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// Fingerprint identifies a dataset file by size and modification time. It is
// used to namespace cached aggregates so a replaced file never serves stale
// entries. A missing file yields an error.
func Fingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("snapshot: fingerprint %s: %w", path, err)
	}
	return fmt.Sprintf("%x-%x", info.Size(), info.ModTime().UnixNano()), nil
}
