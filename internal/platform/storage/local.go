// Copyright (c) 2026 GalleManga. All rights reserved.

/*
Package storage persists uploaded covers and chapter PDFs on the local disk.

Files are written under randomized UUIDv7 names inside the upload root and are
addressed by their public URL (e.g. "/uploads/covers/<id>.png"). The content type
is sniffed from the first bytes of the upload, never taken from the client.

Layout:

  - covers/: Manga cover images.
  - chapters/: Chapter PDFs.
*/
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/gallemanga/gallemanga/internal/platform/apperr"
	"github.com/gallemanga/gallemanga/internal/platform/metrics"
	"github.com/gallemanga/gallemanga/pkg/uuid"
)

// PublicPrefix is the URL path under which uploaded files are served.
const PublicPrefix = "/uploads/"

// sniffLength is the number of leading bytes inspected for content detection.
const sniffLength = 3072

// Kind selects the sub-directory and accepted content of an upload.
type Kind string

const (
	KindCover   Kind = "covers"
	KindChapter Kind = "chapters"
)

// StoredFile describes a file that has been written to disk.
type StoredFile struct {
	URL  string
	Path string
	MIME string
	Size int64
}

// LocalStore writes uploads below a root directory.
type LocalStore struct {
	root     string
	maxBytes int64
}

// NewLocalStore prepares the upload directories under root.
func NewLocalStore(root string, maxBytes int64) (*LocalStore, error) {
	absolute, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: invalid upload dir: %w", err)
	}

	for _, kind := range []Kind{KindCover, KindChapter} {
		if err := os.MkdirAll(filepath.Join(absolute, string(kind)), 0o755); err != nil {
			return nil, fmt.Errorf("storage: failed to create %s dir: %w", kind, err)
		}
	}

	return &LocalStore{root: absolute, maxBytes: maxBytes}, nil
}

// MaxBytes is the per-file size cap.
func (store *LocalStore) MaxBytes() int64 {
	return store.maxBytes
}

/*
Save sniffs and writes an upload of the given kind.

Covers must detect as image/*, chapters as application/pdf. Anything else, and
anything larger than the configured cap, is rejected with 422 and nothing is
left on disk.

Parameters:
  - context: context.Context (checked before the write starts)
  - kind: Kind
  - source: io.Reader

Returns:
  - *StoredFile: Location of the written file
  - error: apperr.Unprocessable on rejected content, internal errors otherwise
*/
func (store *LocalStore) Save(context context.Context, kind Kind, source io.Reader) (*StoredFile, error) {
	if err := context.Err(); err != nil {
		return nil, err
	}

	// 1. Sniff the leading bytes
	header := make([]byte, sniffLength)
	read, err := io.ReadFull(source, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("storage: failed to read upload: %w", err)
	}
	header = header[:read]

	if read == 0 {
		metrics.RecordUploadRejected(string(kind))
		return nil, apperr.Unprocessable("Uploaded file is empty")
	}

	detected := mimetype.Detect(header)
	if err := accept(kind, detected); err != nil {
		metrics.RecordUploadRejected(string(kind))
		return nil, err
	}

	// 2. Stream to a randomized name
	name := uuid.New() + detected.Extension()
	target := filepath.Join(store.root, string(kind), name)

	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create file: %w", err)
	}

	limited := io.LimitReader(io.MultiReader(bytes.NewReader(header), source), store.maxBytes+1)
	written, copyErr := io.Copy(file, limited)
	closeErr := file.Close()

	if copyErr != nil || closeErr != nil {
		_ = os.Remove(target)
		return nil, fmt.Errorf("storage: failed to write file: %w", errors.Join(copyErr, closeErr))
	}

	// 3. Enforce the size cap after the fact
	if written > store.maxBytes {
		_ = os.Remove(target)
		metrics.RecordUploadRejected(string(kind))
		return nil, apperr.Unprocessable("Uploaded file is too large")
	}

	return &StoredFile{
		URL:  PublicPrefix + string(kind) + "/" + name,
		Path: target,
		MIME: detected.String(),
		Size: written,
	}, nil
}

// Remove deletes the file behind a public URL. Unknown or missing files are ignored.
func (store *LocalStore) Remove(publicURL string) error {
	target, ok := store.Resolve(publicURL)
	if !ok {
		return nil
	}

	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: failed to remove %s: %w", publicURL, err)
	}
	return nil
}

// Resolve maps a public URL to its path on disk. It refuses anything that
// would escape the upload root.
func (store *LocalStore) Resolve(publicURL string) (string, bool) {
	relative, ok := strings.CutPrefix(publicURL, PublicPrefix)
	if !ok || relative == "" {
		return "", false
	}

	cleaned := path.Clean("/" + relative)[1:]
	if cleaned == "" || cleaned != relative {
		return "", false
	}

	return filepath.Join(store.root, filepath.FromSlash(cleaned)), true
}

// Handler serves uploaded files read-only, without directory listings.
func (store *LocalStore) Handler() http.Handler {
	return http.StripPrefix(strings.TrimSuffix(PublicPrefix, "/"), http.FileServer(filesOnly{http.Dir(store.root)}))
}

func accept(kind Kind, detected *mimetype.MIME) error {
	switch kind {
	case KindCover:
		if !strings.HasPrefix(detected.String(), "image/") {
			return apperr.Unprocessable("Cover must be an image")
		}
	case KindChapter:
		if !detected.Is("application/pdf") {
			return apperr.Unprocessable("Chapter file must be a PDF")
		}
	default:
		return apperr.Unprocessable("Unsupported upload kind")
	}
	return nil
}

// filesOnly hides directories from http.FileServer.
type filesOnly struct {
	fileSystem http.FileSystem
}

func (filesystem filesOnly) Open(name string) (http.File, error) {
	file, err := filesystem.fileSystem.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
