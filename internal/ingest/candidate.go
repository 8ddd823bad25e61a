package ingest

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/ginjaninja78/ligaconv/internal/identity"
	"github.com/ginjaninja78/ligaconv/internal/types"
)

// AcceptedExtension is the only file extension ingestion reads.
const AcceptedExtension = ".csv"

// Opener returns the content stream of an upload.
type Opener func(ctx context.Context) (io.ReadCloser, error)

// Candidate is one file offered to Store.Ingest. It is either a NewUpload or
// an AlreadyTracked reference.
type Candidate interface {
	candidate()
}

// NewUpload is a file whose content has not been decoded yet.
type NewUpload struct {
	Meta types.FileMeta
	Open Opener
}

// AlreadyTracked refers to a file the store already holds, e.g. one that came
// back from a restored session. It is never re-read.
type AlreadyTracked struct {
	ID string
}

func (NewUpload) candidate()      {}
func (AlreadyTracked) candidate() {}

// ID returns the identity of the upload.
func (u NewUpload) ID() string {
	return identity.Identify(u.Meta)
}

// FromPath builds a NewUpload for a file on disk. The file is stat'ed now and
// opened only when the store decides to read it.
func FromPath(path string) (NewUpload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return NewUpload{}, errors.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return NewUpload{}, errors.Errorf("%s is a directory", path)
	}

	return NewUpload{
		Meta: identity.MetaFromFileInfo(path, info),
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FromBytes builds a NewUpload over in-memory content.
func FromBytes(meta types.FileMeta, content []byte) NewUpload {
	return NewUpload{
		Meta: meta,
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

func hasAcceptedExtension(name string) bool {
	return strings.EqualFold(filepath.Ext(name), AcceptedExtension)
}
