// Package identity derives the deduplication key of an uploaded file.
//
// The key is built from metadata only: name, modification time (epoch ms)
// and size, joined with "-". File content is never hashed, so two distinct
// files that share all three values are treated as the same file.
//
// "-" often appears in file names too. The key stays unambiguous because the
// last two fields are plain integers: splitting on the last two separators
// recovers name, mtime and size.
package identity

import (
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/ginjaninja78/ligaconv/internal/types"
)

// Separator joins the metadata fields.
const Separator = "-"

// Identify returns the stable id for a file. Identical metadata always
// yields the identical id.
func Identify(meta types.FileMeta) string {
	return meta.Name + Separator +
		strconv.FormatInt(meta.LastModified, 10) + Separator +
		strconv.FormatInt(meta.Size, 10)
}

// MetaFromFileInfo builds FileMeta for a file on disk. Only the base name
// takes part in the id, matching what a browser upload exposes.
func MetaFromFileInfo(path string, info fs.FileInfo) types.FileMeta {
	return types.FileMeta{
		Name:         filepath.Base(path),
		LastModified: info.ModTime().UnixMilli(),
		Size:         info.Size(),
	}
}
