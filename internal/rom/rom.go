// Package rom reads CHIP-8 program images from disk. Images may be stored
// as raw bytecode or packed in a .zip, .gz or .7z archive, in which case the
// first file in the archive is used.
package rom

import (
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/cespare/xxhash"
)

// maxImageSize bounds how much is read from a file or archive entry. It is
// well above what fits in CHIP-8 memory, so oversized programs still reach
// the VM and are rejected there.
const maxImageSize = 64 << 10

var ErrEmptyArchive = errors.New("archive holds no files")

// Load reads the program image at path. A missing file yields an error
// wrapping fs.ErrNotExist.
func Load(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open rom %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("unable to stat rom %q: %w", path, err)
	}

	var r io.Reader
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".zip":
		zr, err := zip.NewReader(f, info.Size())
		if err != nil {
			return nil, fmt.Errorf("unable to open zip archive %q: %w", path, err)
		}

		rc, err := openFirst(zr.File)
		if err != nil {
			return nil, fmt.Errorf("zip archive %q: %w", path, err)
		}
		defer rc.Close()
		r = rc

	case ".7z":
		sr, err := sevenzip.NewReader(f, info.Size())
		if err != nil {
			return nil, fmt.Errorf("unable to open 7z archive %q: %w", path, err)
		}

		rc, err := openFirst(sr.File)
		if err != nil {
			return nil, fmt.Errorf("7z archive %q: %w", path, err)
		}
		defer rc.Close()
		r = rc

	case ".gz":
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("unable to open gzip stream %q: %w", path, err)
		}
		defer gr.Close()
		r = gr

	default:
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("unable to read rom %q: %w", path, err)
	}

	return data, nil
}

type archiveFile interface {
	FileInfo() fs.FileInfo
	Open() (io.ReadCloser, error)
}

// openFirst opens the first regular file of an archive listing.
func openFirst[F archiveFile](files []F) (io.ReadCloser, error) {
	for _, file := range files {
		if file.FileInfo().IsDir() {
			continue
		}

		return file.Open()
	}

	return nil, ErrEmptyArchive
}

// Fingerprint identifies a program image in logs.
func Fingerprint(program []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(program))
}
