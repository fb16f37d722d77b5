package imagemeta

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/metadata"
)

// Write encodes the metadata back into the document.
//
// File documents are rewritten atomically: the new file is written to a
// temporary file next to the original, synced, and renamed over it. If any
// step fails the original stays untouched. Documents opened from memory
// replace their buffer.
//
//	err := doc.Write(
//	    imagemeta.WithBackup(".bak"),
//	    imagemeta.WithValidation(),
//	)
func (d *Document) Write(opts ...SaveOption) error {
	if d.Path == "" {
		return d.writeMemory("Write")
	}
	return d.saveAs("Write", d.Path, opts)
}

// SaveAs writes the document with its current metadata to path. The
// document keeps pointing at its original source unless path is the same
// file.
func (d *Document) SaveAs(path string, opts ...SaveOption) error {
	return d.saveAs("SaveAs", path, opts)
}

func (d *Document) writeMemory(op string) error {
	img, err := d.image(op)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var buf bytes.Buffer
	if err := d.codec.Encode(&buf, img, bytes.NewReader(d.data), int64(len(d.data))); err != nil {
		return codes.Classify(op, err)
	}
	d.data = buf.Bytes()
	d.Size = int64(len(d.data))
	if d.src != nil {
		d.src = bytes.NewReader(d.data)
	}
	d.log.Debug("metadata written", "size", d.Size)
	return nil
}

// lockPath names the lock file guarding writes to the file at abs.
func lockPath(abs string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs))
	return filepath.Join(os.TempDir(), "imagemeta-"+id.String()+".lock")
}

func (d *Document) saveAs(op, outputPath string, opts []SaveOption) error { //nolint:gocyclo // atomic file replacement is a fixed sequence of steps
	options := defaultSaveOptions()
	for _, opt := range opts {
		opt(options)
	}

	img, err := d.image(op)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(outputPath)
	if err != nil {
		return codes.Wrap(op, codes.FailedToMapFileForReadWrite, err, outputPath, err.Error())
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	lock := flock.New(lockPath(abs))
	locked, err := lock.TryLock()
	if err != nil {
		return codes.Wrap(op, codes.FailedToMapFileForReadWrite, err, outputPath, err.Error())
	}
	if !locked {
		return codes.New(op, codes.FailedToMapFileForReadWrite, outputPath, "locked by another writer")
	}
	defer lock.Unlock() //nolint:errcheck // the lock file is released with the process anyway

	var origInfo os.FileInfo
	if options.preserveModTime {
		if info, err := os.Stat(outputPath); err == nil {
			origInfo = info
		}
	}

	tempFile, err := os.CreateTemp(filepath.Dir(outputPath), ".imagemeta-*.tmp")
	if err != nil {
		return codes.Wrap(op, codes.FileOpenFailed, err, filepath.Dir(outputPath), "wb", reason(err))
	}
	tempPath := tempFile.Name()

	success := false
	defer func() {
		if !success {
			_ = tempFile.Close()    //nolint:errcheck // best effort cleanup
			_ = os.Remove(tempPath) //nolint:errcheck // best effort cleanup
		}
	}()

	if err := d.encodeTo(op, tempFile, img); err != nil {
		return err
	}
	if err := tempFile.Sync(); err != nil {
		return codes.Wrap(op, codes.ImageWriteFailed, err)
	}
	if err := tempFile.Close(); err != nil {
		return codes.Wrap(op, codes.ImageWriteFailed, err)
	}

	if options.backupSuffix != "" {
		backupPath := outputPath + options.backupSuffix
		if _, err := os.Stat(outputPath); err == nil {
			if err := os.Rename(outputPath, backupPath); err != nil {
				return codes.Wrap(op, codes.FileRenameFailed, err, outputPath, backupPath, reason(err))
			}
		}
	}

	if err := os.Rename(tempPath, outputPath); err != nil {
		return codes.Wrap(op, codes.FileRenameFailed, err, tempPath, outputPath, reason(err))
	}
	success = true

	if origInfo != nil {
		_ = os.Chtimes(outputPath, origInfo.ModTime(), origInfo.ModTime()) //nolint:errcheck // the file is written
	}

	if same, _ := samePath(d.Path, abs); same {
		if err := d.reopen(op); err != nil {
			return err
		}
	}

	d.log.Debug("metadata written", "output", outputPath, "backup", options.backupSuffix != "")

	if options.validate {
		if err := validateWritten(outputPath, img); err != nil {
			return codes.Wrap(op, codes.CorruptedMetadata, err, outputPath)
		}
	}
	return nil
}

// encodeTo runs the codec against the document source, reopening a closed
// file for the duration of the call.
func (d *Document) encodeTo(op string, f *os.File, img *metadata.Image) error {
	src, release, err := d.acquire(op)
	if err != nil {
		return err
	}
	defer release()
	if err := d.codec.Encode(f, img, src, d.Size); err != nil {
		return codes.Classify(op, err)
	}
	return nil
}

// reopen points the document at the rewritten file.
func (d *Document) reopen(op string) error {
	info, err := os.Stat(d.Path)
	if err != nil {
		return codes.Wrap(op, codes.FileOpenFailed, err, d.Path, "rb", reason(err))
	}
	if d.src == nil {
		d.Size = info.Size()
		return nil
	}
	f, err := os.Open(d.Path)
	if err != nil {
		return codes.Wrap(op, codes.FileOpenFailed, err, d.Path, "rb", reason(err))
	}
	if c, ok := d.src.(*os.File); ok {
		_ = c.Close() //nolint:errcheck // replaced on disk already
	}
	d.src = f
	d.Size = info.Size()
	return nil
}

func samePath(path, abs string) (bool, error) {
	if path == "" {
		return false, nil
	}
	p, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	return p == abs, nil
}

// validateWritten re-reads path and compares its key sets with img.
func validateWritten(path string, img *metadata.Image) error {
	written, err := Open(path)
	if err != nil {
		return fmt.Errorf("re-open: %w", err)
	}
	defer written.Close() //nolint:errcheck // best effort close

	if err := written.Read(); err != nil {
		return fmt.Errorf("re-read: %w", err)
	}

	var errs []error
	compare := func(ns string, want, got *metadata.Container) {
		w, g := slices.Sorted(want.Keys()), slices.Sorted(got.Keys())
		if !slices.Equal(w, g) {
			errs = append(errs, fmt.Errorf("%s keys mismatch: got %v, want %v", ns, g, w))
		}
	}
	compare("exif", img.Exif, written.img.Exif)
	compare("iptc", img.Iptc, written.img.Iptc)
	compare("xmp", img.Xmp, written.img.Xmp)
	if written.img.Comment != img.Comment {
		errs = append(errs, fmt.Errorf("comment mismatch: got %q, want %q", written.img.Comment, img.Comment))
	}
	return errors.Join(errs...)
}
