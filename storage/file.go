package storage

import (
	"fmt"
	"io"
	"os"
)

// File is a store kept in a host file, used as an EEPROM image by the
// simulator. The file is grown to the requested size on open.
type File struct {
	f    *os.File
	size int64
}

// OpenFile opens or creates the image at path with a capacity of size bytes
func OpenFile(path string, size int64) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.Size() < size {
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, fmt.Errorf("grow %s: %w", path, err)
		}
	}
	return &File{f: f, size: size}, nil
}

// Size returns the store capacity
func (s *File) Size() int64 {
	return s.size
}

// ReadAt implements io.ReaderAt
func (s *File) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > s.size {
		return 0, fmt.Errorf("%w: read at 0x%x", ErrOutOfRange, off)
	}
	short := false
	if off+int64(len(p)) > s.size {
		p = p[:s.size-off]
		short = true
	}
	n, err := s.f.ReadAt(p, off)
	if err == nil && short {
		err = io.EOF
	}
	return n, err
}

// WriteAt implements io.WriterAt
func (s *File) WriteAt(p []byte, off int64) (int, error) {
	if err := checkRange(off, len(p), s.size); err != nil {
		return 0, err
	}
	return s.f.WriteAt(p, off)
}

// Sync flushes the image to disk
func (s *File) Sync() error {
	return s.f.Sync()
}

// Close closes the image file
func (s *File) Close() error {
	return s.f.Close()
}
