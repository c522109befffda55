package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

const (
	// Magic bytes to identify our file format
	MagicBytes = "BLOG"
	// Current version
	FormatVersion = 1
	// File extension for snapshot files
	FileExtension = ".blog"
)

const (
	// FlagUncompressed marks a payload stored as raw MessagePack because LZ4
	// could not shrink it
	FlagUncompressed uint8 = 1 << iota
)

// FileHeader represents the header of a snapshot file
type FileHeader struct {
	Magic    [4]byte // "BLOG"
	Version  uint8   // Format version
	Flags    uint8
	Reserved [2]byte
	RawSize  uint32 // Length of the uncompressed payload
}

// WriteHeader writes the file header to the given writer
func WriteHeader(w io.Writer, flags uint8, rawSize uint32) error {
	header := FileHeader{
		Magic:   [4]byte{'B', 'L', 'O', 'G'},
		Version: FormatVersion,
		Flags:   flags,
		RawSize: rawSize,
	}

	return binary.Write(w, binary.LittleEndian, header)
}

// ReadHeader reads and validates the file header
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if string(header.Magic[:]) != MagicBytes {
		return nil, fmt.Errorf("invalid file format: expected %s, got %s", MagicBytes, string(header.Magic[:]))
	}

	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported file version: %d", header.Version)
	}

	return &header, nil
}

// snapshotPost is the persisted form of a post
type snapshotPost struct {
	ID    string `msgpack:"_id"`
	Title string `msgpack:"title"`
	Body  string `msgpack:"body"`
}

// StorageData represents the payload of a snapshot file
type StorageData struct {
	Posts   []snapshotPost `msgpack:"posts"`
	SavedAt time.Time      `msgpack:"saved_at"`
}
