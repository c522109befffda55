package storage

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileHeader_WriteAndRead(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHeader(&buf, FlagUncompressed, 1234)
	require.NoError(t, err)

	// 4 bytes magic + 1 version + 1 flags + 2 reserved + 4 raw size
	assert.Len(t, buf.Bytes(), 12)

	header, err := ReadHeader(&buf)
	require.NoError(t, err)

	assert.Equal(t, MagicBytes, string(header.Magic[:]))
	assert.EqualValues(t, FormatVersion, header.Version)
	assert.Equal(t, FlagUncompressed, header.Flags)
	assert.Equal(t, [2]byte{0, 0}, header.Reserved)
	assert.Equal(t, uint32(1234), header.RawSize)
}

func TestFileHeader_InvalidMagic(t *testing.T) {
	var buf bytes.Buffer
	invalidHeader := FileHeader{
		Magic:   [4]byte{'G', 'O', 'D', 'B'},
		Version: FormatVersion,
	}

	err := binary.Write(&buf, binary.LittleEndian, invalidHeader)
	require.NoError(t, err)

	_, err = ReadHeader(&buf)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid file format")
}

func TestFileHeader_InvalidVersion(t *testing.T) {
	var buf bytes.Buffer
	invalidHeader := FileHeader{
		Magic:   [4]byte{'B', 'L', 'O', 'G'},
		Version: 99,
	}

	err := binary.Write(&buf, binary.LittleEndian, invalidHeader)
	require.NoError(t, err)

	_, err = ReadHeader(&buf)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file version")
}

func TestFileHeader_ShortBuffer(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{1, 2, 3})

	_, err := ReadHeader(&buf)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read header")
}
