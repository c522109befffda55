package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/adfharrison1/go-blog/pkg/domain"
)

// SaveToFile writes all posts to filename as a header followed by an
// LZ4-compressed MessagePack payload. The file is replaced atomically.
func (se *Engine) SaveToFile(filename string) error {
	se.saveMu.Lock()
	defer se.saveMu.Unlock()

	se.mu.Lock()
	storageData := StorageData{
		Posts:   make([]snapshotPost, 0, len(se.posts)),
		SavedAt: time.Now().UTC(),
	}
	for id, post := range se.posts {
		storageData.Posts = append(storageData.Posts, snapshotPost{
			ID:    id.Hex(),
			Title: post.Title,
			Body:  post.Body,
		})
	}
	se.dirty = false
	se.mu.Unlock()

	if err := writeSnapshot(filename, &storageData); err != nil {
		se.markDirty()
		return err
	}
	return nil
}

// LoadFromFile replaces the in-memory posts with the contents of filename.
// A missing file leaves the engine empty.
func (se *Engine) LoadFromFile(filename string) error {
	storageData, err := readSnapshot(filename)
	if err != nil {
		if os.IsNotExist(err) {
			se.logger.Info("no snapshot found, starting empty", zap.String("file", filename))
			return nil
		}
		return err
	}

	posts := make(map[primitive.ObjectID]domain.Post, len(storageData.Posts))
	for _, sp := range storageData.Posts {
		oid, err := primitive.ObjectIDFromHex(sp.ID)
		if err != nil {
			return fmt.Errorf("snapshot contains invalid id %q: %w", sp.ID, err)
		}
		posts[oid] = domain.Post{ID: oid, Title: sp.Title, Body: sp.Body}
	}

	se.mu.Lock()
	se.posts = posts
	se.dirty = false
	se.mu.Unlock()

	se.logger.Info("loaded posts from snapshot",
		zap.String("file", filename), zap.Int("posts", len(posts)))
	return nil
}

func (se *Engine) saveIfDirty() error {
	se.mu.RLock()
	dirty := se.dirty
	se.mu.RUnlock()
	if !dirty {
		return nil
	}
	return se.SaveToFile(se.dataFile)
}

func (se *Engine) markDirty() {
	se.mu.Lock()
	se.dirty = true
	se.mu.Unlock()
}

func writeSnapshot(filename string, storageData *StorageData) error {
	msgpackData, err := msgpack.Marshal(storageData)
	if err != nil {
		return fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	flags := uint8(0)
	payload := make([]byte, lz4.CompressBlockBound(len(msgpackData)))
	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(msgpackData, payload)
	if err != nil {
		return fmt.Errorf("failed to compress data: %w", err)
	}
	if n == 0 {
		// Incompressible input
		flags |= FlagUncompressed
		payload = msgpackData
	} else {
		payload = payload[:n]
	}

	var buf bytes.Buffer
	if err := WriteHeader(&buf, flags, uint32(len(msgpackData))); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	buf.Write(payload)

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// maxCompressionRatio is the most an LZ4 block can expand on decompression
const maxCompressionRatio = 255

// checkRawSize rejects headers whose recorded size cannot match the payload,
// before anything is allocated from it
func checkRawSize(header *FileHeader, payloadLen int) error {
	if header.Flags&FlagUncompressed != 0 {
		if int64(header.RawSize) != int64(payloadLen) {
			return fmt.Errorf("corrupt snapshot: header records %d bytes, payload has %d", header.RawSize, payloadLen)
		}
		return nil
	}
	if int64(header.RawSize) > int64(payloadLen)*maxCompressionRatio {
		return fmt.Errorf("corrupt snapshot: header records %d bytes for a %d byte compressed payload", header.RawSize, payloadLen)
	}
	return nil
}

func readSnapshot(filename string) (*StorageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	header, err := ReadHeader(file)
	if err != nil {
		return nil, fmt.Errorf("invalid file header: %w", err)
	}

	payload, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot data: %w", err)
	}

	if err := checkRawSize(header, len(payload)); err != nil {
		return nil, err
	}

	raw := payload
	if header.Flags&FlagUncompressed == 0 {
		raw = make([]byte, header.RawSize)
		n, err := lz4.UncompressBlock(payload, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress data: %w", err)
		}
		raw = raw[:n]
	}

	var storageData StorageData
	if err := msgpack.Unmarshal(raw, &storageData); err != nil {
		return nil, fmt.Errorf("failed to decode MessagePack: %w", err)
	}
	return &storageData, nil
}
