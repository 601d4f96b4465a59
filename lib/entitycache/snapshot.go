// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package entitycache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/spread/lib/schema/release"
)

// Snapshot is the persisted form of a Cache.
type Snapshot struct {
	// Server is the release service URL the data came from. A snapshot
	// is only restored into a session against the same server.
	Server  string    `cbor:"server"`
	SavedAt time.Time `cbor:"saved_at"`

	Apps         []release.App         `cbor:"apps"`
	Environments []release.Environment `cbor:"environments"`
	Versions     []release.Version     `cbor:"versions"`
	Bundles      []release.Bundle      `cbor:"bundles"`
}

// Snapshot copies the cache's data. Statuses and pending marks are not
// included.
func (c *Cache) Snapshot() *Snapshot {
	return &Snapshot{
		Apps:         c.Apps.List(),
		Environments: c.Environments.List(),
		Versions:     c.Versions.List(),
		Bundles:      c.Bundles.List(),
	}
}

// Restore replaces every collection with the snapshot's contents.
func (c *Cache) Restore(snapshot *Snapshot) {
	c.Apps.ReplaceAll(snapshot.Apps)
	c.Environments.ReplaceAll(snapshot.Environments)
	c.Versions.ReplaceAll(snapshot.Versions)
	c.Bundles.ReplaceAll(snapshot.Bundles)
}

// ErrCorruptSnapshot is returned (wrapped) by ReadSnapshot for any
// snapshot that cannot be trusted: bad magic, unknown version, digest
// mismatch, or undecodable payload. Callers treat it like a missing
// snapshot.
var ErrCorruptSnapshot = errors.New("entitycache: corrupt snapshot")

// Snapshot file layout, all integers big-endian:
//
//	[4]  magic "SPRC"
//	[1]  format version
//	[1]  compression tag
//	[8]  uncompressed payload length
//	[32] BLAKE3 keyed digest of the uncompressed payload
//	[..] payload: CBOR (Core Deterministic Encoding), compressed
const (
	snapshotMagic   = "SPRC"
	snapshotVersion = 1
	headerSize      = 4 + 1 + 1 + 8 + 32

	// maxPayloadSize bounds the uncompressed payload so a damaged
	// length field cannot trigger a huge allocation.
	maxPayloadSize = 256 << 20
)

// snapshotDomainKey separates snapshot digests from any other BLAKE3
// use of the same bytes.
var snapshotDomainKey = [32]byte{
	's', 'p', 'r', 'e', 'a', 'd', '.', 'e', 'n', 't', 'i', 't', 'y', 'c', 'a', 'c',
	'h', 'e', '.', 's', 'n', 'a', 'p', 's', 'h', 'o', 't', 0, 0, 0, 0, 0,
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	var err error
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("entitycache: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{MaxArrayElements: 1 << 24}.DecMode()
	if err != nil {
		panic("entitycache: CBOR decoder initialization failed: " + err.Error())
	}
}

func digest(data []byte) [32]byte {
	hasher, err := blake3.NewKeyed(snapshotDomainKey[:])
	if err != nil {
		panic("entitycache: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var sum [32]byte
	copy(sum[:], hasher.Sum(nil))
	return sum
}

// WriteSnapshot encodes snapshot to w.
func WriteSnapshot(w io.Writer, snapshot *Snapshot, compression Compression) error {
	payload, err := encMode.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("entitycache: encoding snapshot: %w", err)
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("entitycache: snapshot payload is %d bytes, limit is %d", len(payload), maxPayloadSize)
	}
	compressed, applied, err := compress(payload, compression)
	if err != nil {
		return fmt.Errorf("entitycache: compressing snapshot: %w", err)
	}

	header := make([]byte, headerSize)
	copy(header[0:4], snapshotMagic)
	header[4] = snapshotVersion
	header[5] = byte(applied)
	binary.BigEndian.PutUint64(header[6:14], uint64(len(payload)))
	sum := digest(payload)
	copy(header[14:46], sum[:])

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("entitycache: writing snapshot header: %w", err)
	}
	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("entitycache: writing snapshot payload: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot. Every
// integrity failure wraps ErrCorruptSnapshot.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrCorruptSnapshot, err)
	}
	if string(header[0:4]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorruptSnapshot, header[0:4])
	}
	if header[4] != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrCorruptSnapshot, header[4])
	}
	compression := Compression(header[5])
	size := binary.BigEndian.Uint64(header[6:14])
	if size > maxPayloadSize {
		return nil, fmt.Errorf("%w: payload length %d exceeds limit", ErrCorruptSnapshot, size)
	}
	var want [32]byte
	copy(want[:], header[14:46])

	compressed, err := io.ReadAll(io.LimitReader(r, maxPayloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("entitycache: reading snapshot payload: %w", err)
	}
	payload, err := decompress(compressed, compression, int(size))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if digest(payload) != want {
		return nil, fmt.Errorf("%w: digest mismatch", ErrCorruptSnapshot)
	}

	var snapshot Snapshot
	if err := decMode.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: decoding payload: %v", ErrCorruptSnapshot, err)
	}
	return &snapshot, nil
}

// SaveFile writes snapshot to path atomically with mode 0600, creating
// the parent directory (0700) if needed.
func SaveFile(path string, snapshot *Snapshot, compression Compression) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("entitycache: creating snapshot directory: %w", err)
	}

	var buffer bytes.Buffer
	if err := WriteSnapshot(&buffer, snapshot, compression); err != nil {
		return err
	}

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("entitycache: creating temporary snapshot file: %w", err)
	}
	if _, err := file.Write(buffer.Bytes()); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("entitycache: writing temporary snapshot file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("entitycache: closing temporary snapshot file: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("entitycache: renaming snapshot into place: %w", err)
	}
	return nil
}

// LoadFile reads the snapshot at path. A missing file returns an error
// satisfying errors.Is(err, fs.ErrNotExist).
func LoadFile(path string) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("entitycache: opening snapshot: %w", err)
	}
	defer file.Close()
	return ReadSnapshot(file)
}

// RemoveFile deletes the snapshot at path. A missing file is not an error.
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("entitycache: removing snapshot: %w", err)
	}
	return nil
}

// DefaultSnapshotPath returns $XDG_CACHE_HOME/spread/cache.snapshot,
// falling back to ~/.cache/spread/cache.snapshot.
func DefaultSnapshotPath() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, "spread", "cache.snapshot"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("entitycache: cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "spread", "cache.snapshot"), nil
}
