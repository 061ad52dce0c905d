package tunedex

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/go-mmap/mmap"
)

// The library file is a 16 byte header followed by a series of records.
// Each record is:
// uint64 - total allocated length of record
// uint64 - song ID, or 0xffffffffffffffff when deleted
// The remainder is the protowire-encoded song, zero-padded when the record
// absorbed a sliver of free space too small to stand on its own. Freed space
// between live records always carries a tombstone header so the file can be
// walked record by record.

const (
	libraryMagic   = 0x58454454 // "TDEX", little-endian
	libraryVersion = 1

	libraryHeaderSize = 16
	recordHeaderSize  = 16

	tombstoneID = uint64(0xffffffffffffffff)

	// Files grow in chunks so consecutive adds don't remap every time.
	minGrowthBytes = 4096
)

// File open modes for CollectionOptions.
const (
	CreateIfNotExists = iota
	CreateAndOverwrite
	ReadOnly
)

type libraryFile struct {
	*mmap.File
	sync.Mutex

	// offsets of each record id into the file
	idOffsets map[uint64]int64

	freemap freeMap

	name     string
	readOnly bool
}

/*
openLibraryFile opens or creates a memory-mapped library file. A new file is
written with a fresh header; an existing one is scanned so live records are
indexed and tombstoned space returns to the free map.
*/
func openLibraryFile(name string, mode int) (*libraryFile, error) {
	flags := os.O_RDWR
	switch mode {
	case CreateIfNotExists:
		flags |= os.O_CREATE
	case CreateAndOverwrite:
		flags |= os.O_CREATE | os.O_TRUNC
	case ReadOnly:
		flags = os.O_RDONLY
	}

	file, err := os.OpenFile(name, flags, 0644)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	if info.Size() < libraryHeaderSize {
		if mode == ReadOnly {
			file.Close()
			return nil, errors.New("not a library file")
		}
		header := make([]byte, libraryHeaderSize)
		binary.LittleEndian.PutUint32(header[0:], libraryMagic)
		binary.LittleEndian.PutUint32(header[4:], libraryVersion)
		binary.LittleEndian.PutUint32(header[8:], libraryHeaderSize)
		if _, err := file.WriteAt(header, 0); err != nil {
			file.Close()
			return nil, err
		}
	}
	file.Close()

	mapMode := mmap.Read | mmap.Write
	if mode == ReadOnly {
		mapMode = mmap.Read
	}

	f, err := mmap.OpenFile(name, mapMode)
	if err != nil {
		return nil, err
	}

	lf := &libraryFile{
		File:      f,
		idOffsets: make(map[uint64]int64),
		name:      name,
		readOnly:  mode == ReadOnly,
	}

	if lf.readUint32(0) != libraryMagic {
		lf.File.Close()
		return nil, errors.New("not a library file")
	}
	if v := lf.readUint32(4); v != libraryVersion {
		lf.File.Close()
		return nil, fmt.Errorf("unsupported library file version %d", v)
	}

	lf.scan()
	return lf, nil
}

// scan walks the records once, indexing live ids and leaving tombstoned and
// never-written space in the free map.
func (lf *libraryFile) scan() {
	fileLen := int64(lf.File.Len())
	lf.freemap.markFree(libraryHeaderSize, int(fileLen)-libraryHeaderSize)

	offset := int64(libraryHeaderSize)
	for offset+recordHeaderSize <= fileLen {
		recordLength := lf.readUint64(offset)
		if recordLength < recordHeaderSize || offset+int64(recordLength) > fileLen {
			// Zero means the tail was never written; anything else here is
			// a truncated write we tolerate by treating the rest as free.
			break
		}

		if id := lf.readUint64(offset + 8); id != tombstoneID {
			lf.idOffsets[id] = offset
			lf.freemap.markUsed(int(offset), int(recordLength))
		}
		offset += int64(recordLength)
	}
}

/*
addRecord writes a record into free space, extending the file when none fits.
A record that already exists under the same id is replaced: the new copy is
written before the old one is tombstoned.
*/
func (lf *libraryFile) addRecord(id uint64, data []byte) error {
	lf.Lock()
	defer lf.Unlock()

	if lf.readOnly {
		return errors.New("library file is read-only")
	}

	recordLength := recordHeaderSize + len(data)

	start, allocated, err := lf.freemap.getFreeRange(recordLength)
	if err != nil {
		lf.ensureLength(lf.File.Len() + recordLength)
		start, allocated, err = lf.freemap.getFreeRange(recordLength)
		if err != nil {
			log.Panic("failed to allocate space for the new record")
		}
	}

	offset := int64(start)
	lf.writeUint64(offset, uint64(allocated))
	lf.writeUint64(offset+8, id)
	lf.WriteAt(data, offset+recordHeaderSize)
	if pad := allocated - recordLength; pad > 0 {
		// Folded sliver; zero it so the payload decoder stops at the
		// first zero tag.
		lf.WriteAt(make([]byte, pad), offset+int64(recordLength))
	}
	lf.stampRemainder(start + allocated)
	lf.File.Sync()

	// If the record already existed, tombstone the old copy.
	if oldOffset, exists := lf.idOffsets[id]; exists {
		oldLength := lf.readUint64(oldOffset)
		lf.writeUint64(oldOffset+8, tombstoneID)
		lf.freemap.markFree(int(oldOffset), int(oldLength))
	}

	lf.idOffsets[id] = offset
	return nil
}

// stampRemainder writes a tombstone header over the free range starting at
// offset, if there is one. The leftover of a partially reused range would
// otherwise read as a garbage record length and stop the reopen scan early.
func (lf *libraryFile) stampRemainder(offset int) {
	length, ok := lf.freemap.rangeAt(offset)
	if !ok {
		return
	}
	lf.writeUint64(int64(offset), uint64(length))
	lf.writeUint64(int64(offset)+8, tombstoneID)
}

// readRecord returns the payload stored under id. The tail may carry zero
// padding when the record absorbed a sliver of free space.
func (lf *libraryFile) readRecord(id uint64) ([]byte, error) {
	lf.Lock()
	defer lf.Unlock()

	offset, exists := lf.idOffsets[id]
	if !exists {
		return nil, errors.New("record not found")
	}

	recordLength := lf.readUint64(offset)
	data := make([]byte, recordLength-recordHeaderSize)
	lf.ReadAt(data, offset+recordHeaderSize)
	return data, nil
}

// deleteRecord tombstones a record and frees its space.
func (lf *libraryFile) deleteRecord(id uint64) error {
	lf.Lock()
	defer lf.Unlock()

	if lf.readOnly {
		return errors.New("library file is read-only")
	}

	offset, exists := lf.idOffsets[id]
	if !exists {
		return errors.New("record not found")
	}

	lf.writeUint64(offset+8, tombstoneID)
	recordLength := lf.readUint64(offset)
	lf.freemap.markFree(int(offset), int(recordLength))
	delete(lf.idOffsets, id)
	lf.File.Sync()
	return nil
}

/*
ensureLength extends the file to at least the given length and remaps it.
The map has to be closed before the underlying file can be truncated larger.
*/
func (lf *libraryFile) ensureLength(length int) {
	curSize := lf.File.Len()
	if curSize >= length {
		return
	}

	length += minGrowthBytes

	if err := lf.File.Close(); err != nil {
		log.Panic(err)
	}

	file, err := os.OpenFile(lf.name, os.O_RDWR, 0644)
	if err != nil {
		log.Panic(err)
	}
	defer file.Close()

	if err := file.Truncate(int64(length)); err != nil {
		log.Panic(err)
	}

	lf.freemap.markFree(curSize, length-curSize)

	lf.File, err = mmap.OpenFile(lf.name, mmap.Read|mmap.Write)
	if err != nil {
		log.Panic(err)
	}
}

func (lf *libraryFile) readUint32(offset int64) uint32 {
	buf := make([]byte, 4)
	lf.ReadAt(buf, offset)
	return binary.LittleEndian.Uint32(buf)
}

func (lf *libraryFile) readUint64(offset int64) uint64 {
	buf := make([]byte, 8)
	lf.ReadAt(buf, offset)
	return binary.LittleEndian.Uint64(buf)
}

func (lf *libraryFile) writeUint64(offset int64, value uint64) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, value)
	lf.WriteAt(buf, offset)
}
