package tunedex

import (
	"bytes"
	"os"
	"testing"
)

func TestLibraryFile(t *testing.T) {
	tempFile, err := os.CreateTemp("", "libfile_test_*.tdx")
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	tempFile.Close()
	defer os.Remove(tempFile.Name())

	lf, err := openLibraryFile(tempFile.Name(), CreateAndOverwrite)
	if err != nil {
		t.Fatalf("Failed to create library file: %v", err)
	}

	// Test addRecord and readRecord
	data := []byte("testdata")
	if err := lf.addRecord(1, data); err != nil {
		t.Fatalf("Failed to add record: %v", err)
	}

	readData, err := lf.readRecord(1)
	if err != nil {
		t.Fatalf("Failed to read record: %v", err)
	}
	if !bytes.Equal(data, readData) {
		t.Errorf("Expected %v, got %v", data, readData)
	}

	// Replacing a record under the same id frees the old copy
	replacement := []byte("replacement")
	if err := lf.addRecord(1, replacement); err != nil {
		t.Fatalf("Failed to replace record: %v", err)
	}
	readData, err = lf.readRecord(1)
	if err != nil {
		t.Fatalf("Failed to read replaced record: %v", err)
	}
	if !bytes.Equal(replacement, readData) {
		t.Errorf("Expected %v, got %v", replacement, readData)
	}

	// Test deleteRecord
	if err := lf.deleteRecord(1); err != nil {
		t.Fatalf("Failed to delete record: %v", err)
	}
	if _, err := lf.readRecord(1); err == nil {
		t.Errorf("Expected error when reading deleted record, got nil")
	}
}

func TestLibraryFileReopen(t *testing.T) {
	tempFile, err := os.CreateTemp("", "libfile_reopen_*.tdx")
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	tempFile.Close()
	defer os.Remove(tempFile.Name())

	lf, err := openLibraryFile(tempFile.Name(), CreateAndOverwrite)
	if err != nil {
		t.Fatalf("Failed to create library file: %v", err)
	}

	lf.addRecord(1, []byte("first"))
	lf.addRecord(2, []byte("second"))
	lf.deleteRecord(1)
	lf.Close()

	lf, err = openLibraryFile(tempFile.Name(), CreateIfNotExists)
	if err != nil {
		t.Fatalf("Failed to re-open library file: %v", err)
	}
	defer lf.Close()

	if _, err := lf.readRecord(1); err == nil {
		t.Errorf("Deleted record survived reopen")
	}

	data, err := lf.readRecord(2)
	if err != nil {
		t.Fatalf("Failed to read record after reopen: %v", err)
	}
	if !bytes.Equal(data, []byte("second")) {
		t.Errorf("Expected %q, got %q", "second", data)
	}

	// Space freed by the delete is handed out again.
	sizeBefore := lf.File.Len()
	if err := lf.addRecord(3, []byte("third")); err != nil {
		t.Fatalf("Failed to add record: %v", err)
	}
	if lf.File.Len() != sizeBefore {
		t.Errorf("Expected freed space to be reused without growing the file")
	}
}

func TestLibraryFilePartialReuse(t *testing.T) {
	tempFile, err := os.CreateTemp("", "libfile_partial_*.tdx")
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	tempFile.Close()
	defer os.Remove(tempFile.Name())

	lf, err := openLibraryFile(tempFile.Name(), CreateAndOverwrite)
	if err != nil {
		t.Fatalf("Failed to create library file: %v", err)
	}

	large := make([]byte, 100)
	for i := range large {
		large[i] = byte(i)
	}
	lf.addRecord(1, large)
	lf.addRecord(2, []byte("second"))
	lf.deleteRecord(1)

	// Takes the front of record 1's freed range, leaving a gap between the
	// new record and record 2. The gap must still walk as a dead record.
	if err := lf.addRecord(3, []byte("third")); err != nil {
		t.Fatalf("Failed to add record: %v", err)
	}
	lf.Close()

	lf, err = openLibraryFile(tempFile.Name(), CreateIfNotExists)
	if err != nil {
		t.Fatalf("Failed to re-open library file: %v", err)
	}
	defer lf.Close()

	data, err := lf.readRecord(2)
	if err != nil {
		t.Fatalf("Record past the reuse gap was lost: %v", err)
	}
	if !bytes.Equal(data, []byte("second")) {
		t.Errorf("Expected %q, got %q", "second", data)
	}

	data, err = lf.readRecord(3)
	if err != nil {
		t.Fatalf("Failed to read reusing record: %v", err)
	}
	if !bytes.Equal(data, []byte("third")) {
		t.Errorf("Expected %q, got %q", "third", data)
	}

	if _, err := lf.readRecord(1); err == nil {
		t.Errorf("Deleted record survived reopen")
	}
}

func TestLibraryFileFoldsTinyRemainder(t *testing.T) {
	tempFile, err := os.CreateTemp("", "libfile_fold_*.tdx")
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	tempFile.Close()
	defer os.Remove(tempFile.Name())

	lf, err := openLibraryFile(tempFile.Name(), CreateAndOverwrite)
	if err != nil {
		t.Fatalf("Failed to create library file: %v", err)
	}

	lf.addRecord(1, []byte("fourteen bytes"))
	lf.addRecord(2, []byte("second"))
	lf.deleteRecord(1)

	// The freed range is 4 bytes larger than needed, too small for a
	// record header, so the new record absorbs it as zero padding.
	tenBytes := []byte("ten bytes!")
	if err := lf.addRecord(3, tenBytes); err != nil {
		t.Fatalf("Failed to add record: %v", err)
	}

	data, err := lf.readRecord(3)
	if err != nil {
		t.Fatalf("Failed to read folded record: %v", err)
	}
	if len(data) != 14 {
		t.Fatalf("Expected a 14-byte padded payload, got %d bytes", len(data))
	}
	if !bytes.Equal(data[:10], tenBytes) {
		t.Errorf("Expected %q, got %q", tenBytes, data[:10])
	}
	if !bytes.Equal(data[10:], []byte{0, 0, 0, 0}) {
		t.Errorf("Expected zero padding, got %v", data[10:])
	}

	lf.Close()
	lf, err = openLibraryFile(tempFile.Name(), CreateIfNotExists)
	if err != nil {
		t.Fatalf("Failed to re-open library file: %v", err)
	}
	defer lf.Close()

	if data, err := lf.readRecord(2); err != nil || !bytes.Equal(data, []byte("second")) {
		t.Errorf("Expected %q, got %q (%v)", "second", data, err)
	}
}

func TestLibraryFileExpansion(t *testing.T) {
	tempFile, err := os.CreateTemp("", "libfile_expansion_*.tdx")
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	tempFile.Close()
	defer os.Remove(tempFile.Name())

	lf, err := openLibraryFile(tempFile.Name(), CreateAndOverwrite)
	if err != nil {
		t.Fatalf("Failed to create library file: %v", err)
	}

	// Large enough that a second record forces a remap
	largeData := make([]byte, minGrowthBytes-16-16-8)
	largeData[0] = 'a'
	lf.addRecord(2, largeData)

	secondData := []byte("second")
	lf.addRecord(3, secondData)

	lf.Close()
	lf, err = openLibraryFile(tempFile.Name(), CreateIfNotExists)
	if err != nil {
		t.Fatalf("Failed to re-open library file: %v", err)
	}
	defer lf.Close()

	readLargeData, err := lf.readRecord(2)
	if err != nil {
		t.Fatalf("Failed to read large record: %v", err)
	}
	if !bytes.Equal(largeData, readLargeData) {
		t.Errorf("Large record did not round-trip")
	}

	readSecondData, err := lf.readRecord(3)
	if err != nil {
		t.Fatalf("Failed to read second record: %v", err)
	}
	if !bytes.Equal(secondData, readSecondData) {
		t.Errorf("Expected %q, got %q", secondData, readSecondData)
	}
}

func TestLibraryFileRejectsGarbage(t *testing.T) {
	tempFile, err := os.CreateTemp("", "libfile_garbage_*")
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	tempFile.WriteString("this is not a library file at all, not even close")
	tempFile.Close()
	defer os.Remove(tempFile.Name())

	if _, err := openLibraryFile(tempFile.Name(), CreateIfNotExists); err == nil {
		t.Errorf("Expected error opening a non-library file")
	}
}
