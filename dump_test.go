package tunedex

import (
	"bytes"
	"os"
	"reflect"
	"testing"
)

func TestExportImportJSON(t *testing.T) {
	collection, cleanup := newTestCollection(t)
	defer cleanup()
	addTestSongs(t, collection)

	var buf bytes.Buffer
	if err := ExportJSON(collection, &buf); err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	importTempFile, err := os.CreateTemp("", "import_test_*.tdx")
	if err != nil {
		t.Fatalf("Failed to create temp file for import: %v", err)
	}
	importTempFile.Close()
	defer os.Remove(importTempFile.Name())

	if err := ImportJSON(importTempFile.Name(), &buf); err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}

	imported, err := NewCollection(CollectionOptions{Name: importTempFile.Name(), FileMode: ReadOnly})
	if err != nil {
		t.Fatalf("Failed to open imported collection: %v", err)
	}
	defer imported.Close()

	want := collection.Filter("")
	got := imported.Filter("")
	if !reflect.DeepEqual(want, got) {
		t.Errorf("imported songs differ:\n got %+v\nwant %+v", got, want)
	}

	// Searches behave identically on the imported copy.
	if len(imported.Filter("artist:radiohead")) != 2 {
		t.Errorf("imported collection filters differently")
	}
}

func TestImportJSONRejectsGarbage(t *testing.T) {
	tempFile, err := os.CreateTemp("", "import_garbage_*.tdx")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tempFile.Close()
	defer os.Remove(tempFile.Name())

	if err := ImportJSON(tempFile.Name(), bytes.NewBufferString("not json")); err == nil {
		t.Errorf("Expected error importing malformed JSON")
	}
}

func TestReadOnlyCollectionRejectsWrites(t *testing.T) {
	tempFile, err := os.CreateTemp("", "readonly_test_*.tdx")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tempFile.Close()
	defer os.Remove(tempFile.Name())

	collection, err := NewCollection(CollectionOptions{Name: tempFile.Name(), FileMode: CreateAndOverwrite})
	if err != nil {
		t.Fatalf("Failed to create collection: %v", err)
	}
	collection.AddSong(&Song{Title: "Locked In"})
	collection.Close()

	collection, err = NewCollection(CollectionOptions{Name: tempFile.Name(), FileMode: ReadOnly})
	if err != nil {
		t.Fatalf("Failed to open read-only: %v", err)
	}
	defer collection.Close()

	if _, err := collection.AddSong(&Song{Title: "Nope"}); err == nil {
		t.Errorf("Expected error adding to a read-only collection")
	}
	if err := collection.RemoveSong(1); err == nil {
		t.Errorf("Expected error removing from a read-only collection")
	}
	if len(collection.Filter("locked")) != 1 {
		t.Errorf("Read-only collection should still search")
	}
}
