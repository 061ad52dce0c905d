package tunedex

import (
	"os"
	"testing"
)

// Helper to create a collection over a temp library file.
func newTestCollection(t *testing.T) (*Collection, func()) {
	tempFile, err := os.CreateTemp("", "tunedex_test_*.tdx")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tempFile.Close()

	collection, err := NewCollection(CollectionOptions{
		Name:     tempFile.Name(),
		FileMode: CreateAndOverwrite,
	})
	if err != nil {
		os.Remove(tempFile.Name())
		t.Fatalf("Failed to create collection: %v", err)
	}

	cleanup := func() {
		collection.Close()
		os.Remove(tempFile.Name())
	}
	return collection, cleanup
}

// A small library used across tests.
func addTestSongs(t *testing.T, c *Collection) {
	songs := []*Song{
		{Title: "Paranoid Android", Artist: "Radiohead", Album: "OK Computer", Genre: "Alternative Rock", Track: 2, Year: 1997, Length: 383e9, Rating: 0.9},
		{Title: "Karma Police", Artist: "Radiohead", Album: "OK Computer", Genre: "Alternative Rock", Track: 6, Year: 1997, Length: 264e9, Rating: 0.8},
		{Title: "So What", Artist: "Miles Davis", Album: "Kind of Blue", Genre: "Jazz", Track: 1, Year: 1959, Length: 562e9, Rating: 1},
		{Title: "Teardrop", Artist: "Massive Attack", Album: "Mezzanine", Genre: "Trip Hop", Track: 3, Year: 1998, Length: 330e9, Rating: 0.7},
	}
	for _, song := range songs {
		if _, err := c.AddSong(song); err != nil {
			t.Fatalf("Failed to add song %q: %v", song.Title, err)
		}
	}
}
