package tunedex

import (
	"os"
	"testing"
)

func TestCollectionAddGetRemove(t *testing.T) {
	collection, cleanup := newTestCollection(t)
	defer cleanup()

	id, err := collection.AddSong(&Song{Title: "So What", Artist: "Miles Davis"})
	if err != nil {
		t.Fatalf("AddSong failed: %v", err)
	}
	if id != 1 {
		t.Errorf("Expected first id to be 1, got %d", id)
	}

	song, exists := collection.GetSong(id)
	if !exists {
		t.Fatalf("Song not found after add")
	}
	if song.Title != "So What" || song.ID != id {
		t.Errorf("Unexpected song: %+v", song)
	}

	// The returned song is a copy; mutating it does not affect the index.
	song.Title = "mutated"
	if again, _ := collection.GetSong(id); again.Title != "So What" {
		t.Errorf("GetSong leaked internal state")
	}

	if err := collection.RemoveSong(id); err != nil {
		t.Fatalf("RemoveSong failed: %v", err)
	}
	if _, exists := collection.GetSong(id); exists {
		t.Errorf("Song still present after remove")
	}
	if err := collection.RemoveSong(id); err == nil {
		t.Errorf("Expected error removing a missing song")
	}
}

func TestCollectionFilter(t *testing.T) {
	collection, cleanup := newTestCollection(t)
	defer cleanup()
	addTestSongs(t, collection)

	tests := []struct {
		filter string
		want   int
	}{
		{"", 4},
		{"radiohead", 2},
		{"artist:radiohead", 2},
		{"genre:jazz", 1},
		{"length:>5:40", 2},
		{"rating:>=4", 3},
		{"year:<1990", 1},
		{"radiohead OR teardrop", 3},
		{"-genre:jazz", 3},
		{"nosuchthing", 0},
	}

	for _, tc := range tests {
		t.Run(tc.filter, func(t *testing.T) {
			results := collection.Filter(tc.filter)
			if len(results) != tc.want {
				t.Errorf("Filter(%q) returned %d songs, want %d", tc.filter, len(results), tc.want)
			}
			for i := 1; i < len(results); i++ {
				if results[i-1].ID >= results[i].ID {
					t.Errorf("Filter(%q) results not sorted by id", tc.filter)
				}
			}
		})
	}
}

func TestCollectionFilterCache(t *testing.T) {
	collection, cleanup := newTestCollection(t)
	defer cleanup()
	addTestSongs(t, collection)

	collection.Filter("artist:radiohead")
	collection.Filter("artist:radiohead")
	collection.FilterIDs("artist:radiohead")
	if collection.parseCount != 1 {
		t.Errorf("Expected 1 parse for repeated identical queries, got %d", collection.parseCount)
	}

	collection.Filter("artist:miles")
	if collection.parseCount != 2 {
		t.Errorf("Expected a re-parse on query change, got %d parses", collection.parseCount)
	}

	// Changing back re-parses again; only the latest query is cached.
	collection.Filter("artist:radiohead")
	if collection.parseCount != 3 {
		t.Errorf("Expected 3 parses, got %d", collection.parseCount)
	}
}

func TestCollectionReopen(t *testing.T) {
	tempFile, err := os.CreateTemp("", "collection_reopen_*.tdx")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tempFile.Close()
	defer os.Remove(tempFile.Name())

	collection, err := NewCollection(CollectionOptions{Name: tempFile.Name(), FileMode: CreateAndOverwrite})
	if err != nil {
		t.Fatalf("Failed to create collection: %v", err)
	}
	addTestSongs(t, collection)
	if err := collection.RemoveSong(3); err != nil {
		t.Fatalf("RemoveSong failed: %v", err)
	}
	collection.Close()

	collection, err = NewCollection(CollectionOptions{Name: tempFile.Name(), FileMode: CreateIfNotExists})
	if err != nil {
		t.Fatalf("Failed to reopen collection: %v", err)
	}
	defer collection.Close()

	if stats := collection.ComputeStats(); stats.SongCount != 3 {
		t.Errorf("Expected 3 songs after reopen, got %d", stats.SongCount)
	}
	if _, exists := collection.GetSong(3); exists {
		t.Errorf("Removed song came back after reopen")
	}

	song, exists := collection.GetSong(1)
	if !exists || song.Title != "Paranoid Android" || song.Length != 383000000000 {
		t.Errorf("Song 1 did not survive reopen: %+v", song)
	}

	// New ids continue after the highest persisted one.
	id, err := collection.AddSong(&Song{Title: "New"})
	if err != nil {
		t.Fatalf("AddSong after reopen failed: %v", err)
	}
	if id != 5 {
		t.Errorf("Expected id 5 after reopen, got %d", id)
	}
}

func TestCollectionWatchers(t *testing.T) {
	collection, cleanup := newTestCollection(t)
	defer cleanup()

	ch := collection.addWatcher()
	defer collection.removeWatcher(ch)

	if _, err := collection.AddSong(&Song{Title: "Tick"}); err != nil {
		t.Fatalf("AddSong failed: %v", err)
	}

	select {
	case <-ch:
	default:
		t.Errorf("Expected a change notification after AddSong")
	}

	// A second notification with a full channel is dropped, not blocked.
	collection.AddSong(&Song{Title: "Tock"})
	collection.AddSong(&Song{Title: "Tick again"})
	<-ch
}
