package tunedex

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tunedex/tunedex/filterparser"
)

/*
CollectionOptions defines the configuration options for opening a Collection.
*/
type CollectionOptions struct {
	// Name is the path of the library file.
	Name string

	// FileMode is one of CreateIfNotExists, CreateAndOverwrite or ReadOnly.
	FileMode int
}

/*
Collection is a searchable song library backed by a memory-mapped library
file. All operations are safe for concurrent use; searches share one compiled
filter tree, which is immutable once parsed.
*/
type Collection struct {
	CollectionOptions

	mutex sync.Mutex
	lib   *libraryFile
	songs map[uint64]*Song

	// Highest id handed out so far.
	lastID uint64

	// Most recently compiled query. Filtering re-parses only when the
	// filter string changes.
	cachedFilter string
	cachedTree   filterparser.Tree
	parseCount   int

	watchers map[chan struct{}]bool
}

/*
NewCollection opens or creates a collection. Every live record in the library
file is decoded into memory; tombstoned space becomes available for reuse.
*/
func NewCollection(options CollectionOptions) (*Collection, error) {
	lib, err := openLibraryFile(options.Name, options.FileMode)
	if err != nil {
		return nil, err
	}

	c := &Collection{
		CollectionOptions: options,
		lib:               lib,
		songs:             make(map[uint64]*Song),
		watchers:          make(map[chan struct{}]bool),
	}

	for id := range lib.idOffsets {
		data, err := lib.readRecord(id)
		if err != nil {
			lib.Close()
			return nil, err
		}
		song, err := decodeSong(data)
		if err != nil {
			lib.Close()
			return nil, fmt.Errorf("record %d: %v", id, err)
		}
		song.ID = id
		c.songs[id] = song
		if id > c.lastID {
			c.lastID = id
		}
	}

	return c, nil
}

// AddSong assigns the next id, persists the song and returns the id.
func (c *Collection) AddSong(song *Song) (uint64, error) {
	c.mutex.Lock()
	id := c.lastID + 1
	err := c.putSongLocked(id, song)
	c.mutex.Unlock()

	if err != nil {
		return 0, err
	}
	c.notifyWatchers()
	return id, nil
}

// PutSong inserts or replaces the song stored under a caller-chosen id.
func (c *Collection) PutSong(id uint64, song *Song) error {
	if id == tombstoneID {
		return errors.New("invalid song id")
	}

	c.mutex.Lock()
	err := c.putSongLocked(id, song)
	c.mutex.Unlock()

	if err != nil {
		return err
	}
	c.notifyWatchers()
	return nil
}

func (c *Collection) putSongLocked(id uint64, song *Song) error {
	stored := *song
	stored.ID = id

	if err := c.lib.addRecord(id, encodeSong(&stored)); err != nil {
		return err
	}

	c.songs[id] = &stored
	if id > c.lastID {
		c.lastID = id
	}
	return nil
}

// GetSong returns a copy of the song stored under id.
func (c *Collection) GetSong(id uint64) (*Song, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	song, exists := c.songs[id]
	if !exists {
		return nil, false
	}
	copied := *song
	return &copied, true
}

// RemoveSong tombstones the song's record and drops it from the index.
func (c *Collection) RemoveSong(id uint64) error {
	c.mutex.Lock()
	if _, exists := c.songs[id]; !exists {
		c.mutex.Unlock()
		return errors.New("song not found")
	}
	if err := c.lib.deleteRecord(id); err != nil {
		c.mutex.Unlock()
		return err
	}
	delete(c.songs, id)
	c.mutex.Unlock()

	c.notifyWatchers()
	return nil
}

// compileFilter returns the tree for the filter string, re-parsing only when
// the string differs from the previous one. Caller holds the mutex.
func (c *Collection) compileFilter(filter string) filterparser.Tree {
	if c.cachedTree == nil || filter != c.cachedFilter {
		c.cachedTree = filterparser.Parse(SongSchema, filter)
		c.cachedFilter = filter
		c.parseCount++
	}
	return c.cachedTree
}

/*
Filter returns every song accepted by the filter string, sorted by id. An
empty or unparsable filter matches broadly rather than failing.
*/
func (c *Collection) Filter(filter string) []*Song {
	c.mutex.Lock()
	tree := c.compileFilter(filter)

	results := make([]*Song, 0)
	for _, song := range c.songs {
		if tree.Accept(song) {
			copied := *song
			results = append(results, &copied)
		}
	}
	c.mutex.Unlock()

	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results
}

// FilterIDs is Filter returning only the matching ids, sorted.
func (c *Collection) FilterIDs(filter string) []uint64 {
	c.mutex.Lock()
	tree := c.compileFilter(filter)

	ids := make([]uint64, 0)
	for id, song := range c.songs {
		if tree.Accept(song) {
			ids = append(ids, id)
		}
	}
	c.mutex.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CollectionStats describes a collection's size on disk and in memory.
type CollectionStats struct {
	// SongCount is the number of live songs.
	SongCount int `json:"num_songs"`

	// StorageSize is the library file size in bytes.
	StorageSize int `json:"storage_space"`

	// FreeSize is the number of reusable bytes inside the file.
	FreeSize int `json:"free_space"`
}

/*
ComputeStats gathers and returns statistics about the collection.
*/
func (c *Collection) ComputeStats() CollectionStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return CollectionStats{
		SongCount:   len(c.songs),
		StorageSize: c.lib.File.Len(),
		FreeSize:    c.lib.freemap.totalFree(),
	}
}

// Close releases the mapped library file. The collection must not be used
// afterwards.
func (c *Collection) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.lib.Close()
}

// addWatcher registers a change-notification channel for live search.
func (c *Collection) addWatcher() chan struct{} {
	ch := make(chan struct{}, 1)
	c.mutex.Lock()
	c.watchers[ch] = true
	c.mutex.Unlock()
	return ch
}

func (c *Collection) removeWatcher(ch chan struct{}) {
	c.mutex.Lock()
	delete(c.watchers, ch)
	c.mutex.Unlock()
}

// notifyWatchers ticks every watcher without blocking. A full channel is
// fine; the watcher re-evaluates against the latest state anyway.
func (c *Collection) notifyWatchers() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for ch := range c.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
