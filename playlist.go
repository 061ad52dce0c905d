package tunedex

import (
	"sync"

	"github.com/tunedex/tunedex/filterparser"
)

// Column declares one playlist column and how its values are filtered.
type Column struct {
	Name string
	Kind filterparser.FieldKind
}

/*
Playlist is the tabular record shape: ordered typed columns over rows of
string cells. It shares the song collection's filter language; Filter compiles
the query against the playlist's own schema and returns matching row indexes.
*/
type Playlist struct {
	Name    string
	columns []Column

	mutex  sync.Mutex
	rows   [][]string
	schema *filterparser.Schema
	index  map[string]int

	cachedFilter string
	cachedTree   filterparser.Tree
}

// NewPlaylist builds an empty playlist with the given columns.
func NewPlaylist(name string, columns ...Column) *Playlist {
	fields := make([]filterparser.Field, len(columns))
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		fields[i] = filterparser.Field{Name: col.Name, Kind: col.Kind}
		index[col.Name] = i
	}

	return &Playlist{
		Name:    name,
		columns: columns,
		schema:  filterparser.NewSchema(fields...),
		index:   index,
	}
}

// Columns returns the declared columns in order.
func (p *Playlist) Columns() []Column {
	return p.columns
}

// Schema exposes the playlist's filter schema.
func (p *Playlist) Schema() *filterparser.Schema {
	return p.schema
}

// AddRow appends one row of cells in column order. Missing cells read as
// empty.
func (p *Playlist) AddRow(cells ...string) {
	p.mutex.Lock()
	p.rows = append(p.rows, cells)
	p.mutex.Unlock()
}

// Len returns the number of rows.
func (p *Playlist) Len() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return len(p.rows)
}

// Row returns the cells of one row.
func (p *Playlist) Row(i int) []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.rows[i]
}

// playlistRow adapts one row to the filter engine's record interface.
type playlistRow struct {
	playlist *Playlist
	cells    []string
}

func (r playlistRow) FieldValue(name string) string {
	i, ok := r.playlist.index[name]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

/*
Filter returns the indexes of rows accepted by the filter string, in row
order. The most recently compiled query is cached like Collection's.
*/
func (p *Playlist) Filter(filter string) []int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.cachedTree == nil || filter != p.cachedFilter {
		p.cachedTree = filterparser.Parse(p.schema, filter)
		p.cachedFilter = filter
	}

	matches := make([]int, 0)
	for i, cells := range p.rows {
		if p.cachedTree.Accept(playlistRow{playlist: p, cells: cells}) {
			matches = append(matches, i)
		}
	}
	return matches
}
