package tunedex

import (
	"strconv"

	"github.com/tunedex/tunedex/filterparser"
)

/*
Song is one library record. Text fields are stored verbatim; Length is the
duration in nanoseconds; Rating is on the internal 0-1 scale, with -1 meaning
unrated.
*/
type Song struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Album       string  `json:"album"`
	Artist      string  `json:"artist"`
	AlbumArtist string  `json:"albumartist"`
	Composer    string  `json:"composer"`
	Performer   string  `json:"performer"`
	Grouping    string  `json:"grouping"`
	Genre       string  `json:"genre"`
	Comment     string  `json:"comment"`
	Track       int     `json:"track"`
	Year        int     `json:"year"`
	SampleRate  int     `json:"samplerate"`
	BitDepth    int     `json:"bitdepth"`
	Bitrate     int     `json:"bitrate"`
	PlayCount   int     `json:"playcount"`
	SkipCount   int     `json:"skipcount"`
	Length      int64   `json:"length"`
	Rating      float32 `json:"rating"`
}

// SongSchema declares every searchable song column and the order bare filter
// terms probe them in.
var SongSchema = filterparser.NewSchema(
	filterparser.Field{Name: "albumartist", Kind: filterparser.KindText},
	filterparser.Field{Name: "artist", Kind: filterparser.KindText},
	filterparser.Field{Name: "album", Kind: filterparser.KindText},
	filterparser.Field{Name: "title", Kind: filterparser.KindText},
	filterparser.Field{Name: "composer", Kind: filterparser.KindText},
	filterparser.Field{Name: "performer", Kind: filterparser.KindText},
	filterparser.Field{Name: "grouping", Kind: filterparser.KindText},
	filterparser.Field{Name: "genre", Kind: filterparser.KindText},
	filterparser.Field{Name: "comment", Kind: filterparser.KindText},
	filterparser.Field{Name: "track", Kind: filterparser.KindInt},
	filterparser.Field{Name: "year", Kind: filterparser.KindInt},
	filterparser.Field{Name: "length", Kind: filterparser.KindDuration},
	filterparser.Field{Name: "samplerate", Kind: filterparser.KindInt},
	filterparser.Field{Name: "bitdepth", Kind: filterparser.KindInt},
	filterparser.Field{Name: "bitrate", Kind: filterparser.KindInt},
	filterparser.Field{Name: "rating", Kind: filterparser.KindRating},
	filterparser.Field{Name: "playcount", Kind: filterparser.KindInt},
	filterparser.Field{Name: "skipcount", Kind: filterparser.KindInt},
)

// EffectiveAlbumArtist is the album artist, falling back to the track artist
// when no explicit one is set.
func (s *Song) EffectiveAlbumArtist() string {
	if s.AlbumArtist != "" {
		return s.AlbumArtist
	}
	return s.Artist
}

// FieldValue renders one column for the filter engine. Numeric columns render
// their raw magnitude in decimal, length in nanoseconds. Unknown names render
// empty.
func (s *Song) FieldValue(name string) string {
	switch name {
	case "title":
		return s.Title
	case "album":
		return s.Album
	case "artist":
		return s.Artist
	case "albumartist":
		return s.EffectiveAlbumArtist()
	case "composer":
		return s.Composer
	case "performer":
		return s.Performer
	case "grouping":
		return s.Grouping
	case "genre":
		return s.Genre
	case "comment":
		return s.Comment
	case "track":
		return strconv.Itoa(s.Track)
	case "year":
		return strconv.Itoa(s.Year)
	case "samplerate":
		return strconv.Itoa(s.SampleRate)
	case "bitdepth":
		return strconv.Itoa(s.BitDepth)
	case "bitrate":
		return strconv.Itoa(s.Bitrate)
	case "playcount":
		return strconv.Itoa(s.PlayCount)
	case "skipcount":
		return strconv.Itoa(s.SkipCount)
	case "length":
		return strconv.FormatInt(s.Length, 10)
	case "rating":
		return strconv.FormatFloat(float64(s.Rating), 'f', -1, 32)
	}
	return ""
}
