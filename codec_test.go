package tunedex

import (
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestSongCodecRoundTrip(t *testing.T) {
	song := &Song{
		Title:       "Paranoid Android",
		Album:       "OK Computer",
		Artist:      "Radiohead",
		AlbumArtist: "Radiohead",
		Composer:    "Thom Yorke",
		Performer:   "Radiohead",
		Grouping:    "90s",
		Genre:       "Alternative Rock",
		Comment:     "b-side of nothing",
		Track:       2,
		Year:        1997,
		SampleRate:  44100,
		BitDepth:    16,
		Bitrate:     320,
		PlayCount:   12,
		SkipCount:   1,
		Length:      383000000000,
		Rating:      0.9,
	}

	decoded, err := decodeSong(encodeSong(song))
	if err != nil {
		t.Fatalf("decodeSong failed: %v", err)
	}
	if !reflect.DeepEqual(song, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, song)
	}
}

func TestSongCodecZeroValues(t *testing.T) {
	// The zero song encodes to nothing and decodes back to itself.
	data := encodeSong(&Song{})
	if len(data) != 0 {
		t.Errorf("zero song encoded to %d bytes, want 0", len(data))
	}
	decoded, err := decodeSong(data)
	if err != nil {
		t.Fatalf("decodeSong failed: %v", err)
	}
	if !reflect.DeepEqual(&Song{}, decoded) {
		t.Errorf("zero song did not round trip: %+v", decoded)
	}
}

func TestSongCodecUnratedRoundTrip(t *testing.T) {
	song := &Song{Title: "Untouched", Rating: -1}
	decoded, err := decodeSong(encodeSong(song))
	if err != nil {
		t.Fatalf("decodeSong failed: %v", err)
	}
	if decoded.Rating != -1 {
		t.Errorf("unrated marker lost: got %v", decoded.Rating)
	}
}

func TestSongCodecIgnoresZeroPadding(t *testing.T) {
	// Records that absorb a sliver of free space carry trailing zeros.
	song := &Song{Title: "Teardrop", Artist: "Massive Attack", Length: 330000000000}
	padded := append(encodeSong(song), 0, 0, 0, 0)
	decoded, err := decodeSong(padded)
	if err != nil {
		t.Fatalf("decodeSong failed: %v", err)
	}
	if !reflect.DeepEqual(song, decoded) {
		t.Errorf("padded payload mismatch:\n got %+v\nwant %+v", decoded, song)
	}
}

func TestSongCodecSkipsUnknownFields(t *testing.T) {
	data := encodeSong(&Song{Title: "Known"})

	// A field number from some future version of the format.
	data = protowire.AppendTag(data, 99, protowire.BytesType)
	data = protowire.AppendString(data, "from the future")
	data = protowire.AppendTag(data, 100, protowire.VarintType)
	data = protowire.AppendVarint(data, 42)

	decoded, err := decodeSong(data)
	if err != nil {
		t.Fatalf("decodeSong failed on unknown fields: %v", err)
	}
	if decoded.Title != "Known" {
		t.Errorf("known field lost: %+v", decoded)
	}
}

func TestSongCodecRejectsTruncatedData(t *testing.T) {
	data := encodeSong(&Song{Title: "Whole"})
	if _, err := decodeSong(data[:len(data)-2]); err == nil {
		t.Errorf("expected error decoding truncated payload")
	}
}
