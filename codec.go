package tunedex

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Library file payloads are protowire-encoded songs. Field numbers are part
// of the on-disk format and must not be reassigned.
const (
	fieldTitle       = 1
	fieldAlbum       = 2
	fieldArtist      = 3
	fieldAlbumArtist = 4
	fieldComposer    = 5
	fieldPerformer   = 6
	fieldGrouping    = 7
	fieldGenre       = 8
	fieldComment     = 9
	fieldTrack       = 10
	fieldYear        = 11
	fieldSampleRate  = 12
	fieldBitDepth    = 13
	fieldBitrate     = 14
	fieldPlayCount   = 15
	fieldSkipCount   = 16
	fieldLength      = 17
	fieldRating      = 18
)

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendInt(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

// encodeSong serializes a song into a library file payload. The id is not
// part of the payload; the record framing carries it.
func encodeSong(s *Song) []byte {
	var b []byte
	b = appendString(b, fieldTitle, s.Title)
	b = appendString(b, fieldAlbum, s.Album)
	b = appendString(b, fieldArtist, s.Artist)
	b = appendString(b, fieldAlbumArtist, s.AlbumArtist)
	b = appendString(b, fieldComposer, s.Composer)
	b = appendString(b, fieldPerformer, s.Performer)
	b = appendString(b, fieldGrouping, s.Grouping)
	b = appendString(b, fieldGenre, s.Genre)
	b = appendString(b, fieldComment, s.Comment)
	b = appendInt(b, fieldTrack, int64(s.Track))
	b = appendInt(b, fieldYear, int64(s.Year))
	b = appendInt(b, fieldSampleRate, int64(s.SampleRate))
	b = appendInt(b, fieldBitDepth, int64(s.BitDepth))
	b = appendInt(b, fieldBitrate, int64(s.Bitrate))
	b = appendInt(b, fieldPlayCount, int64(s.PlayCount))
	b = appendInt(b, fieldSkipCount, int64(s.SkipCount))
	b = appendInt(b, fieldLength, s.Length)
	if s.Rating != 0 {
		b = protowire.AppendTag(b, fieldRating, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(s.Rating))
	}
	return b
}

// decodeSong parses a library file payload. Unknown fields are skipped so
// newer files remain readable.
func decodeSong(data []byte) (*Song, error) {
	s := &Song{}
	for len(data) > 0 {
		if data[0] == 0 {
			// Zero padding after the payload. Field numbers start at 1,
			// so a zero tag never opens a real field.
			break
		}
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]

		switch typ {
		case protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			switch num {
			case fieldTitle:
				s.Title = v
			case fieldAlbum:
				s.Album = v
			case fieldArtist:
				s.Artist = v
			case fieldAlbumArtist:
				s.AlbumArtist = v
			case fieldComposer:
				s.Composer = v
			case fieldPerformer:
				s.Performer = v
			case fieldGrouping:
				s.Grouping = v
			case fieldGenre:
				s.Genre = v
			case fieldComment:
				s.Comment = v
			}
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			switch num {
			case fieldTrack:
				s.Track = int(v)
			case fieldYear:
				s.Year = int(v)
			case fieldSampleRate:
				s.SampleRate = int(v)
			case fieldBitDepth:
				s.BitDepth = int(v)
			case fieldBitrate:
				s.Bitrate = int(v)
			case fieldPlayCount:
				s.PlayCount = int(v)
			case fieldSkipCount:
				s.SkipCount = int(v)
			case fieldLength:
				s.Length = int64(v)
			}
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
			if num == fieldRating {
				s.Rating = math.Float32frombits(v)
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return s, nil
}
