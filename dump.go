package tunedex

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/edsrzf/mmap-go"
)

/*
DumpLibrary reads the specified library file and displays its contents in a
human-readable format. The file is mapped read-only, so a live library can be
dumped while the server runs.
*/
func DumpLibrary(filename string) {
	file, err := os.Open(filename)
	if err != nil {
		log.Fatalf("Failed to open file: %v", err)
	}
	defer file.Close()

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		log.Fatalf("Failed to map file: %v", err)
	}
	defer data.Unmap()

	if len(data) < libraryHeaderSize || binary.LittleEndian.Uint32(data) != libraryMagic {
		log.Fatalf("%s is not a library file", filename)
	}

	fmt.Printf("Header:\n")
	fmt.Printf("  Magic: %q\n", string(data[0:4]))
	fmt.Printf("  Version: %d\n", binary.LittleEndian.Uint32(data[4:]))
	fmt.Printf("  Header Length: %d\n", binary.LittleEndian.Uint32(data[8:]))

	fmt.Println("Records:")
	offset := int64(libraryHeaderSize)
	for offset+16 <= int64(len(data)) {
		recordLength := binary.LittleEndian.Uint64(data[offset:])
		if recordLength == 0 {
			fmt.Println("  (end of usable records)")
			break
		}
		if recordLength < 16 || offset+int64(recordLength) > int64(len(data)) {
			fmt.Printf("  Truncated record at offset %d\n", offset)
			break
		}

		fmt.Printf("  Offset %d, Total Length: %d\n", offset, recordLength)

		recordID := binary.LittleEndian.Uint64(data[offset+8:])
		if recordID == tombstoneID {
			fmt.Printf("    Record is deleted\n")
			offset += int64(recordLength)
			continue
		}

		fmt.Printf("    Song ID: %d\n", recordID)
		song, err := decodeSong(data[offset+16 : offset+int64(recordLength)])
		if err != nil {
			fmt.Printf("    Undecodable payload: %v\n", err)
		} else {
			fmt.Printf("    Artist: %s\n", song.Artist)
			fmt.Printf("    Album: %s\n", song.Album)
			fmt.Printf("    Title: %s\n", song.Title)
			fmt.Printf("    Length: %ds\n", song.Length/1e9)
		}
		offset += int64(recordLength)
	}
}

/*
ExportJSON writes the collection's songs as a JSON array. The output can be
fed back through ImportJSON to rebuild an equivalent library file.
*/
func ExportJSON(c *Collection, w io.Writer) error {
	songs := c.Filter("")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(songs)
}

/*
ImportJSON builds a new library file at filename from a JSON array of songs,
keeping each song's exported id.
*/
func ImportJSON(filename string, r io.Reader) error {
	var songs []*Song
	if err := json.NewDecoder(r).Decode(&songs); err != nil {
		return err
	}

	c, err := NewCollection(CollectionOptions{Name: filename, FileMode: CreateAndOverwrite})
	if err != nil {
		return err
	}
	defer c.Close()

	for _, song := range songs {
		if err := c.PutSong(song.ID, song); err != nil {
			return err
		}
	}
	return nil
}
