/*
Package tunedex provides an embeddable music library collection written in Go.
Songs live in a memory-mapped library file on disk and in an in-memory index,
and are searched with a small filter language compiled by the filterparser
subpackage.

# The Filter Language

A filter string is free text plus optional typed column predicates:

	artist:radiohead length:>3:00 -genre:"heavy metal"

Bare terms match a substring of any searchable field. column:value targets one
field; numeric columns accept relational prefixes (=, !=, <>, <, <=, >, >=),
the length column accepts mm:ss style durations, and the rating column takes
0-5 star values. Terms joined by a space are ANDed; OR groups alternatives;
- negates; parentheses group. Malformed input never fails, it just matches
more broadly.

# Usage

## Creating a Collection

To open or create a collection, define the collection options and initialize
the collection:

	options := CollectionOptions{
	    Name:     "library.tdx",
	    FileMode: CreateIfNotExists,
	}

	collection, err := NewCollection(options)

## Adding Songs

Add songs to the collection; the collection assigns the id and persists the
song to the library file:

	id, err := collection.AddSong(&Song{
	    Title:  "Paranoid Android",
	    Artist: "Radiohead",
	    Album:  "OK Computer",
	    Length: 383 * int64(time.Second),
	})

## Searching

Filter the collection with a filter string. The most recently compiled query
is cached, so repeated searches with the same string do not re-parse:

	songs := collection.Filter(`artist:radiohead length:>3:00`)

## Updating and Removing Songs

	err := collection.PutSong(id, song)
	err = collection.RemoveSong(id)

## Serving

RunServer exposes collections over a REST API plus a websocket live-search
endpoint, with optional JWT bearer auth; see the cmd directory for the
tunedex binary.

## Dumping the Library File

To inspect a library file for debugging or backup, use DumpLibrary, or
round-trip a collection through JSON with ExportJSON and ImportJSON:

	DumpLibrary("library.tdx")
*/
package tunedex
