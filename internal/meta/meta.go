// SPDX-License-Identifier: MIT

// Package meta reads the tag subset shown under the visualization.
// Missing files, unreadable containers and absent tags are all normal
// here: the result is simply an emptier table, never an error.
package meta

import (
	"os"

	"github.com/dhowden/tag"
	"github.com/go-audio/wav"

	"nowplaying/internal/log"
)

// Table is the displayed metadata subset.
type Table struct {
	Title     string
	Artist    string
	Album     string
	Copyright string
}

// Raw tag keys that carry copyright across the formats dhowden/tag
// parses: ID3v2.3+, ID3v2.2, vorbis comments and MP4 atoms.
var copyrightKeys = []string{"TCOP", "TCR", "copyright", "cprt"}

// Empty reports whether no field is set.
func (t Table) Empty() bool {
	return t == Table{}
}

// Lines renders the display block in fixed key order, omitting tags
// that are not set.
func (t Table) Lines() []string {
	if t.Empty() {
		return []string{"No metadata found."}
	}
	lines := []string{"Metadata:"}
	for _, kv := range []struct{ key, value string }{
		{"title", t.Title},
		{"artist", t.Artist},
		{"album", t.Album},
		{"copyright", t.Copyright},
	} {
		if kv.value != "" {
			lines = append(lines, "  "+kv.key+": "+kv.value)
		}
	}
	return lines
}

// Read extracts tags from the file at path. WAV files fall back to the
// RIFF LIST-INFO chunk, which the generic tag reader does not cover.
func Read(path string) Table {
	f, err := os.Open(path)
	if err != nil {
		log.Debugf("meta: open %s: %v", path, err)
		return Table{}
	}
	defer f.Close()

	if m, err := tag.ReadFrom(f); err == nil {
		t := Table{
			Title:     m.Title(),
			Artist:    m.Artist(),
			Album:     m.Album(),
			Copyright: rawCopyright(m),
		}
		if !t.Empty() {
			return t
		}
	} else {
		log.Debugf("meta: no tags in %s: %v", path, err)
	}

	return readWAVInfo(f)
}

// rawCopyright digs the copyright text out of the raw tag map, which
// dhowden/tag exposes but has no accessor for.
func rawCopyright(m tag.Metadata) string {
	raw := m.Raw()
	for _, key := range copyrightKeys {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// readWAVInfo reads the RIFF LIST-INFO chunk. Returns an empty table
// for anything that is not a parseable WAV file.
func readWAVInfo(f *os.File) Table {
	if _, err := f.Seek(0, 0); err != nil {
		return Table{}
	}
	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return Table{}
	}
	d.ReadMetadata()
	if d.Metadata == nil {
		return Table{}
	}
	return Table{
		Title:     d.Metadata.Title,
		Artist:    d.Metadata.Artist,
		Album:     d.Metadata.Product,
		Copyright: d.Metadata.Copyright,
	}
}
