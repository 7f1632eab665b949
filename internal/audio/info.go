// Package audio inspects sample files for display. Files are never decoded
// or converted: the card receives the source bytes unchanged.
package audio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
)

// Info describes a source sample.
type Info struct {
	Name   string
	Title  string
	Artist string
	Size   int64
	// Native is false when the file is not an mp3 and will be copied under
	// an .mp3 name as-is.
	Native bool
}

// Display returns "Artist - Title" when tags exist, otherwise the file name.
func (i Info) Display() string {
	switch {
	case i.Title != "" && i.Artist != "":
		return i.Artist + " - " + i.Title
	case i.Title != "":
		return i.Title
	default:
		return i.Name
	}
}

// Describe stats path and, for mp3 files, reads the ID3 title and artist.
// Unreadable tags are ignored.
func Describe(path string) (Info, error) {
	info := Info{Name: filepath.Base(path)}
	st, err := os.Stat(path)
	if err != nil {
		return info, err
	}
	info.Size = st.Size()
	info.Native = IsMP3(path)
	if !info.Native {
		return info, nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return info, nil
	}
	defer tag.Close()
	info.Title = strings.TrimSpace(tag.Title())
	info.Artist = strings.TrimSpace(tag.Artist())
	return info, nil
}

// IsMP3 reports whether path has an .mp3 extension.
func IsMP3(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mp3")
}
