package tagging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"

	"github.com/ytget/ytdx/internal/media"
	"github.com/ytget/ytdx/internal/model"
)

// Meta is the textual metadata of a track
type Meta struct {
	Title  string
	Artist string
	Album  string
}

// M4ATagger writes M4A metadata. media.Muxer satisfies it.
type M4ATagger interface {
	TagM4A(ctx context.Context, inPath, outPath string, tags media.Tags, coverPath string) error
}

// Tagger writes metadata into finished audio files
type Tagger struct {
	m4a M4ATagger
}

// NewTagger creates a tagger. m4a may be nil, in which case M4A files fail
// to tag.
func NewTagger(m4a M4ATagger) *Tagger {
	return &Tagger{m4a: m4a}
}

// Tag writes meta and the optional cover into path according to format
func (t *Tagger) Tag(ctx context.Context, path string, format model.Format, meta Meta, cover *Cover) error {
	switch format {
	case model.FormatMP3:
		return WriteID3(path, meta, cover)
	case model.FormatM4A:
		return t.tagM4A(ctx, path, meta, cover)
	default:
		return fmt.Errorf("tagging not supported for %s", format)
	}
}

// WriteID3 sets TIT2, TPE1, TALB and an APIC front cover on an MP3 file
func WriteID3(path string, meta Meta, cover *Cover) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open id3 tag: %w", err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(meta.Title)
	tag.SetArtist(meta.Artist)
	tag.SetAlbum(meta.Album)

	if cover != nil {
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    cover.MIME,
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     cover.Data,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save id3 tag: %w", err)
	}
	return nil
}

func (t *Tagger) tagM4A(ctx context.Context, path string, meta Meta, cover *Cover) error {
	if t.m4a == nil {
		return fmt.Errorf("no m4a tag writer")
	}

	dir := filepath.Dir(path)
	coverPath := ""
	if cover != nil {
		f, err := os.CreateTemp(dir, "cover-*"+cover.Extension())
		if err != nil {
			return fmt.Errorf("write cover: %w", err)
		}
		coverPath = f.Name()
		defer os.Remove(coverPath)
		if _, err := f.Write(cover.Data); err != nil {
			f.Close()
			return fmt.Errorf("write cover: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("write cover: %w", err)
		}
	}

	tagged := strings.TrimSuffix(path, filepath.Ext(path)) + ".tagged.m4a"
	tags := media.Tags{Title: meta.Title, Artist: meta.Artist, Album: meta.Album}
	if err := t.m4a.TagM4A(ctx, path, tagged, tags, coverPath); err != nil {
		os.Remove(tagged)
		return err
	}
	return os.Rename(tagged, path)
}
