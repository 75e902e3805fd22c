// Package importer loads the scraped player dump into a record store.
//
// A dump is a sequence of blocks, each starting with a "Player Name:" line
// followed by a "Wikipedia URL:" line and free text holding the career
// sections. Blocks are parsed concurrently and written in one store call.
package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/okian/cujulink/internal/domain/career"
	"github.com/okian/cujulink/internal/domain/model"
	"github.com/okian/cujulink/internal/domain/names"
)

var (
	blockStart  = regexp.MustCompile(`(?m)^Player Name: `)
	blockHeader = regexp.MustCompile(`(?s)^Player Name: (.+?)\nWikipedia URL: (.+?)\n(.+)`)
)

// Block is one player's section of the dump. Index is its position in the file.
type Block struct {
	Index int
	Text  string
}

// SplitBlocks cuts dump at every line starting with "Player Name: ". Text
// before the first marker is ignored.
func SplitBlocks(dump string) []Block {
	dump = strings.ReplaceAll(dump, "\r\n", "\n")
	locs := blockStart.FindAllStringIndex(dump, -1)
	blocks := make([]Block, 0, len(locs))
	for i, loc := range locs {
		end := len(dump)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		blocks = append(blocks, Block{
			Index: i,
			Text:  strings.TrimRight(dump[loc[0]:end], "\n"),
		})
	}
	return blocks
}

// ParseBlock turns a block into a record ready for the store.
func ParseBlock(b Block) (model.RawRecord, error) {
	m := blockHeader.FindStringSubmatch(b.Text)
	if m == nil {
		return model.RawRecord{}, fmt.Errorf("%w: block %d", ErrMalformedBlock, b.Index)
	}
	display := strings.TrimSpace(m[1])
	key := names.Normalize(display)
	if key == "" {
		return model.RawRecord{}, fmt.Errorf("%w: block %d has an empty name", ErrMalformedBlock, b.Index)
	}
	body := strings.TrimSpace(m[3])

	club, err := career.EncodeJSON(career.ParseSection(body, career.ClubSection))
	if err != nil {
		return model.RawRecord{}, fmt.Errorf("%w: block %d: %w", ErrMalformedBlock, b.Index, err)
	}
	intl, err := career.EncodeJSON(career.ParseSection(body, career.IntlSection))
	if err != nil {
		return model.RawRecord{}, fmt.Errorf("%w: block %d: %w", ErrMalformedBlock, b.Index, err)
	}

	return model.RawRecord{
		Key:         key,
		DisplayName: display,
		SourceURL:   strings.TrimSpace(m[2]),
		Biography:   body,
		ClubCareer:  club,
		IntlCareer:  intl,
	}, nil
}
