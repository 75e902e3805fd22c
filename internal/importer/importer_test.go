package importer_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/cujulink/internal/adapters/repository"
	"github.com/okian/cujulink/internal/domain/career"
	"github.com/okian/cujulink/internal/importer"
	"github.com/okian/cujulink/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const dump = `scraped 2024-01-01
Player Name: Lionel Messi
Wikipedia URL: https://en.wikipedia.org/wiki/Lionel_Messi
Club Career
Season Squad
2004-2021 Barcelona
2021-2023 Paris

International/Managerial Career
2005- Argentina

Player Name: Ángel Di María
Wikipedia URL: https://en.wikipedia.org/wiki/Angel_Di_Maria
Club Career
2010-2015 Real
2015-2022 Paris
Player Name: broken block without url
Player Name: Angel Di Maria
Wikipedia URL: https://example.org/duplicate
Club Career
1999 Elsewhere
`

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

func TestSplitBlocks(t *testing.T) {
	Convey("Given a dump with a preamble and four blocks", t, func() {
		blocks := importer.SplitBlocks(strings.ReplaceAll(dump, "\n", "\r\n"))

		Convey("Then each Player Name line starts a block", func() {
			So(len(blocks), ShouldEqual, 4)
			So(blocks[0].Index, ShouldEqual, 0)
			So(blocks[3].Index, ShouldEqual, 3)
			So(blocks[0].Text, ShouldStartWith, "Player Name: Lionel Messi\n")
			So(blocks[2].Text, ShouldEqual, "Player Name: broken block without url")
		})
	})

	Convey("Given text without any marker", t, func() {
		So(importer.SplitBlocks("nothing here\n"), ShouldBeEmpty)
	})
}

func TestParseBlock(t *testing.T) {
	Convey("Given a well formed block", t, func() {
		blocks := importer.SplitBlocks(dump)
		rec, err := importer.ParseBlock(blocks[0])

		Convey("Then the header and both career sections are parsed", func() {
			So(err, ShouldBeNil)
			So(rec.Key, ShouldEqual, "lionelmessi")
			So(rec.DisplayName, ShouldEqual, "Lionel Messi")
			So(rec.SourceURL, ShouldEqual, "https://en.wikipedia.org/wiki/Lionel_Messi")
			So(rec.Biography, ShouldStartWith, "Club Career")

			club, err := career.DecodeJSON(rec.ClubCareer)
			So(err, ShouldBeNil)
			So(club.Len(), ShouldEqual, 2)

			intl, err := career.DecodeJSON(rec.IntlCareer)
			So(err, ShouldBeNil)
			So(intl.Len(), ShouldEqual, 1)
		})
	})

	Convey("Given a block without a URL line", t, func() {
		_, err := importer.ParseBlock(importer.Block{Index: 7, Text: "Player Name: Nobody"})

		Convey("Then it is malformed", func() {
			So(errors.Is(err, importer.ErrMalformedBlock), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "block 7")
		})
	})
}

func TestImport(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		im := importer.New(store, importer.WithWorkers(3))

		Convey("When the dump is imported", func() {
			report, err := im.Import(ctx, strings.NewReader(dump))

			Convey("Then good blocks are stored and the rest counted", func() {
				So(err, ShouldBeNil)
				So(report.Blocks, ShouldEqual, 4)
				So(report.Stored, ShouldEqual, 2)
				So(report.Malformed, ShouldEqual, 1)
				So(report.Duplicates, ShouldEqual, 1)
				So(report.Generation, ShouldEqual, uint64(1))

				rec, err := store.Get(ctx, "angeldimaria")
				So(err, ShouldBeNil)
				So(rec.DisplayName, ShouldEqual, "Ángel Di María")
			})
		})

		Convey("When an import with replace follows an upsert", func() {
			_, err := im.Import(ctx, strings.NewReader(dump))
			So(err, ShouldBeNil)

			replacer := importer.New(store, importer.WithReplace(true))
			report, err := replacer.Import(ctx, strings.NewReader("Player Name: Solo\nWikipedia URL: u\nClub Career\n2000 Team\n"))

			Convey("Then only the new dump remains", func() {
				So(err, ShouldBeNil)
				So(report.Stored, ShouldEqual, 1)
				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When the dump holds nothing usable", func() {
			_, err := im.Import(ctx, strings.NewReader(dump))
			So(err, ShouldBeNil)

			_, emptyErr := importer.New(store, importer.WithReplace(true)).Import(ctx, strings.NewReader(""))
			_, brokenErr := im.Import(ctx, strings.NewReader("Player Name: x\n"))

			Convey("Then ErrNoPlayers is returned and the store is kept", func() {
				So(errors.Is(emptyErr, importer.ErrNoPlayers), ShouldBeTrue)
				So(errors.Is(brokenErr, importer.ErrNoPlayers), ShouldBeTrue)
				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})
		})

		Convey("When the context is already canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := im.Import(cctx, strings.NewReader(dump))

			Convey("Then nothing is written", func() {
				So(err, ShouldNotBeNil)
				n, _ := store.Count(ctx)
				So(n, ShouldEqual, 0)
			})
		})

		Convey("When the file does not exist", func() {
			_, err := im.ImportFile(ctx, filepath.Join(t.TempDir(), "missing.txt"))

			Convey("Then a read error is returned", func() {
				So(errors.Is(err, importer.ErrRead), ShouldBeTrue)
			})
		})
	})
}

func TestWatch(t *testing.T) {
	Convey("Given a watched dump file", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		path := filepath.Join(t.TempDir(), "players.txt")
		So(os.WriteFile(path, []byte("Player Name: A\nWikipedia URL: u\nClub Career\n2000 T\n"), 0o600), ShouldBeNil)

		store := repository.NewMemoryStore()
		var (
			mu      sync.Mutex
			reports = make(chan importer.Report, 4)
		)
		im := importer.New(store, importer.WithReportHook(func(r importer.Report, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				reports <- r
			}
		}))

		watchCtx, stop := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- im.Watch(watchCtx, path, 20*time.Millisecond) }()

		Convey("When the file is rewritten", func() {
			var got importer.Report
			deadline := time.After(5 * time.Second)
		loop:
			for {
				So(os.WriteFile(path, []byte(dump), 0o600), ShouldBeNil)
				select {
				case got = <-reports:
					break loop
				case <-time.After(200 * time.Millisecond):
				case <-deadline:
					break loop
				}
			}
			stop()

			Convey("Then it is imported again and Watch returns on cancel", func() {
				So(got.Stored, ShouldEqual, 2)
				So(<-done, ShouldBeNil)
			})
		})
	})
}
