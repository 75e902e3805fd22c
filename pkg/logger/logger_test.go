package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			err := Init()

			Convey("Then Get returns a usable logger", func() {
				So(err, ShouldBeNil)
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log format")
			})
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat(FormatJSON), WithWriter(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			Named("search").Info(ctx, "link found",
				String("start", "lionelmessi"),
				Int("expanded", 3),
				Bool("found", true),
				Duration("took", 2*time.Millisecond),
			)

			Convey("Then the record carries every field and the caller", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "link found")
				So(rec["component"], ShouldEqual, "search")
				So(rec["start"], ShouldEqual, "lionelmessi")
				So(rec["expanded"], ShouldEqual, float64(3))
				So(rec["found"], ShouldEqual, true)
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level filters a message", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Warn(ctx, "shown")
			So(SetLevelString("info"), ShouldBeNil)

			Convey("Then only the warning is written", func() {
				out := buf.String()
				So(out, ShouldNotContainSubstring, "hidden")
				So(out, ShouldContainSubstring, "shown")
			})
		})

		Convey("When using With", func() {
			Get().With(String("request_id", "abc")).Error(ctx, "boom")

			Convey("Then the bound field is present", func() {
				So(strings.Contains(buf.String(), `"request_id":"abc"`), ShouldBeTrue)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(Init(), ShouldBeNil)
		for _, lvl := range []string{"debug", "INFO", "warning", "error", ""} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
		So(SetLevelString("info"), ShouldBeNil)
	})
}
