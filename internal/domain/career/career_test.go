package career_test

import (
	"errors"
	"testing"

	"github.com/okian/cujulink/internal/domain/career"
	"github.com/okian/cujulink/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDecodeJSON(t *testing.T) {
	Convey("Given stored career text", t, func() {
		Convey("When it is a list of pairs with duplicates", func() {
			set, err := career.DecodeJSON(`[["1990","TeamA"],["1991","TeamB"],["1990","TeamA"]]`)

			Convey("Then the set is deduplicated", func() {
				So(err, ShouldBeNil)
				So(set.Len(), ShouldEqual, 2)
				So(set.Has(model.ServicePeriod{Label: "1991", Team: "TeamB"}), ShouldBeTrue)
			})
		})

		Convey("When it is blank or null", func() {
			for _, text := range []string{"", "  ", "null", "[]"} {
				set, err := career.DecodeJSON(text)
				So(err, ShouldBeNil)
				So(set.Len(), ShouldEqual, 0)
			}
		})

		Convey("When it is malformed", func() {
			for _, text := range []string{`{"a":1}`, `[["1990"]]`, `[["1990","A","B"]]`, `not json`, `[1,2]`} {
				set, err := career.DecodeJSON(text)
				So(errors.Is(err, career.ErrMalformedCareer), ShouldBeTrue)
				So(set, ShouldNotBeNil)
				So(set.Len(), ShouldEqual, 0)
			}
		})
	})
}

func TestEncodeJSON(t *testing.T) {
	Convey("Given a period set", t, func() {
		set := model.NewPeriodSet(
			model.ServicePeriod{Label: "1991", Team: "TeamB"},
			model.ServicePeriod{Label: "1990", Team: "TeamA"},
		)

		Convey("Then it encodes in sorted order and decodes back", func() {
			text, err := career.EncodeJSON(set)
			So(err, ShouldBeNil)
			So(text, ShouldEqual, `[["1990","TeamA"],["1991","TeamB"]]`)

			back, err := career.DecodeJSON(text)
			So(err, ShouldBeNil)
			So(back, ShouldResemble, set)
		})

		Convey("Then an empty set encodes as an empty array", func() {
			text, err := career.EncodeJSON(nil)
			So(err, ShouldBeNil)
			So(text, ShouldEqual, "[]")
		})
	})
}

func TestParseSection(t *testing.T) {
	Convey("Given a dump record", t, func() {
		record := `Some biography text.
Club Career
Season Squad
1999-2004 Barcelona B
2004 Barcelona
  2004 Barcelona  
Lonely

International/Managerial Career
Season Squad
2005 Argentina U20
2005-2022 Argentina
`

		Convey("When parsing the club section", func() {
			set := career.ParseSection(record, career.ClubSection)

			Convey("Then lines split at the last space until the blank line", func() {
				So(set.Sorted(), ShouldResemble, []model.ServicePeriod{
					{Label: "1999-2004 Barcelona", Team: "B"},
					{Label: "2004", Team: "Barcelona"},
				})
			})
		})

		Convey("When parsing the international section", func() {
			set := career.ParseSection(record, career.IntlSection)

			Convey("Then it reads to the end of the record", func() {
				So(set.Len(), ShouldEqual, 2)
				So(set.Has(model.ServicePeriod{Label: "2005 Argentina", Team: "U20"}), ShouldBeTrue)
				So(set.Has(model.ServicePeriod{Label: "2005-2022", Team: "Argentina"}), ShouldBeTrue)
			})
		})

		Convey("When the header is missing", func() {
			So(career.ParseSection("nothing here", career.ClubSection).Len(), ShouldEqual, 0)
		})
	})
}

func TestFormatPeriod(t *testing.T) {
	Convey("Given stored periods", t, func() {
		cases := []struct {
			label, team     string
			season, display string
		}{
			{"2004", "Barcelona", "2004", "Barcelona"},
			{"1999-2004 Barcelona", "B", "1999-2004", "Barcelona B"},
			{"2005 Argentina", "U20", "2005", "Argentina U20"},
			{"Loan 2010 Inter", "Milan", "2010", "Inter Milan"},
			{"unknown", "Club", "unknown", "Club"},
		}
		for _, c := range cases {
			season, team := career.FormatPeriod(model.ServicePeriod{Label: c.label, Team: c.team})
			So(season, ShouldEqual, c.season)
			So(team, ShouldEqual, c.display)
		}
	})
}
