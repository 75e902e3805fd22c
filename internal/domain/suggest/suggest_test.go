package suggest_test

import (
	"fmt"
	"testing"

	"github.com/okian/cujulink/internal/domain/suggest"
	. "github.com/smartystreets/goconvey/convey"
)

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func TestSuggest(t *testing.T) {
	Convey("Given a name index", t, func() {
		index := map[string]string{
			"lionelmessi":        "Lionel Messi",
			"leomess":            "Leo Mess",
			"cristianoronaldo":   "Cristiano Ronaldo",
			"ronaldo":            "Ronaldo",
			"ronaldinho":         "Ronaldinho",
			"lukamodric":         "Luka Modrić",
			"zlatanibrahimovic":  "Zlatan Ibrahimović",
			"ronaldkoeman":       "Ronald Koeman",
			"erwinkoeman":        "Erwin Koeman",
			"frankdeboer":        "Frank de Boer",
			"ronalddeboer":       "Ronald de Boer",
			"thiagoalcantara":    "Thiago Alcântara",
			"thiagosilva":        "Thiago Silva",
			"davidsilva":         "David Silva",
			"bernardosilva":      "Bernardo Silva",
			"andresilva":         "André Silva",
			"gilbertosilva":      "Gilberto Silva",
		}

		Convey("When querying a surname", func() {
			got := suggest.Suggest("messi", map[string]string{"lionelmessi": "Lionel Messi", "leomess": "Leo Mess"})

			Convey("Then the closer surname match ranks first", func() {
				So(got, ShouldNotBeEmpty)
				So(got[0], ShouldEqual, "Lionel Messi")
				So(indexOf(got, "Leo Mess"), ShouldNotEqual, 0)
			})
		})

		Convey("When the query is blank", func() {
			Convey("Then nothing is suggested", func() {
				So(suggest.Suggest("", index), ShouldBeEmpty)
				So(suggest.Suggest("   ", index), ShouldBeEmpty)
			})
		})

		Convey("When the query carries accents and odd case", func() {
			got := suggest.Suggest("MODRIĆ", index)

			Convey("Then the folded surname still matches", func() {
				So(got, ShouldContain, "Luka Modrić")
			})
		})

		Convey("When many players share the surname", func() {
			got := suggest.Suggest("thiago silva", index)

			Convey("Then results are capped and ranked by full-name similarity", func() {
				So(len(got), ShouldEqual, 5)
				So(got[0], ShouldEqual, "Thiago Silva")
				So(got, ShouldNotContain, "Thiago Alcântara")
			})
		})

		Convey("When the surname is misspelled", func() {
			got := suggest.Suggest("lionel mesi", index)

			Convey("Then close keys backfill the list", func() {
				So(got, ShouldContain, "Lionel Messi")
			})
		})

		Convey("When a limit is given", func() {
			got := suggest.Suggest("silva", index, suggest.WithLimit(2))
			So(len(got), ShouldEqual, 2)

			got = suggest.Suggest("silva", index, suggest.WithLimit(0))
			So(len(got), ShouldEqual, 5)
		})

		Convey("When nothing is similar", func() {
			So(suggest.Suggest("qqqqqq", index), ShouldBeEmpty)
		})

		Convey("When the cutoff is lowered", func() {
			got := suggest.Suggest("ronaldoo", index, suggest.WithCutoff(0.5))
			So(got, ShouldContain, "Ronaldo")
		})
	})

	Convey("Given six close spellings of one name", t, func() {
		index := map[string]string{
			"lionelmessi": "Lionel Messi",
			"lionelmessz": "Lionel Messz",
			"lionelmessy": "Lionel Messy",
			"lionelmessu": "Lionel Messu",
			"lionelmesso": "Lionel Messo",
			"lionelmessa": "Lionel Messa",
		}

		Convey("When the surname hit is also the best close match", func() {
			got := suggest.Suggest("Lionel Messi", index)

			Convey("Then the backfill still fills every slot", func() {
				So(len(got), ShouldEqual, 5)
				So(got[0], ShouldEqual, "Lionel Messi")
				So(got[1:], ShouldResemble, []string{"Lionel Messz", "Lionel Messy", "Lionel Messu", "Lionel Messo"})
			})
		})
	})

	Convey("Given keys sharing a display name", t, func() {
		index := map[string]string{"twin1smith": "Twin Smith", "twin2smith": "Twin Smith", "jsmith": "J Smith"}

		Convey("Then display names are not repeated", func() {
			got := suggest.Suggest("smith", index)
			So(len(got), ShouldEqual, 2)
			So(got, ShouldContain, "Twin Smith")
			So(got, ShouldContain, "J Smith")
		})
	})

	Convey("Given many random queries", t, func() {
		index := map[string]string{}
		for i := 0; i < 40; i++ {
			index[fmt.Sprintf("player%dsilva", i)] = fmt.Sprintf("Player%d Silva", i)
		}

		Convey("Then results never exceed the limit or repeat", func() {
			for _, q := range []string{"silva", "player1 silva", "player", "p s", "Silvá"} {
				for _, limit := range []int{1, 3, 5, 8} {
					got := suggest.Suggest(q, index, suggest.WithLimit(limit))
					So(len(got), ShouldBeLessThanOrEqualTo, limit)
					seen := map[string]bool{}
					for _, g := range got {
						So(seen[g], ShouldBeFalse)
						seen[g] = true
					}
				}
			}
		})
	})
}

func TestCloseMatches(t *testing.T) {
	Convey("Given candidates", t, func() {
		candidates := []string{"ape", "apple", "peach", "puppy"}

		Convey("Then matches above the cutoff come best first", func() {
			So(suggest.CloseMatches("appel", candidates, 3, 0.6), ShouldResemble, []string{"apple", "ape"})
			So(suggest.CloseMatches("appel", candidates, 1, 0.6), ShouldResemble, []string{"apple"})
			So(suggest.CloseMatches("appel", candidates, 3, 0.8), ShouldResemble, []string{"apple"})
		})

		Convey("Then a non-positive n yields nothing", func() {
			So(suggest.CloseMatches("appel", candidates, 0, 0.6), ShouldBeEmpty)
		})
	})

	Convey("Given identical and empty strings", t, func() {
		So(suggest.Ratio("messi", "messi"), ShouldEqual, 1.0)
		So(suggest.Ratio("", ""), ShouldEqual, 1.0)
		So(suggest.Ratio("abc", "xyz"), ShouldEqual, 0.0)
	})
}
