package names_test

import (
	"testing"

	"github.com/okian/cujulink/internal/domain/names"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given player names", t, func() {
		Convey("When they differ only in accents, case or spacing", func() {
			variants := []string{"Zlatan Ibrahimović", "zlatan ibrahimovic", "ZLATAN  IBRAHIMOVIĆ", " Zlatan\tIbrahimovic "}

			Convey("Then they share one canonical key", func() {
				for _, v := range variants {
					So(names.Normalize(v), ShouldEqual, "zlatanibrahimovic")
				}
			})
		})

		Convey("When the name has characters with no ASCII base", func() {
			Convey("Then those characters are dropped", func() {
				So(names.Normalize("Søren Larsen"), ShouldEqual, "srenlarsen")
				So(names.Normalize("李 Wei"), ShouldEqual, "wei")
				So(names.Normalize("Ørjan"), ShouldEqual, "rjan")
			})
		})

		Convey("When the name uses compatibility forms", func() {
			Convey("Then NFKD folds them", func() {
				So(names.Normalize("Ｍｅｓｓｉ"), ShouldEqual, "messi")
				So(names.Normalize("Müller"), ShouldEqual, "muller")
				So(names.Normalize("N'Golo Kanté"), ShouldEqual, "n'golokante")
			})
		})

		Convey("When accents arrive as combining marks and the spacing is unusual", func() {
			Convey("Then one pass folds them to the same key", func() {
				So(names.Normalize("A\u0301nge\u0301l  DI\tMari\u0301a"), ShouldEqual, "angeldimaria")
				So(names.Normalize("Ángel\u00a0Di\u3000María\n"), ShouldEqual, "angeldimaria")
			})
		})

		Convey("When the input is blank", func() {
			Convey("Then the key is empty", func() {
				So(names.Normalize(""), ShouldEqual, "")
				So(names.Normalize("   "), ShouldEqual, "")
			})
		})

		Convey("When normalizing twice", func() {
			inputs := []string{"Lionel Messi", "Thiago Alcântara", "ÉDER Militão", "李", "a b c"}

			Convey("Then the result does not change", func() {
				for _, in := range inputs {
					once := names.Normalize(in)
					So(names.Normalize(once), ShouldEqual, once)
				}
			})
		})
	})
}

func TestSurname(t *testing.T) {
	Convey("Given names with several tokens", t, func() {
		So(names.Surname("Lionel Messi"), ShouldEqual, "messi")
		So(names.Surname("  Kevin De Bruyne "), ShouldEqual, "bruyne")
		So(names.Surname("Ronaldinho"), ShouldEqual, "ronaldinho")
		So(names.Surname("Luka Modrić"), ShouldEqual, "modric")
		So(names.Surname(""), ShouldEqual, "")
		So(names.Surname(" \t "), ShouldEqual, "")
	})
}
