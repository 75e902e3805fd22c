package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given a registered site", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		serve := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		Convey("Then the root serves the game page", func() {
			w := serve("/")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(w.Body.String(), ShouldContainSubstring, "/assets/app.js")
		})

		Convey("Then assets are served", func() {
			w := serve("/assets/app.js")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "/find_link")
			So(serve("/assets/site.css").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then other paths are left alone", func() {
			So(serve("/find_link").Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a nil mux", t, func() {
		So(func() { Register(context.Background(), nil) }, ShouldPanic)
	})
}
