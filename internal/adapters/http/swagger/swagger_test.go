package swagger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a router with the docs routes", t, func() {
		r := chi.NewRouter()
		Register(r)

		convey.Convey("Then it should serve /openapi.yaml", func() {
			req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")

			var doc struct {
				OpenAPI string         `yaml:"openapi"`
				Paths   map[string]any `yaml:"paths"`
			}
			convey.So(yaml.Unmarshal(w.Body.Bytes(), &doc), convey.ShouldBeNil)
			convey.So(doc.OpenAPI, convey.ShouldStartWith, "3.")
			convey.So(doc.Paths, convey.ShouldContainKey, "/employees/{employeeID}/jobs/{jobID}/{category}/index")
		})

		convey.Convey("And it should serve /api-docs", func() {
			req := httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc-container")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "/openapi.yaml")
		})

		convey.Convey("When the router is nil", func() {
			convey.So(func() { Register(nil) }, convey.ShouldPanic)
		})
	})
}

func TestSwaggerLocalBundle(t *testing.T) {
	convey.Convey("Given docs routes with a local ReDoc bundle", t, func() {
		r := chi.NewRouter()
		Routes(WithRedocBundle([]byte("window.Redoc={};")))(r)

		convey.Convey("Then the page loads the local script", func() {
			req := httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `src="`+LocalScriptPath+`"`)
			convey.So(w.Body.String(), convey.ShouldNotContainSubstring, RedocScript)
		})

		convey.Convey("And the bundle is served", func() {
			req := httptest.NewRequest(http.MethodGet, LocalScriptPath, http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/javascript; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldEqual, "window.Redoc={};")
		})
	})

	convey.Convey("Given docs routes without a bundle", t, func() {
		r := chi.NewRouter()
		Routes(WithRedocBundle(nil))(r)

		req := httptest.NewRequest(http.MethodGet, LocalScriptPath, http.NoBody)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
	})
}
