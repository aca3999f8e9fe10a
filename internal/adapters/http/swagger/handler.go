// Package swagger serves the API description and a ReDoc page for it.
package swagger

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RedocScript is the ReDoc bundle loaded by the docs page when no local
// bundle is configured.
const RedocScript = "https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"

// LocalScriptPath serves the bundle given to WithRedocBundle.
const LocalScriptPath = "/api-docs/redoc.standalone.js"

// Option configures the docs routes.
type Option func(*routes)

type routes struct {
	bundle []byte
}

// WithRedocBundle serves js at LocalScriptPath and points the docs page at it.
func WithRedocBundle(js []byte) Option {
	return func(r *routes) {
		if len(js) > 0 {
			r.bundle = js
		}
	}
}

// Routes returns a route registrar for chi.
//
//	GET /api-docs                    -> ReDoc HTML
//	GET /openapi.yaml                -> embedded OpenAPI document
//	GET /api-docs/redoc.standalone.js -> local ReDoc bundle, when configured
func Routes(opts ...Option) func(chi.Router) {
	cfg := &routes{}
	for _, opt := range opts {
		opt(cfg)
	}
	script := RedocScript
	if cfg.bundle != nil {
		script = LocalScriptPath
	}
	page := []byte(indexHTML(script))

	return func(r chi.Router) {
		if r == nil {
			panic("router is nil")
		}

		r.Get("/api-docs", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(page)
		})

		r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
			_, _ = w.Write(OpenAPI)
		})

		if cfg.bundle != nil {
			r.Get(LocalScriptPath, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
				_, _ = w.Write(cfg.bundle)
			})
		}
	}
}

// Register attaches the docs routes to r, loading ReDoc from its CDN.
func Register(r chi.Router) {
	Routes()(r)
}

func indexHTML(script string) string {
	return `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Workload Index API</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="` + script + `"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
}
