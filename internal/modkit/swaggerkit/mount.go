// Package swaggerkit serves the embedded OpenAPI document and a swagger UI over it
package swaggerkit

import (
	_ "embed"
	"net/http"

	phttp "showroom/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.json
var openapi []byte

// Mount adds the UI at /api/docs/index.html and the document at /api/docs/doc.json when enabled
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Route("/api/docs", func(r phttp.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/api/docs/index.html", http.StatusFound)
		})
		r.Get("/doc.json", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(openapi)
		})
		r.Handle("/*", httpSwagger.Handler(httpSwagger.URL("doc.json")))
	})
}
