// Package swaggerkit serves the walletsync OpenAPI document and its browser
package swaggerkit

import (
	"net/http"
	"strings"

	"walletsync/internal/core/version"
	phttp "walletsync/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	defaultBase   = "/api/docs"
	defaultServer = "/api/v1"
	docFile       = "/openapi.json"
)

// Docs configures the documentation mount, a zero Base or Server takes the default
type Docs struct {
	Enabled bool
	Base    string
	Server  string
	Build   version.BuildInfo
}

func (d Docs) withDefaults() Docs {
	d.Base = "/" + strings.Trim(d.Base, "/")
	if d.Base == "/" {
		d.Base = defaultBase
	}
	if d.Server == "" {
		d.Server = defaultServer
	}
	return d
}

// Mount serves the document at Base/openapi.json and the browser under Base/
func Mount(r phttp.Router, d Docs) {
	if !d.Enabled {
		return
	}
	d = d.withDefaults()
	r.Get(d.Base, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, d.Base+"/", http.StatusPermanentRedirect)
	})
	r.Get(d.Base+docFile, serveDocJSON(d))
	r.Handle(d.Base+"/*", httpSwagger.Handler(
		httpSwagger.InstanceName("walletsync"),
		httpSwagger.URL(d.Base+docFile),
		httpSwagger.DocExpansion("none"),
	))
}

func writeDoc(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}
