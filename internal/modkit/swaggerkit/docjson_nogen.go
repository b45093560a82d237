//go:build !swag

package swaggerkit

import (
	"encoding/json"
	"net/http"
)

type skeletonInfo struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

type skeletonTag struct {
	Name string `json:"name"`
}

type skeleton struct {
	OpenAPI string           `json:"openapi"`
	Info    skeletonInfo     `json:"info"`
	Servers []map[string]any `json:"servers"`
	Tags    []skeletonTag    `json:"tags"`
	Paths   map[string]any   `json:"paths"`
}

// serveDocJSON answers with an empty walletsync document when swag output is not compiled in
func serveDocJSON(d Docs) http.HandlerFunc {
	body, _ := json.Marshal(skeleton{
		OpenAPI: "3.0.3",
		Info:    skeletonInfo{Title: "walletsync API", Version: d.Build.Version},
		Servers: []map[string]any{{"url": d.Server}},
		Tags:    []skeletonTag{{"Auth"}, {"Convergence"}, {"Meta"}},
		Paths:   map[string]any{},
	})
	return func(w http.ResponseWriter, _ *http.Request) { writeDoc(w, body) }
}
