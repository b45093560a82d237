//go:build swag

package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	docs "walletsync/internal/services/api/docs"
)

var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

// operator guarded route groups, everything else is open
var guardedPrefixes = []string{"/auth/", "/convergence/"}

func serveDocJSON(d Docs) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var doc map[string]any
		if err := json.Unmarshal([]byte(docReader()), &doc); err != nil {
			http.Error(w, "openapi document parse error", http.StatusInternalServerError)
			return
		}
		decorate(doc, d.Server)
		if info, ok := doc["info"].(map[string]any); ok && d.Build.Version != "" {
			info["version"] = d.Build.Version
		}
		body, err := json.Marshal(doc)
		if err != nil {
			http.Error(w, "openapi document encode error", http.StatusInternalServerError)
			return
		}
		writeDoc(w, body)
	}
}

// decorate pins the document to OAS 3.0.3 and adds the envelope schema,
// operator bearer auth and the error responses every route can return
func decorate(doc map[string]any, server string) {
	delete(doc, "swagger")
	if v, _ := doc["openapi"].(string); !strings.HasPrefix(v, "3.0") {
		doc["openapi"] = "3.0.3"
	}
	if _, ok := doc["servers"]; !ok {
		doc["servers"] = []any{map[string]any{"url": server}}
	}

	comps := child(doc, "components")
	child(comps, "schemas")["Envelope"] = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "integer"},
			"error":       map[string]any{"type": "string"},
			"field":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
			"data":        map[string]any{},
		},
		"required": []any{"status_code", "status"},
	}
	child(comps, "securitySchemes")["operator"] = map[string]any{"type": "http", "scheme": "bearer"}

	paths, _ := doc["paths"].(map[string]any)
	for path, node := range paths {
		ops, ok := node.(map[string]any)
		if !ok {
			continue
		}
		guarded := isGuarded(path)
		for _, o := range ops {
			op, ok := o.(map[string]any)
			if !ok {
				continue
			}
			resps := child(op, "responses")
			setDefault(resps, "400", "Bad Request", "order_id is a required field")
			setDefault(resps, "500", "Internal Server Error", "internal error")
			if guarded {
				op["security"] = []any{map[string]any{"operator": []any{}}}
				setDefault(resps, "401", "Unauthorized", "missing bearer token")
			}
		}
	}
}

func isGuarded(path string) bool {
	for _, p := range guardedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}

func setDefault(resps map[string]any, code, desc, example string) {
	if _, ok := resps[code]; ok {
		return
	}
	resps[code] = map[string]any{
		"description": desc,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema":  map[string]any{"$ref": "#/components/schemas/Envelope"},
				"example": map[string]any{"status": desc, "error": example},
			},
		},
	}
}
