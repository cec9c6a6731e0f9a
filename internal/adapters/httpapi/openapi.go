package httpapi

import (
	"net/http"

	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
	"github.com/Guilhem-Bonnet/xdraft/internal/httpjson"
)

// handleOpenAPI renvoie une description OpenAPI minimale de l'API de lecture.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	jsonOK := func(schemaRef string) map[string]any {
		return map[string]any{
			"description": "OK",
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": schemaRef},
				},
			},
		}
	}
	jsonErr := map[string]any{
		"description": "Error",
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/Error"},
			},
		},
	}
	number := map[string]any{"type": "number", "format": "double"}
	limitParam := map[string]any{
		"name": "limit", "in": "query", "required": false,
		"schema": map[string]any{"type": "integer", "minimum": 0},
	}

	positions := make([]any, 0, len(domain.Positions))
	for _, p := range domain.Positions {
		positions = append(positions, string(p))
	}

	statProps := func(extra map[string]any) map[string]any {
		props := map[string]any{
			"name":      map[string]any{"type": "string"},
			"pa":        map[string]any{"type": "integer"},
			"ba":        number,
			"xba":       number,
			"xbaDiff":   number,
			"slg":       number,
			"xslg":      number,
			"xslgDiff":  number,
			"woba":      number,
			"xwoba":     number,
			"xwobaDiff": number,
		}
		for k, v := range extra {
			props[k] = v
		}
		return props
	}

	spec := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "xdraft API",
			"version": "v1",
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"Error": map[string]any{
					"type":       "object",
					"properties": map[string]any{"error": map[string]any{"type": "string"}},
					"required":   []any{"error"},
				},
				"Hitter": map[string]any{
					"type": "object",
					"properties": statProps(map[string]any{
						"positions": map[string]any{
							"type":        "string",
							"description": "Positions éligibles séparées par des virgules, vide si aucune.",
							"example":     "RF,OF,Util",
						},
					}),
				},
				"Pitcher": map[string]any{
					"type": "object",
					"properties": statProps(map[string]any{
						"era":     number,
						"xera":    number,
						"eraDiff": number,
					}),
				},
				"HitterList":  map[string]any{"type": "array", "items": map[string]any{"$ref": "#/components/schemas/Hitter"}},
				"PitcherList": map[string]any{"type": "array", "items": map[string]any{"$ref": "#/components/schemas/Pitcher"}},
				"Lookup": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":      map[string]any{"type": "string"},
						"status":    map[string]any{"type": "string", "enum": []any{"ok", "timeout", "parse_error", "browser_error"}},
						"positions": map[string]any{"type": "string"},
						"detail":    map[string]any{"type": "string"},
					},
				},
				"LookupList": map[string]any{"type": "array", "items": map[string]any{"$ref": "#/components/schemas/Lookup"}},
				"Status": map[string]any{
					"type":                 "object",
					"additionalProperties": true,
				},
				"Position": map[string]any{"type": "string", "enum": positions},
			},
		},
		"paths": map[string]any{
			"/api/v1/health": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/api/v1/version": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": map[string]any{"description": "OK"}}},
			},
			"/api/v1/status": map[string]any{
				"get": map[string]any{"responses": map[string]any{"200": jsonOK("#/components/schemas/Status"), "500": jsonErr}},
			},
			"/api/v1/hitters": map[string]any{
				"get": map[string]any{
					"parameters": []any{
						limitParam,
						map[string]any{"name": "position", "in": "query", "required": false, "schema": map[string]any{"$ref": "#/components/schemas/Position"}},
					},
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/HitterList"),
						"400": jsonErr,
						"503": jsonErr,
					},
				},
			},
			"/api/v1/hitters/{name}": map[string]any{
				"get": map[string]any{
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/Hitter"),
						"404": jsonErr,
						"503": jsonErr,
					},
				},
			},
			"/api/v1/pitchers": map[string]any{
				"get": map[string]any{
					"parameters": []any{limitParam},
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/PitcherList"),
						"400": jsonErr,
						"503": jsonErr,
					},
				},
			},
			"/api/v1/lookups": map[string]any{
				"get": map[string]any{
					"responses": map[string]any{
						"200": jsonOK("#/components/schemas/LookupList"),
						"503": jsonErr,
					},
				},
			},
		},
	}

	httpjson.Write(w, http.StatusOK, spec)
}
