// Package docs registers the OpenAPI description served at /docs.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "NPB Projections"},
        "license": {"name": "MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/predict/hitter/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["projections"],
                "summary": "Batter projection",
                "parameters": [{"type": "string", "description": "Player name (partial match)", "name": "name", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/predict/pitcher/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["projections"],
                "summary": "Pitcher projection",
                "parameters": [{"type": "string", "description": "Player name (partial match)", "name": "name", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/predict/team/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["teams"],
                "summary": "Team Pythagorean record",
                "parameters": [
                    {"type": "string", "description": "Team name", "name": "name", "in": "path", "required": true},
                    {"type": "integer", "description": "Season (default: last completed season)", "name": "year", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.TeamResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/sabermetrics/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sabermetrics"],
                "summary": "Season value metrics",
                "parameters": [
                    {"type": "string", "description": "Player name (partial match)", "name": "name", "in": "path", "required": true},
                    {"type": "integer", "description": "Season (omit for all seasons)", "name": "year", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SabermetricsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/rankings/hitters": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rankings"],
                "summary": "Batter rankings",
                "parameters": [
                    {"type": "integer", "default": 20, "description": "Rows to return (1-100)", "name": "top", "in": "query"},
                    {"enum": ["OPS", "AVG", "OBP", "SLG", "HR", "RBI", "SB", "wOBA", "wRC+"], "type": "string", "default": "OPS", "description": "Sort key", "name": "sort_by", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/rankings/pitchers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rankings"],
                "summary": "Pitcher rankings",
                "parameters": [
                    {"type": "integer", "default": 20, "description": "Rows to return (1-100)", "name": "top", "in": "query"},
                    {"enum": ["ERA", "WHIP", "W", "SO", "SV"], "type": "string", "default": "ERA", "description": "Sort key", "name": "sort_by", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/pythagorean": {
            "get": {
                "produces": ["application/json"],
                "tags": ["teams"],
                "summary": "Pythagorean standings",
                "parameters": [{"type": "integer", "description": "Season (default: last completed season)", "name": "year", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.PythagoreanResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/standings/projected": {
            "get": {
                "produces": ["application/json"],
                "tags": ["teams"],
                "summary": "Projected standings",
                "parameters": [{"enum": ["CL", "PL"], "type": "string", "description": "League filter", "name": "league", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.StandingsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/autofill": {
            "get": {
                "produces": ["application/json"],
                "tags": ["bootstrap"],
                "summary": "Get autofill entities",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AutofillResponse"}}
                }
            }
        }
    },
    "definitions": {
        "respond.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "detail": {"type": "string"}
                    }
                }
            }
        },
        "handler.TeamResponse": {"type": "object"},
        "handler.SabermetricsResponse": {"type": "object"},
        "handler.PythagoreanResponse": {"type": "object"},
        "handler.StandingsResponse": {"type": "object"},
        "handler.AutofillResponse": {"type": "object"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8000",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "NPB Projections API",
	Description:      "Next-season NPB player projections, linear-weights value metrics, Pythagorean records and projected standings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
