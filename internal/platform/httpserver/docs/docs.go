// Package docs registers the OpenAPI description served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/votes": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "summary": "Cast or change a vote",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/CastVoteRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/CastVoteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/options": {
            "get": {
                "produces": ["application/json"],
                "summary": "Ballot labels and the caller's voter id",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/OptionsResponse"}}
                }
            }
        },
        "/api/refresh": {
            "post": {
                "produces": ["application/json"],
                "summary": "Recount, broadcast and return the current tally",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RefreshResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/stats": {
            "get": {
                "produces": ["application/json"],
                "summary": "Tally with totals and percentages",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StatsResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/export": {
            "get": {
                "produces": ["application/json"],
                "summary": "Download the results as voting-results.json",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ExportResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "ErrorResponse": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "CastVoteRequest": {
            "type": "object",
            "properties": {"vote": {"type": "string", "enum": ["a", "b"]}}
        },
        "CastVoteResponse": {
            "type": "object",
            "properties": {"voter_id": {"type": "string"}, "vote": {"type": "string"}, "queued": {"type": "boolean"}}
        },
        "OptionsResponse": {
            "type": "object",
            "properties": {
                "option_a": {"type": "string"},
                "option_b": {"type": "string"},
                "hostname": {"type": "string"},
                "voter_id": {"type": "string"}
            }
        },
        "Votes": {
            "type": "object",
            "properties": {"a": {"type": "integer"}, "b": {"type": "integer"}}
        },
        "RefreshResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "votes": {"$ref": "#/definitions/Votes"},
                "timestamp": {"type": "string"}
            }
        },
        "StatsResponse": {
            "type": "object",
            "properties": {
                "votes": {"$ref": "#/definitions/Votes"},
                "total": {"type": "integer"},
                "percentages": {"$ref": "#/definitions/Votes"},
                "timestamp": {"type": "string"}
            }
        },
        "ExportResponse": {
            "type": "object",
            "properties": {
                "export_date": {"type": "string"},
                "total_votes": {"type": "integer"},
                "results": {
                    "type": "object",
                    "properties": {"cats": {"type": "integer"}, "dogs": {"type": "integer"}}
                },
                "winner": {"type": "string", "enum": ["cats", "dogs", "tie"]}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "voteflow API",
	Description:      "Vote intake, tally reads and live score broadcast.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
