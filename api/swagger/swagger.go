package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CEP Room Planner API",
        "description": "Weekly room occupancy grid with conflict detection and drag-and-drop relocation.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Planner", "description": "Sites, rooms, weekly grid, statistics and exports"},
        {"name": "Relocation", "description": "Move one session to another room or time"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready or degraded, with per dependency checks"}
                }
            }
        },
        "/api/v1/planner/sites": {
            "get": {
                "tags": ["Planner"],
                "summary": "List sites",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/planner/rooms": {
            "get": {
                "tags": ["Planner"],
                "summary": "List rooms of a site",
                "parameters": [
                    {"name": "site", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown site", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/planner/week": {
            "get": {
                "tags": ["Planner"],
                "summary": "Weekly planner grid",
                "parameters": [
                    {"name": "site", "in": "query", "type": "string"},
                    {"name": "offset", "in": "query", "type": "integer", "description": "Weeks away from the current week"},
                    {"name": "day", "in": "query", "type": "string", "enum": ["MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/planner/stats": {
            "get": {
                "tags": ["Planner"],
                "summary": "Planner statistics for a site",
                "parameters": [
                    {"name": "site", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/planner/conflicts/check": {
            "post": {
                "tags": ["Planner"],
                "summary": "Check a placement against the schedule",
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConflictCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/planner/export": {
            "get": {
                "tags": ["Planner"],
                "summary": "Download the weekly timetable",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "site", "in": "query", "type": "string"},
                    {"name": "offset", "in": "query", "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Timetable file", "schema": {"type": "file"}},
                    "400": {"description": "Invalid format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/planner/reload": {
            "post": {
                "tags": ["Planner"],
                "summary": "Reload rooms and schedule from the reference feed",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Feed unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/planner/relocation": {
            "get": {
                "tags": ["Relocation"],
                "summary": "Active relocation",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Relocation"],
                "summary": "Pick up a session",
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StartRelocationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Dragging", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Another session is being moved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Relocation"],
                "summary": "Abandon the active relocation",
                "responses": {
                    "200": {"description": "Cancelled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Nothing is being moved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/planner/relocation/hover": {
            "put": {
                "tags": ["Relocation"],
                "summary": "Evaluate the hovered cell",
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/HoverRequest"}}
                ],
                "responses": {
                    "200": {"description": "Hover feedback", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Nothing is being moved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Relocation"],
                "summary": "Clear the hovered cell",
                "responses": {
                    "200": {"description": "Dragging", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Nothing is being moved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/planner/relocation/drop": {
            "post": {
                "tags": ["Relocation"],
                "summary": "Release the session",
                "description": "An empty body drops on the last hovered cell. Rejected drops return 200 with committed=false.",
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/DropRequest"}}
                ],
                "responses": {
                    "200": {"description": "Drop result", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Session changed or removed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Nothing is being moved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ConflictCheckRequest": {
            "type": "object",
            "required": ["room_id", "day", "start_time", "duration_minutes"],
            "properties": {
                "room_id": {"type": "string"},
                "day": {"type": "string", "example": "TUESDAY"},
                "start_time": {"type": "string", "example": "10:30"},
                "duration_minutes": {"type": "integer", "example": 90},
                "exclude_entry_id": {"type": "string"}
            }
        },
        "StartRelocationRequest": {
            "type": "object",
            "required": ["entry_id"],
            "properties": {
                "entry_id": {"type": "string"}
            }
        },
        "HoverRequest": {
            "type": "object",
            "required": ["room_id"],
            "properties": {
                "room_id": {"type": "string"},
                "start_time": {"type": "string", "example": "11:00"},
                "offset": {"type": "number", "description": "Vertical pixel offset into the grid"}
            }
        },
        "DropRequest": {
            "type": "object",
            "properties": {
                "room_id": {"type": "string"},
                "start_time": {"type": "string"},
                "offset": {"type": "number"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
