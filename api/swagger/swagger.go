package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academic Assignment API",
        "description": "Teacher assignment validation, workload regimes and coordinator notifications",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Assignments", "description": "Teacher appointments to sections"},
        {"name": "Regimes", "description": "Workload regime administration"},
        {"name": "Notifications", "description": "Per-user notification inbox"}
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
                    "200": {"description": "Ready"}
                }
            }
        },
        "/teachers/{id}/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List a teacher's assignments",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Appoint a teacher to a section",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssignmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created, advisory in meta when a ceiling is exceeded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid dates, missing modality or dedication, no active regime"},
                    "409": {"description": "Interval overlaps an assignment in the same section or position"}
                }
            }
        },
        "/teachers/{id}/assignments/{aid}": {
            "put": {
                "tags": ["Assignments"],
                "summary": "Rewrite an assignment's dates, position and dedication",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "aid", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}/assignments/{aid}/close": {
            "post": {
                "tags": ["Assignments"],
                "summary": "End an assignment as of today",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "aid", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Closing would leave the subject without a primary instructor"}
                }
            }
        },
        "/teachers/{id}/workload": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Current weekly workload of a teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/regimes": {
            "get": {
                "tags": ["Regimes"],
                "summary": "List workload regimes",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Regimes"],
                "summary": "Activate a workload regime for a modality and dedication",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ActivateRegimeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/regimes/{id}": {
            "delete": {
                "tags": ["Regimes"],
                "summary": "Deactivate a workload regime",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/me/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List the caller's visible notifications",
                "parameters": [
                    {"name": "read", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/me/notifications/{id}/read": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark one notification read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/me/notifications/{id}/snooze": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Defer one notification for the configured number of days",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/me/notifications/{id}/dismiss": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Archive one notification",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "CreateAssignmentRequest": {
            "type": "object",
            "properties": {
                "section_id": {"type": "string"},
                "position_type": {"type": "string", "enum": ["LECTURE", "PRACTICAL", "COMBINED"]},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "dedication": {"type": "string"},
                "note": {"type": "string"},
                "document_id": {"type": "string"}
            },
            "required": ["section_id", "position_type", "start_date", "dedication"]
        },
        "UpdateAssignmentRequest": {
            "type": "object",
            "properties": {
                "position_type": {"type": "string", "enum": ["LECTURE", "PRACTICAL", "COMBINED"]},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "dedication": {"type": "string"},
                "note": {"type": "string"},
                "document_id": {"type": "string"}
            },
            "required": ["position_type", "start_date", "dedication"]
        },
        "ActivateRegimeRequest": {
            "type": "object",
            "properties": {
                "modality": {"type": "string"},
                "dedication": {"type": "string"},
                "min_weekly_hours": {"type": "integer"},
                "max_weekly_hours": {"type": "integer"},
                "min_annual_hours": {"type": "integer"},
                "max_annual_hours": {"type": "integer"}
            },
            "required": ["modality", "dedication"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
