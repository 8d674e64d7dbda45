package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Classroom Attendance API",
        "description": "Daily attendance capture and competency tracking for one classroom.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Attendance", "description": "Daily capture, history and export"},
        {"name": "Competencies", "description": "Per-student competency checklist"},
        {"name": "Ops", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Ops"],
                "summary": "Liveness check with process counters",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Ops"],
                "summary": "Readiness check; pings the database",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/save": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Save today's attendance",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SaveAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "Saved", "schema": {"$ref": "#/definitions/SaveAttendanceResponse"}},
                    "400": {"description": "Malformed payload", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Unknown student id", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/session/{id}/save": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Update attendance of today's session by id",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SaveAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "Saved", "schema": {"$ref": "#/definitions/SaveAttendanceResponse"}},
                    "400": {"description": "Malformed payload", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "403": {"description": "Session is not dated today", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Unknown session or student", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/history/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Download the attendance history",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/student/{id}/competencies/save": {
            "post": {
                "tags": ["Competencies"],
                "summary": "Save a student's competency checklist",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SaveCompetenciesRequest"}}
                ],
                "responses": {
                    "200": {"description": "Saved", "schema": {"$ref": "#/definitions/SaveCompetenciesResponse"}},
                    "400": {"description": "Malformed payload", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Unknown student or competency", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "SaveAttendanceRequest": {
            "type": "object",
            "properties": {
                "attendance": {"type": "object", "additionalProperties": {"type": "boolean"}}
            }
        },
        "SaveAttendanceResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "present_count": {"type": "integer"},
                "absent_count": {"type": "integer"}
            }
        },
        "SaveCompetenciesRequest": {
            "type": "object",
            "properties": {
                "competencies": {"type": "object", "additionalProperties": {"type": "boolean"}},
                "notes": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "SaveCompetenciesResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "competencies_achieved": {"type": "integer"}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"}
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
