package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Absensi RFID API",
        "description": "RFID attendance intake and live roster projection",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Attendance", "description": "Scan intake and daily roster"},
        {"name": "Devices", "description": "Scanner device authentication"}
    ],
    "paths": {
        "/devices/token": {
            "post": {
                "tags": ["Devices"],
                "summary": "Issue a scanner device token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/DeviceTokenRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/scans": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Submit an RFID scan",
                "description": "Records at most one attendance row per student per day. The server clock decides the status.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ScanRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Scan recorded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown tag", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already recorded today", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Outside the attendance window", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Attendance store unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/today": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Today's attendance roster",
                "description": "Every active student with a persisted or derived status, ordered by class then name.",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Roster projection", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Attendance store unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/today/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Export today's roster",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": ["csv", "pdf"],
                        "default": "csv"
                    }
                ],
                "responses": {
                    "200": {"description": "Rendered file"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List classes",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Classes", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "DeviceTokenRequest": {
            "type": "object",
            "required": ["device_id", "secret"],
            "properties": {
                "device_id": {"type": "string"},
                "secret": {"type": "string"}
            }
        },
        "ScanRequest": {
            "type": "object",
            "required": ["tag_id"],
            "properties": {
                "tag_id": {"type": "string"}
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
