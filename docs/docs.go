// Package docs registers the OpenAPI description served at /swagger/*.
// Regenerate with: swag init -g cmd/account-api/main.go
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
        "/v1/accounts": {
            "post": {
                "tags": ["accounts"],
                "summary": "Register a new account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/accounts/confirm": {
            "post": {
                "tags": ["accounts"],
                "summary": "Confirm an account",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.confirmationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/accounts/unlock": {
            "patch": {
                "tags": ["accounts"],
                "summary": "Unlock an account",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.confirmationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/accounts/password/reset": {
            "post": {
                "tags": ["accounts"],
                "summary": "Request a password reset",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.passwordResetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/accounts/password": {
            "patch": {
                "security": [{"CookieAuth": []}, {"BearerAuth": []}],
                "tags": ["accounts"],
                "summary": "Change password",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.passwordUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}}
                }
            }
        },
        "/v1/accounts/{id}": {
            "get": {
                "security": [{"CookieAuth": []}, {"BearerAuth": []}],
                "tags": ["accounts"],
                "summary": "Get account",
                "parameters": [
                    {"type": "integer", "in": "path", "name": "id", "required": true, "description": "Account id"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.accountResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/auth/token": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.tokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "Sets accessToken and refreshToken cookies", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/auth/refresh": {
            "post": {
                "tags": ["auth"],
                "summary": "Refresh session",
                "responses": {
                    "200": {"description": "Sets accessToken and refreshToken cookies", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.outcomeResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/v1/admin/accounts": {
            "get": {
                "security": [{"CookieAuth": []}, {"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Look up a remote identity",
                "parameters": [
                    {"type": "string", "in": "query", "name": "login"},
                    {"type": "string", "in": "query", "name": "email"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.remoteAccountResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "code": {"type": "string"}}
        },
        "handler.outcomeResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "type": {"type": "string"}}
        },
        "handler.registerRequest": {
            "type": "object",
            "properties": {
                "login": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "encrypted_password": {"type": "string"},
                "birthdate": {"type": "string", "example": "1990-01-01"},
                "nationality_id": {"type": "integer"},
                "gender_id": {"type": "integer"}
            }
        },
        "handler.confirmationRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "code": {"type": "string"}}
        },
        "handler.passwordResetRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}}
        },
        "handler.passwordUpdateRequest": {
            "type": "object",
            "properties": {"old_password": {"type": "string"}, "new_password": {"type": "string"}}
        },
        "handler.tokenRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.roleResponse": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "name": {"type": "string"}}
        },
        "handler.referenceResponse": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "name": {"type": "string"}}
        },
        "handler.remoteAccountResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "login": {"type": "string"},
                "email": {"type": "string"},
                "roles": {"type": "array", "items": {"$ref": "#/definitions/handler.roleResponse"}}
            }
        },
        "handler.accountResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "login": {"type": "string"},
                "email": {"type": "string"},
                "roles": {"type": "array", "items": {"$ref": "#/definitions/handler.roleResponse"}},
                "birthdate": {"type": "string"},
                "nationality": {"$ref": "#/definitions/handler.referenceResponse"},
                "gender": {"$ref": "#/definitions/handler.referenceResponse"},
                "settings": {"type": "object"},
                "games": {"type": "array", "items": {"$ref": "#/definitions/handler.referenceResponse"}},
                "achievements": {"type": "array", "items": {"type": "object"}},
                "created_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"},
        "CookieAuth": {"type": "apiKey", "name": "accessToken", "in": "cookie"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Account Service API",
	Description:      "Account registration, credential flows and session cookies backed by the external auth service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
