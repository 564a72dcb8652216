// Package docs registra la especificación OpenAPI servida en /swagger.
// Se regenera con `swag init -g cmd/api/main.go -o internal/docs`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Registrar dueño y perro",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "duplicate_email / validation_error"}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "invalid_credentials"}
                }
            }
        },
        "/api/user/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["user"],
                "summary": "Perfil del usuario autenticado",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "404": {"description": "not_found"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["user"],
                "summary": "Actualizar perfil (parcial)",
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "file", "description": "Imagen (máx 5MB)", "name": "image", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "validation_error"},
                    "413": {"description": "payload_too_large"}
                }
            }
        },
        "/api/dogs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["dogs"],
                "summary": "Mazo de candidatos",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "unauthorized"}, "403": {"description": "invalid_token"}}
            }
        },
        "/api/dogs/search": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["dogs"],
                "summary": "Buscar perros",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "breed", "in": "query"},
                    {"type": "string", "name": "age", "in": "query"},
                    {"type": "string", "name": "location", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/matches": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["matches"],
                "summary": "Matches del usuario",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["matches"],
                "summary": "Registrar swipe",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "validation_error"}, "404": {"description": "not_found"}}
            }
        },
        "/api/conversations/{conversationId}/messages": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["conversations"],
                "summary": "Mensajes de una conversación",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "conversationId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "forbidden"}, "404": {"description": "not_found"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["conversations"],
                "summary": "Enviar mensaje",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "conversationId", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "validation_error"}, "403": {"description": "forbidden"}, "404": {"description": "not_found"}}
            }
        },
        "/api/conversations/{conversationId}/read": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["conversations"],
                "summary": "Marcar conversación como leída",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "conversationId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/stats": {
            "get": {
                "tags": ["stats"],
                "summary": "Estadísticas globales",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Tin-Dog API",
	Description:      "Matching y conversaciones para dueños de perros.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
