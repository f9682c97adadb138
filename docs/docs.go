// Package docs holds the OpenAPI description of TaskAPI served under /swagger/.
// It follows the layout swag init generates from the handler annotations.
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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Health"}}
                }
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Username and password", "name": "credentials", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.User"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Token"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Detail"}}
                }
            }
        },
        "/tasks": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "List tasks",
                "parameters": [
                    {"type": "integer", "description": "1-based page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "tasks per page", "name": "pagesize", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Task"}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.ValidationDetail"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Create a task",
                "parameters": [
                    {"description": "Task to create", "name": "task", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.TaskCreate"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Task"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.ValidationDetail"}}
                }
            }
        },
        "/tasks/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Get a task",
                "parameters": [
                    {"type": "integer", "description": "Task id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Task"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Detail"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.ValidationDetail"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Update a task",
                "parameters": [
                    {"type": "integer", "description": "Task id", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "task", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.TaskUpdate"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Task"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Detail"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.ValidationDetail"}}
                }
            },
            "delete": {
                "tags": ["tasks"],
                "summary": "Delete a task",
                "parameters": [
                    {"type": "integer", "description": "Task id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Detail"}}
                }
            }
        }
    },
    "definitions": {
        "models.Task": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "completed": {"type": "boolean"}
            }
        },
        "models.TaskCreate": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "title": {"type": "string", "maxLength": 200, "minLength": 1},
                "description": {"type": "string", "maxLength": 1000},
                "completed": {"type": "boolean"}
            }
        },
        "models.TaskUpdate": {
            "type": "object",
            "properties": {
                "title": {"type": "string", "maxLength": 200, "minLength": 1},
                "description": {"type": "string", "maxLength": 1000},
                "completed": {"type": "boolean"}
            }
        },
        "models.User": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "response.Detail": {
            "type": "object",
            "properties": {"detail": {"type": "string"}}
        },
        "response.FieldError": {
            "type": "object",
            "properties": {
                "loc": {"type": "array", "items": {"type": "string"}},
                "msg": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "response.ValidationDetail": {
            "type": "object",
            "properties": {
                "detail": {"type": "array", "items": {"$ref": "#/definitions/response.FieldError"}}
            }
        },
        "response.Health": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "response.Token": {
            "type": "object",
            "properties": {"token": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Task Management API",
	Description:      "A simple CRUD API for managing tasks",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
