// Package docs holds the OpenAPI document served at /swagger/.
// Regenerate with: swag init -g docs/swagger_booking.go --instanceName booking
package docs

import "github.com/swaggo/swag"

const InstanceName = "booking"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check",
                "description": "Reports service status and the reachability of configured backends",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}
            }
        },
        "/rides": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Rides"],
                "summary": "List my rides",
                "parameters": [
                    {"in": "query", "name": "page", "type": "integer", "default": 1},
                    {"in": "query", "name": "page_size", "type": "integer", "default": 20}
                ],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Rides"],
                "summary": "Request a ride",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.CreateRideRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Ride"}},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Forbidden"},
                    "422": {"description": "Unprocessable Entity"}
                }
            }
        },
        "/rides/available": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Rides"],
                "summary": "List open ride requests",
                "parameters": [
                    {"in": "query", "name": "page", "type": "integer", "default": 1},
                    {"in": "query", "name": "page_size", "type": "integer", "default": 20}
                ],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            }
        },
        "/rides/{ride_id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Rides"],
                "summary": "Get a ride",
                "parameters": [{"type": "string", "name": "ride_id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Ride"}},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Rides"],
                "summary": "Delete a ride",
                "parameters": [{"type": "string", "name": "ride_id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        },
        "/rides/{ride_id}/accept": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Rides"],
                "summary": "Accept a ride",
                "parameters": [{"type": "string", "name": "ride_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Ride"}}, "409": {"description": "Conflict"}}
            }
        },
        "/rides/{ride_id}/reject": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Rides"],
                "summary": "Reject a ride",
                "parameters": [{"type": "string", "name": "ride_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Ride"}}, "409": {"description": "Conflict"}}
            }
        },
        "/rides/{ride_id}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Rides"],
                "summary": "Advance a ride",
                "parameters": [
                    {"type": "string", "name": "ride_id", "in": "path", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.AdvanceRideRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Ride"}},
                    "403": {"description": "Forbidden"},
                    "409": {"description": "Conflict"},
                    "422": {"description": "Unprocessable Entity"}
                }
            }
        },
        "/rides/{ride_id}/location": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Rides"],
                "summary": "Latest driver position",
                "parameters": [{"type": "string", "name": "ride_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        },
        "/users/availability": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Driver availability",
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Toggle driver availability",
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            }
        },
        "/ws": {
            "get": {
                "tags": ["WebSocket"],
                "summary": "Persistent connection",
                "parameters": [{"type": "string", "name": "token", "in": "query"}],
                "responses": {"101": {"description": "Switching Protocols"}, "401": {"description": "Unauthorized"}}
            }
        }
    },
    "definitions": {
        "dto.LocationRequest": {
            "type": "object",
            "properties": {
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "label": {"type": "string"}
            }
        },
        "dto.CreateRideRequest": {
            "type": "object",
            "properties": {
                "pickup": {"$ref": "#/definitions/dto.LocationRequest"},
                "drop": {"$ref": "#/definitions/dto.LocationRequest"},
                "ride_class": {"type": "string", "enum": ["bike", "car", "rickshaw"]}
            }
        },
        "dto.AdvanceRideRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["in_progress", "completed"]},
                "fare": {"type": "number"}
            }
        },
        "models.Ride": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "passenger_id": {"type": "string"},
                "driver_id": {"type": "string"},
                "pickup": {"$ref": "#/definitions/dto.LocationRequest"},
                "drop": {"$ref": "#/definitions/dto.LocationRequest"},
                "ride_class": {"type": "string"},
                "status": {"type": "string", "enum": ["requested", "accepted", "rejected", "in_progress", "completed"]},
                "fare": {"type": "number"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Ride Booking API",
	Description:      "Passengers request rides, drivers accept and advance them. Live ride updates and driver positions are pushed over a WebSocket at /ws.",
	InfoInstanceName: InstanceName,
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
