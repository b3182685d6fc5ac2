// Package docs registers the OpenAPI document for the shophub API and serves it under /api-docs.
package docs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

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
        "/api/health": {
            "get": {
                "tags": ["system"],
                "summary": "Liveness probe",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Health"}}
                }
            }
        },
        "/api/auth/token": {
            "post": {
                "tags": ["auth"],
                "summary": "Issue a token pair (local and dev only)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/TokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenPair"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/api/me": {
            "get": {
                "security": [{"bearerAuth": []}],
                "tags": ["auth"],
                "summary": "Caller identity",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Identity"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/api/admin/users/{id}/activity": {
            "get": {
                "security": [{"bearerAuth": []}],
                "tags": ["admin"],
                "summary": "Recent activity of one user, newest first",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "query", "name": "limit", "type": "integer", "default": 50, "maximum": 500}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ActivityList"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Error"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        }
    },
    "definitions": {
        "Health": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "OK"},
                "message": {"type": "string", "example": "Server is running"}
            }
        },
        "Error": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "message": {"type": "string"}
            }
        },
        "TokenRequest": {
            "type": "object",
            "required": ["user_id", "role"],
            "properties": {
                "user_id": {"type": "string"},
                "role": {"type": "string", "enum": ["user", "seller", "admin"]}
            }
        },
        "TokenPair": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"}
            }
        },
        "Identity": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "Activity": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "user": {"type": "string"},
                "action": {"type": "string", "example": "POST /api/cart"},
                "method": {"type": "string"},
                "path": {"type": "string"},
                "ip": {"type": "string"},
                "userAgent": {"type": "string"},
                "statusCode": {"type": "integer"},
                "meta": {"type": "object"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "ActivityList": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "logs": {"type": "array", "items": {"$ref": "#/definitions/Activity"}}
            }
        }
    },
    "securityDefinitions": {
        "bearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so main can adjust host and schemes.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ShopHub API",
	Description:      "E-commerce API. Every request outside /api-docs is recorded as user activity.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Handler serves the docs tree. Mount it as GET <prefix>/*any.
//
// <prefix>/swagger.json is the raw document; <prefix>/ redirects to the UI.
func Handler() gin.HandlerFunc {
	ui := ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("swagger.json"))

	return func(c *gin.Context) {
		switch c.Param("any") {
		case "", "/":
			c.Redirect(http.StatusMovedPermanently, "index.html")
		case "/swagger.json":
			doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
			if err != nil {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
		default:
			ui(c)
		}
	}
}
