package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the portfolio API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>portfolio-api — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "portfolio-api", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer" } },
    "schemas": {
      "ChatRequest": { "type": "object", "required": ["messages"], "properties": {
        "messages": { "type": "array", "items": { "type": "object", "properties": { "role": { "type": "string", "enum": ["system","user","assistant"] }, "content": { "type": "string" } } } },
        "model": { "type": "string" }, "temperature": { "type": "number" }, "max_tokens": { "type": "integer" },
        "top_p": { "type": "number" }, "stream": { "type": "boolean" }, "stop": { "oneOf": [ { "type": "string" }, { "type": "array", "items": { "type": "string" } } ] },
        "timeout_ms": { "type": "integer" } } },
      "Error": { "type": "object", "properties": { "error": { "type": "string" }, "code": { "type": "string" }, "details": {} } }
    }
  },
  "paths": {
    "/api/chat": {
      "post": {
        "summary": "Chat completion",
        "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/ChatRequest" } } } },
        "responses": {
          "200": { "description": "{message, model, usage}" },
          "400": { "description": "PARSE_ERROR or VALIDATION_ERROR" },
          "429": { "description": "RATE_LIMIT" },
          "500": { "description": "CONFIG_ERROR or SERVER_ERROR" },
          "504": { "description": "TIMEOUT" }
        }
      }
    },
    "/api/sessions": { "post": { "summary": "Start or resume a chat session", "responses": { "201": { "description": "new session" }, "200": { "description": "resumed session with history" } } } },
    "/api/sessions/{id}/messages": { "post": { "summary": "Append a message", "responses": { "201": { "description": "stored message" }, "404": { "description": "unknown session" } } } },
    "/api/sessions/{id}/end": { "post": { "summary": "End a session", "responses": { "204": { "description": "ended" } } } },
    "/api/sessions/{id}/messages/{messageId}/feedback": { "post": { "summary": "Record helpful/unhelpful feedback", "responses": { "200": { "description": "feedback" }, "404": { "description": "unknown message" } } } },
    "/api/profile": { "get": { "summary": "Site owner profile", "responses": { "200": { "description": "profile" }, "404": { "description": "not set" } } } },
    "/api/projects": { "get": { "summary": "Projects (?featured=true, ?carousel=true)", "responses": { "200": { "description": "projects" } } } },
    "/api/projects/{slug}": { "get": { "summary": "Project by slug", "responses": { "200": { "description": "project" }, "404": { "description": "not found" } } } },
    "/api/skills": { "get": { "summary": "Skills", "responses": { "200": { "description": "skills" } } } },
    "/api/experiences": { "get": { "summary": "Experience ordered by order", "responses": { "200": { "description": "experiences" } } } },
    "/api/portfolio": { "get": { "summary": "Profile, projects, skills and experience in one document", "responses": { "200": { "description": "portfolio" } } } },
    "/api/icons": { "get": { "summary": "Project icon catalogue", "responses": { "200": { "description": "icons" } } } },
    "/api/admin/me": { "get": { "security": [{ "bearer": [] }], "summary": "Current admin", "responses": { "200": { "description": "admin" }, "401": { "description": "unauthorized" } } } },
    "/api/admin/logout": { "post": { "security": [{ "bearer": [] }], "summary": "Revoke the current bearer token", "responses": { "204": { "description": "revoked" } } } },
    "/api/admin/profile": { "get": { "security": [{ "bearer": [] }], "summary": "Profile (admin view)", "responses": { "200": { "description": "profile" } } }, "put": { "security": [{ "bearer": [] }], "summary": "Save profile", "responses": { "200": { "description": "profile" } } } },
    "/api/admin/profile/photo": { "post": { "security": [{ "bearer": [] }], "summary": "Upload profile photo (multipart file)", "responses": { "200": { "description": "profile" } } } },
    "/api/admin/projects": { "get": { "security": [{ "bearer": [] }], "summary": "List projects", "responses": { "200": { "description": "projects" } } }, "post": { "security": [{ "bearer": [] }], "summary": "Create project", "responses": { "201": { "description": "project and refreshed list" } } } },
    "/api/admin/projects/{id}": { "get": { "security": [{ "bearer": [] }], "summary": "Get project by id", "responses": { "200": { "description": "project" } } },
      "put": { "security": [{ "bearer": [] }], "summary": "Update project", "responses": { "200": { "description": "project and refreshed list" } } },
      "delete": { "security": [{ "bearer": [] }], "summary": "Delete project", "responses": { "200": { "description": "refreshed list" } } }
    },
    "/api/admin/projects/{id}/featured": { "post": { "security": [{ "bearer": [] }], "summary": "Make the featured project", "responses": { "200": { "description": "project and refreshed list" } } } },
    "/api/admin/projects/{id}/cover": { "post": { "security": [{ "bearer": [] }], "summary": "Upload cover image (multipart file)", "responses": { "200": { "description": "project and refreshed list" } } } },
    "/api/admin/skills": { "get": { "security": [{ "bearer": [] }], "summary": "List skills", "responses": { "200": { "description": "skills" } } }, "post": { "security": [{ "bearer": [] }], "summary": "Create skill", "responses": { "201": { "description": "skill and refreshed list" }, "400": { "description": "level outside 0..100" } } } },
    "/api/admin/skills/{id}": { "put": { "security": [{ "bearer": [] }], "summary": "Update skill", "responses": { "200": { "description": "skill and refreshed list" } } }, "delete": { "security": [{ "bearer": [] }], "summary": "Delete skill", "responses": { "200": { "description": "refreshed list" } } } },
    "/api/admin/experiences": { "get": { "security": [{ "bearer": [] }], "summary": "List experiences", "responses": { "200": { "description": "experiences" } } }, "post": { "security": [{ "bearer": [] }], "summary": "Create experience", "responses": { "201": { "description": "experience and refreshed list" } } } },
    "/api/admin/experiences/{id}": { "put": { "security": [{ "bearer": [] }], "summary": "Update experience", "responses": { "200": { "description": "experience and refreshed list" } } }, "delete": { "security": [{ "bearer": [] }], "summary": "Delete experience", "responses": { "200": { "description": "refreshed list" } } } },
    "/api/admin/images": { "get": { "security": [{ "bearer": [] }], "summary": "List images (?folder=profile|projects)", "responses": { "200": { "description": "objects" } } } },
    "/api/admin/images/{key}": { "delete": { "security": [{ "bearer": [] }], "summary": "Delete image", "responses": { "204": { "description": "deleted" } } } },
    "/api/admin/sessions": { "get": { "security": [{ "bearer": [] }], "summary": "List chat sessions", "responses": { "200": { "description": "sessions" } } } },
    "/api/admin/sessions/{id}/messages": { "get": { "security": [{ "bearer": [] }], "summary": "Session transcript", "responses": { "200": { "description": "messages" } } } },
    "/api/admin/sessions/{id}": { "delete": { "security": [{ "bearer": [] }], "summary": "Delete session and its messages", "responses": { "200": { "description": "refreshed list" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
