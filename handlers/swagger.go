package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
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
    <title>marketpulse-api - Swagger</title>
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

// Minimal OpenAPI document describing the public endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "marketpulse-api", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } }
  },
  "paths": {
    "/api/articles": {
      "get": { "summary": "Latest articles", "parameters": [{"name":"limit","in":"query","schema":{"type":"integer"}}], "responses": { "200": { "description": "articles" } } },
      "post": { "summary": "Run news ingestion (internal)", "parameters": [{"name":"x-internal-token","in":"header","required":true,"schema":{"type":"string"}},{"name":"date","in":"query","schema":{"type":"string"}}], "responses": { "200": { "description": "combined_summary, skipped" }, "403": { "description": "forbidden" }, "409": { "description": "already running" }, "500": { "description": "API keys not configured" } } }
    },
    "/api/articles/{date}": {
      "get": { "summary": "Articles for a day (YYYYMMDD)", "responses": { "200": { "description": "articles" }, "400": { "description": "invalid date" } } }
    },
    "/api/articles/id/{id}": {
      "get": { "summary": "Article by id", "responses": { "200": { "description": "article" }, "400": { "description": "invalid id" }, "404": { "description": "not found" } } }
    },
    "/api/articles/combined/{date}": {
      "get": { "summary": "Summary and articles for a day", "responses": { "200": { "description": "date, summary, articles, total_articles" } } }
    },
    "/api/summaries": {
      "get": { "summary": "Last 30 summaries", "responses": { "200": { "description": "summaries" } } }
    },
    "/api/summaries/{date}": {
      "get": { "summary": "Summary for a day", "responses": { "200": { "description": "date, combined_summary, created_at" }, "400": { "description": "invalid date" }, "404": { "description": "not found" } } }
    },
    "/api/summaries/{date}/comments": {
      "get": { "summary": "Comments for a day", "responses": { "200": { "description": "comments" } } },
      "post": { "summary": "Add a comment", "security": [{"bearer":[]}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"content":{"type":"string","maxLength":500}}}}}}, "responses": { "201": { "description": "comment" }, "400": { "description": "invalid content" }, "401": { "description": "unauthenticated" } } }
    },
    "/api/favorites": {
      "get": { "summary": "Caller's favorites", "security": [{"bearer":[]}], "responses": { "200": { "description": "favorites" } } }
    },
    "/api/favorites/{articleId}": {
      "post": { "summary": "Save an article", "security": [{"bearer":[]}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"article":{"type":"object"}}}}}}, "responses": { "201": { "description": "favorite" }, "400": { "description": "invalid article" }, "409": { "description": "duplicate" } } },
      "delete": { "summary": "Remove a saved article", "security": [{"bearer":[]}], "responses": { "200": { "description": "removed" }, "404": { "description": "not found" } } }
    },
    "/api/profile": {
      "get": { "summary": "Current user", "security": [{"bearer":[]}], "responses": { "200": { "description": "user" }, "404": { "description": "not found" } } },
      "put": { "summary": "Update profile fields", "security": [{"bearer":[]}], "responses": { "200": { "description": "user" }, "400": { "description": "validation failed" } } }
    },
    "/api/oauth/url": {
      "get": { "summary": "Google sign-in URL", "responses": { "200": { "description": "url" } } }
    },
    "/api/oauth/callback": {
      "get": { "summary": "Google sign-in callback", "responses": { "302": { "description": "redirect to client with token" }, "500": { "description": "OAuth failed" } } }
    },
    "/api/proxy": {
      "get": { "summary": "Reader view of an article page", "parameters": [{"name":"url","in":"query","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "text/html" }, "400": { "description": "Missing URL" }, "500": { "description": "Proxy failed" } } }
    },
    "/auth/register": {
      "post": { "summary": "Create a local account", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"username":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "201": { "description": "registered" }, "400": { "description": "Missing fields / User exists" } } }
    },
    "/auth/login": {
      "post": { "summary": "Email and password login", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "token, refreshToken, user" }, "401": { "description": "Invalid credentials" } } }
    },
    "/auth/refresh": {
      "post": { "summary": "Rotate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new tokens" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Revoke access token and refresh session", "responses": { "200": { "description": "logged out" } } },
      "get": { "summary": "Redirect to the web client", "responses": { "302": { "description": "redirect" } } }
    },
    "/auth/github": {
      "get": { "summary": "Start GitHub sign-in", "responses": { "302": { "description": "redirect to GitHub" } } }
    }
  }
}`
