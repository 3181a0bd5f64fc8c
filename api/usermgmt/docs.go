// Package usermgmt holds the OpenAPI document served at /swagger/.
// Regenerate with: swag init -g internal/usermgmt/http/router.go -o api/usermgmt --outputTypes go
package usermgmt

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/usermgmt"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login": {"post": {"tags": ["Authentication"], "summary": "Log in", "responses": {"200": {"description": "OK"}}}},
        "/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["Authentication"], "summary": "Log out", "responses": {"200": {"description": "OK"}}}},
        "/users/update": {"put": {"security": [{"BearerAuth": []}], "tags": ["Account"], "summary": "Update account", "responses": {"200": {"description": "OK"}}}},
        "/deactivate-account": {"put": {"security": [{"BearerAuth": []}], "tags": ["Account"], "summary": "Deactivate account", "responses": {"200": {"description": "OK"}}}},
        "/login-status/{userId}": {"get": {"security": [{"BearerAuth": []}], "tags": ["Account"], "summary": "Login status", "responses": {"200": {"description": "OK"}}}},
        "/loginhistory/{userId}/{skip}/{limit}": {"get": {"security": [{"BearerAuth": []}], "tags": ["Account"], "summary": "Login history", "responses": {"200": {"description": "OK"}}}},
        "/sendemailcode/{email}": {"get": {"tags": ["Verification"], "summary": "Send verification code", "responses": {"200": {"description": "OK"}}}},
        "/validateemailcode/{email}/{code}": {"get": {"tags": ["Verification"], "summary": "Validate verification code", "responses": {"200": {"description": "OK"}}}},
        "/verifyemail": {"post": {"tags": ["Verification"], "summary": "Verify email", "responses": {"200": {"description": "OK"}}}},
        "/resetpassword": {"post": {"tags": ["Verification"], "summary": "Reset password", "responses": {"200": {"description": "OK"}}}},
        "/users": {"post": {"tags": ["Users"], "summary": "Register user", "responses": {"201": {"description": "Created"}}}},
        "/users/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "Remove user", "responses": {"200": {"description": "OK"}}}},
        "/users/{id}/status/{statusId}": {"put": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "Change account status", "responses": {"200": {"description": "OK"}}}},
        "/users/{id}/role/{roleId}": {"put": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "Change role", "responses": {"200": {"description": "OK"}}}},
        "/users/{limit}/{cursor}": {"get": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "List users", "responses": {"200": {"description": "OK"}}}},
        "/users/by-property": {"get": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "Query users by property", "responses": {"200": {"description": "OK"}}}},
        "/users/count": {"get": {"security": [{"BearerAuth": []}], "tags": ["Users"], "summary": "Count users", "responses": {"200": {"description": "OK"}}}},
        "/roles": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Roles"], "summary": "List all roles", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Roles"], "summary": "Create role", "responses": {"201": {"description": "Created"}}}
        },
        "/roles/{roleId}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Roles"], "summary": "Get role", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["Roles"], "summary": "Update role", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Roles"], "summary": "Delete role", "responses": {"200": {"description": "OK"}}}
        },
        "/permissions/{permissionId}": {"put": {"security": [{"BearerAuth": []}], "tags": ["Roles"], "summary": "Update permission", "responses": {"200": {"description": "OK"}}}},
        "/account-status": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Account Status"], "summary": "List account statuses", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Account Status"], "summary": "Create account status", "responses": {"201": {"description": "Created"}}}
        },
        "/account-status/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Account Status"], "summary": "Get account status", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["Account Status"], "summary": "Update account status", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Account Status"], "summary": "Delete account status", "responses": {"200": {"description": "OK"}}}
        },
        "/viewers/{userId}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Profiles"], "summary": "Get profile", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["Profiles"], "summary": "Update profile", "responses": {"200": {"description": "OK"}}}
        },
        "/hubs/notifications": {"get": {"security": [{"BearerAuth": []}], "tags": ["Notifications"], "summary": "Admin notification stream", "produces": ["text/event-stream"], "responses": {"200": {"description": "event stream"}}}},
        "/livez": {"get": {"tags": ["Health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/readyz": {"get": {"tags": ["Health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/bootstrap": {"post": {"tags": ["Bootstrap"], "summary": "Bootstrap the service", "responses": {"201": {"description": "Created"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT access token. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "User Management Service API",
	Description:      "Registration, authentication and administration of users with role specific profiles.\n\nEvery response is wrapped in an envelope: {statusCode, type, message, data}.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
