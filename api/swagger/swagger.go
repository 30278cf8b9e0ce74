package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Mizan Legal Services API",
        "description": "Multilingual legal-services platform: service requests, payments, consultants and client notifications.",
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
        {"name": "Authentication", "description": "Login, registration and token lifecycle"},
        {"name": "Requests", "description": "Service-request lifecycle"},
        {"name": "Payments", "description": "Payment lookup, receipts and administration"},
        {"name": "Notifications", "description": "Unviewed-request badge counter"},
        {"name": "Consultants", "description": "Consultant roster management"},
        {"name": "Categories", "description": "Service category catalogue"},
        {"name": "FAQ", "description": "Frequently asked questions"},
        {"name": "Contact", "description": "Firm contact information"},
        {"name": "Careers", "description": "Job applications and resume review"},
        {"name": "Maintenance", "description": "Operator reconciliation endpoints"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register client account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests": {
            "get": {
                "tags": ["Requests"],
                "summary": "List the authenticated client's requests",
                "description": "Anonymous callers receive an empty list. Search is applied against localized display fields.",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "refresh", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Requests"],
                "summary": "Submit a new service request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRequestInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests/{id}": {
            "get": {
                "tags": ["Requests"],
                "summary": "Get request detail",
                "description": "Viewing a request records a fire-and-forget view event that clears the unviewed badge.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/requests/{id}/payment": {
            "get": {
                "tags": ["Payments"],
                "summary": "Payment details for a service request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/{id}/receipt": {
            "get": {
                "tags": ["Payments"],
                "summary": "Download a PDF receipt for a completed payment",
                "produces": ["application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "lang", "in": "query", "type": "string", "enum": ["ar", "fr", "en"]}
                ],
                "responses": {
                    "200": {"description": "PDF receipt"},
                    "409": {"description": "Payment not completed"}
                }
            }
        },
        "/notifications/count": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Unviewed request count",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/categories": {
            "get": {
                "tags": ["Categories"],
                "summary": "List published service categories",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/faqs": {
            "get": {
                "tags": ["FAQ"],
                "summary": "List published FAQ entries",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/contact": {
            "get": {
                "tags": ["Contact"],
                "summary": "List contact entries",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/careers/apply": {
            "post": {
                "tags": ["Careers"],
                "summary": "Submit a job application with a resume upload",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "full_name", "in": "formData", "required": true, "type": "string"},
                    {"name": "email", "in": "formData", "required": true, "type": "string"},
                    {"name": "phone", "in": "formData", "type": "string"},
                    {"name": "position", "in": "formData", "required": true, "type": "string"},
                    {"name": "cover_note", "in": "formData", "type": "string"},
                    {"name": "resume", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large"},
                    "415": {"description": "Unsupported file type"}
                }
            }
        },
        "/admin/payments": {
            "post": {
                "tags": ["Payments"],
                "summary": "Attach a payment requirement to a request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RequirePaymentInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Payment already exists"}
                }
            }
        },
        "/admin/maintenance/reconcile": {
            "post": {
                "tags": ["Maintenance"],
                "summary": "Repair payment mirrors and reset notification counters",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "full_name"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "CreateRequestInput": {
            "type": "object",
            "required": ["description"],
            "properties": {
                "category_id": {"type": "string"},
                "description": {"type": "string", "minLength": 10},
                "urgency": {"type": "string", "enum": ["low", "normal", "high", "urgent"]}
            }
        },
        "RequirePaymentInput": {
            "type": "object",
            "required": ["request_id", "amount", "currency", "method"],
            "properties": {
                "request_id": {"type": "string"},
                "amount": {"type": "number"},
                "currency": {"type": "string"},
                "method": {"type": "string", "enum": ["ccp", "baridimob", "bank_transfer", "cash"]},
                "due_date": {"type": "string", "format": "date-time"}
            }
        },
        "LocalizedText": {
            "type": "object",
            "properties": {
                "ar": {"type": "string"},
                "en": {"type": "string"},
                "fr": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
