package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CourseMate API",
        "description": "Course material distribution and quiz generation for universities",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Taxonomy", "description": "University / major / course catalog"},
        {"name": "Students", "description": "Registration and approval"},
        {"name": "Professors", "description": "Professor accounts and access codes"},
        {"name": "Materials", "description": "Course material uploads"},
        {"name": "Quizzes", "description": "Quiz generation and scoring"},
        {"name": "Admin", "description": "Reporting and exports"}
    ],
    "paths": {
        "/universities": {
            "get": {
                "tags": ["Taxonomy"],
                "summary": "List universities",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/universities/{id}/majors": {
            "get": {
                "tags": ["Taxonomy"],
                "summary": "List majors of a university",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Taxonomy"],
                "summary": "List courses",
                "parameters": [
                    {"name": "university_id", "in": "query", "type": "string"},
                    {"name": "major_id", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/register": {
            "post": {
                "tags": ["Students"],
                "summary": "Register a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate registration", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/quizzes": {
            "post": {
                "tags": ["Quizzes"],
                "summary": "Generate a quiz from one week's materials",
                "parameters": [
                    {"name": "X-Telegram-ID", "in": "header", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateQuizRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Not enough source content", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/quizzes/{id}/answers": {
            "post": {
                "tags": ["Quizzes"],
                "summary": "Submit answers for a quiz attempt",
                "parameters": [
                    {"name": "X-Telegram-ID", "in": "header", "type": "string", "required": true},
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitQuizRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Attempt already scored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/quizzes/history": {
            "get": {
                "tags": ["Quizzes"],
                "summary": "List the student's quiz attempts",
                "parameters": [
                    {"name": "X-Telegram-ID", "in": "header", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/materials": {
            "post": {
                "tags": ["Materials"],
                "summary": "Upload course material",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "X-Professor-Code", "in": "header", "type": "string"},
                    {"name": "professor_code", "in": "formData", "type": "string"},
                    {"name": "file", "in": "formData", "type": "file", "required": true},
                    {"name": "university", "in": "formData", "type": "string", "required": true},
                    {"name": "major", "in": "formData", "type": "string", "required": true},
                    {"name": "course", "in": "formData", "type": "string", "required": true},
                    {"name": "year", "in": "formData", "type": "integer", "required": true},
                    {"name": "week", "in": "formData", "type": "integer", "required": true},
                    {"name": "description", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not assigned to the course", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Daily upload limit reached", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/materials/mine": {
            "get": {
                "tags": ["Materials"],
                "summary": "List the professor's uploads",
                "parameters": [
                    {"name": "X-Professor-Code", "in": "header", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/stats": {
            "get": {
                "tags": ["Admin"],
                "summary": "Global entity counts",
                "parameters": [
                    {"name": "X-Admin-Code", "in": "header", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterStudentRequest": {
            "type": "object",
            "properties": {
                "telegram_id": {"type": "string"},
                "student_no": {"type": "string"},
                "full_name": {"type": "string"},
                "university_id": {"type": "string"},
                "major_id": {"type": "string"},
                "year": {"type": "integer"}
            }
        },
        "GenerateQuizRequest": {
            "type": "object",
            "properties": {
                "course_id": {"type": "string"},
                "week": {"type": "integer"},
                "difficulty": {"type": "string", "enum": ["easy", "medium", "hard"]}
            }
        },
        "SubmitQuizRequest": {
            "type": "object",
            "properties": {
                "answers": {"type": "array", "items": {"type": "integer"}}
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
