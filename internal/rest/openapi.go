package rest

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/ghodss/yaml"
	"github.com/go-chi/chi/v5"
)

// NewOpenAPI3 instantiates the OpenAPI specification for this service.
func NewOpenAPI3() openapi3.T {
	swagger := openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "todotrack API",
			Description: "REST API for the personal task tracker",
			Version:     "0.1.0",
		},
		Servers: openapi3.Servers{
			&openapi3.Server{
				Description: "Local development",
				URL:         "http://127.0.0.1:9234",
			},
		},
	}

	dateSchema := openapi3.NewStringSchema().
		WithFormat("date").
		WithNullable()

	taskSchema := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewInt64Schema()).
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("description", openapi3.NewStringSchema()).
		WithProperty("completed", openapi3.NewBoolSchema()).
		WithProperty("priority", openapi3.NewStringSchema().WithEnum("low", "medium", "high")).
		WithProperty("due_date", dateSchema).
		WithProperty("created_at", openapi3.NewDateTimeSchema()).
		WithProperty("updated_at", openapi3.NewDateTimeSchema())

	createSchema := openapi3.NewObjectSchema().
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("description", openapi3.NewStringSchema()).
		WithProperty("priority", openapi3.NewStringSchema().WithEnum("low", "medium", "high")).
		WithProperty("due_date", dateSchema)
	createSchema.Required = []string{"title"}

	updateSchema := openapi3.NewObjectSchema().
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("description", openapi3.NewStringSchema()).
		WithProperty("priority", openapi3.NewStringSchema().WithEnum("low", "medium", "high")).
		WithProperty("due_date", dateSchema).
		WithProperty("completed", openapi3.NewBoolSchema())

	swagger.Components = openapi3.Components{
		Schemas: openapi3.Schemas{
			"Task":              openapi3.NewSchemaRef("", taskSchema),
			"CreateTaskRequest": openapi3.NewSchemaRef("", createSchema),
			"UpdateTaskRequest": openapi3.NewSchemaRef("", updateSchema),
			"ErrorResponse": openapi3.NewSchemaRef("",
				openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema())),
		},
	}

	taskRef := &openapi3.SchemaRef{Ref: "#/components/schemas/Task"}
	errorRef := &openapi3.SchemaRef{Ref: "#/components/schemas/ErrorResponse"}

	errorResponse := func(desc string) *openapi3.ResponseRef {
		return &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription(desc).WithJSONSchemaRef(errorRef),
		}
	}

	idParam := &openapi3.ParameterRef{
		Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewInt64Schema()).WithRequired(true),
	}

	swagger.Paths = openapi3.Paths{
		"/api/todos": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ListTasks",
				Parameters: openapi3.Parameters{
					&openapi3.ParameterRef{
						Value: openapi3.NewQueryParameter("priority").
							WithSchema(openapi3.NewStringSchema().WithEnum("low", "medium", "high")),
					},
					&openapi3.ParameterRef{
						Value: openapi3.NewQueryParameter("completed").
							WithSchema(openapi3.NewStringSchema().WithEnum("true", "false")),
					},
					&openapi3.ParameterRef{
						Value: openapi3.NewQueryParameter("sort").
							WithSchema(openapi3.NewStringSchema().WithEnum("due_date", "priority", "created_at")),
					},
				},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().
							WithDescription("Matching tasks in sort order.").
							WithJSONSchemaRef(openapi3.NewSchemaRef("",
								openapi3.NewArraySchema().WithItems(taskSchema))),
					},
				},
			},
			Post: &openapi3.Operation{
				OperationID: "CreateTask",
				RequestBody: &openapi3.RequestBodyRef{
					Value: openapi3.NewRequestBody().
						WithRequired(true).
						WithJSONSchemaRef(&openapi3.SchemaRef{Ref: "#/components/schemas/CreateTaskRequest"}),
				},
				Responses: openapi3.Responses{
					"201": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().
							WithDescription("Task created.").
							WithJSONSchemaRef(taskRef),
					},
					"400": errorResponse("Missing or blank title, or invalid priority."),
				},
			},
		},
		"/api/todos/{id}": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ReadTask",
				Parameters:  openapi3.Parameters{idParam},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().
							WithDescription("The requested task.").
							WithJSONSchemaRef(taskRef),
					},
					"404": errorResponse("Unknown task id."),
				},
			},
			Patch: &openapi3.Operation{
				OperationID: "UpdateTask",
				Parameters:  openapi3.Parameters{idParam},
				RequestBody: &openapi3.RequestBodyRef{
					Value: openapi3.NewRequestBody().
						WithRequired(true).
						WithJSONSchemaRef(&openapi3.SchemaRef{Ref: "#/components/schemas/UpdateTaskRequest"}),
				},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().
							WithDescription("The updated task.").
							WithJSONSchemaRef(taskRef),
					},
					"404": errorResponse("Unknown task id."),
				},
			},
			Delete: &openapi3.Operation{
				OperationID: "DeleteTask",
				Parameters:  openapi3.Parameters{idParam},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().
							WithDescription("Task removed."),
					},
					"404": errorResponse("Unknown task id."),
				},
			},
		},
	}

	return swagger
}

// RegisterOpenAPI serves the specification as JSON and YAML.
func RegisterOpenAPI(r chi.Router) {
	swagger := NewOpenAPI3()

	r.Get("/openapi3.json", func(w http.ResponseWriter, _ *http.Request) {
		renderResponse(w, &swagger, http.StatusOK)
	})

	r.Get("/openapi3.yaml", func(w http.ResponseWriter, _ *http.Request) {
		data, err := yaml.Marshal(&swagger)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/x-yaml")
		_, _ = w.Write(data)
	})
}
