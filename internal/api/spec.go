package api

import (
	"github.com/JaimeStill/chronicle/internal/config"
	"github.com/JaimeStill/chronicle/pkg/openapi"
)

// buildSpec assembles the OpenAPI document served at {base_path}/openapi.json.
func buildSpec(cfg *config.Config) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.Docs.Title, cfg.Version)
	spec.SetDescription(cfg.API.Docs.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(domainSchemas())

	addActivityPaths(spec)
	addSuggestionPaths(spec)
	addPromptPaths(spec)
	addPrivacyPaths(spec)

	return openapi.MarshalJSON(spec)
}

func domainSchemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Activity": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid"},
				"title":        {Type: "string"},
				"description":  {Type: "string"},
				"start":        {Type: "string", Format: "date-time"},
				"end":          {Type: "string", Format: "date-time"},
				"hours":        {Type: "number"},
				"participants": {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"location":     {Type: "string"},
				"source": {
					Type: "string",
					Enum: []any{"calendar", "chat", "ticket", "email", "document"},
				},
				"source_id": {Type: "string"},
			},
			Required: []string{"title", "start", "source", "source_id"},
		},
		"Suggestion": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid"},
				"activity_id":  {Type: "string", Format: "uuid"},
				"source":       {Type: "string"},
				"source_id":    {Type: "string"},
				"date":         {Type: "string", Format: "date-time"},
				"hours":        {Type: "number"},
				"project":      {Type: "string"},
				"client":       {Type: "string"},
				"description":  {Type: "string"},
				"category":     {Type: "string"},
				"billable":     {Type: "boolean"},
				"meeting_type": {Type: "string"},
				"confidence":   {Type: "number", Minimum: ptr(0.0), Maximum: ptr(1.0)},
				"rule_based":   {Type: "boolean"},
				"reasoning":    {Type: "string"},
				"status": {
					Type: "string",
					Enum: []any{"pending", "approved", "rejected"},
				},
			},
		},
		"ApproveCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"approved_by": {Type: "string"},
				"overrides": {
					Type:        "object",
					Description: "Optional field overrides applied to the emitted work record",
				},
			},
			Required: []string{"approved_by"},
		},
		"RejectCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"rejected_by": {Type: "string"},
				"reason":      {Type: "string"},
			},
			Required: []string{"rejected_by"},
		},
		"Prompt": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid"},
				"name":         {Type: "string"},
				"stage":        {Type: "string", Enum: []any{"analyze"}},
				"instructions": {Type: "string"},
				"description":  {Type: "string"},
				"active":       {Type: "boolean"},
			},
		},
		"AuditEntry": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid"},
				"timestamp":    {Type: "string", Format: "date-time"},
				"action":       {Type: "string"},
				"source":       {Type: "string"},
				"details":      {Type: "object"},
				"retain_until": {Type: "string", Format: "date-time"},
				"auto_delete":  {Type: "boolean"},
			},
		},
	}
}

func addActivityPaths(spec *openapi.Spec) {
	spec.Paths["/activities"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Submit an activity for analysis",
			Tags:        []string{"activities"},
			RequestBody: openapi.RequestBodyJSON("Activity", true),
			Responses: map[int]*openapi.Response{
				202: {Description: "Activity accepted into the intake queue"},
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}
	spec.Paths["/activities/queue"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Inspect the intake queue",
			Tags:    []string{"activities"},
			Responses: map[int]*openapi.Response{
				200: {Description: "Queue depth and last flush time"},
			},
		},
	}
	spec.Paths["/activities/flush"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary: "Trigger an immediate flush",
			Tags:    []string{"activities"},
			Responses: map[int]*openapi.Response{
				202: {Description: "Flush requested"},
			},
		},
	}
}

func addSuggestionPaths(spec *openapi.Spec) {
	spec.Paths["/suggestions"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List suggestions",
			Tags:    []string{"suggestions"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("status", "string", "Filter by status", false),
				openapi.QueryParam("source", "string", "Filter by activity source", false),
				openapi.QueryParam("billable", "boolean", "Filter by billability", false),
				openapi.QueryParam("page", "integer", "Page number", false),
				openapi.QueryParam("page_size", "integer", "Results per page", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated suggestions", "Suggestion"),
			},
		},
	}
	spec.Paths["/suggestions/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a suggestion",
			Tags:       []string{"suggestions"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Suggestion identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Suggestion", "Suggestion"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}
	spec.Paths["/suggestions/{id}/approve"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Approve a pending suggestion",
			Description: "Emits a work record exactly once; concurrent dispositions lose the claim.",
			Tags:        []string{"suggestions"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Suggestion identifier")},
			RequestBody: openapi.RequestBodyJSON("ApproveCommand", true),
			Responses: map[int]*openapi.Response{
				200: {Description: "Emitted work record"},
				404: openapi.ResponseRef("NotFound"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}
	spec.Paths["/suggestions/{id}/reject"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Reject a pending suggestion",
			Tags:        []string{"suggestions"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Suggestion identifier")},
			RequestBody: openapi.RequestBodyJSON("RejectCommand", true),
			Responses: map[int]*openapi.Response{
				204: {Description: "Suggestion rejected"},
				404: openapi.ResponseRef("NotFound"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}
	spec.Paths["/suggestions/stale"] = &openapi.PathItem{
		Delete: &openapi.Operation{
			Summary: "Clear stale decided suggestions",
			Tags:    []string{"suggestions"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("days", "integer", "Age threshold in days", false),
			},
			Responses: map[int]*openapi.Response{
				200: {Description: "Number of suggestions removed"},
			},
		},
	}
}

func addPromptPaths(spec *openapi.Spec) {
	spec.Paths["/prompts"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List prompt overrides",
			Tags:    []string{"prompts"},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated prompts", "Prompt"),
			},
		},
		Post: &openapi.Operation{
			Summary:     "Create a prompt override",
			Tags:        []string{"prompts"},
			RequestBody: openapi.RequestBodyJSON("Prompt", true),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created prompt", "Prompt"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}
	spec.Paths["/prompts/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a prompt override",
			Tags:       []string{"prompts"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Prompt identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Prompt", "Prompt"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Put: &openapi.Operation{
			Summary:     "Update a prompt override",
			Tags:        []string{"prompts"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Prompt identifier")},
			RequestBody: openapi.RequestBodyJSON("Prompt", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Updated prompt", "Prompt"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete a prompt override",
			Tags:       []string{"prompts"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Prompt identifier")},
			Responses: map[int]*openapi.Response{
				204: {Description: "Prompt deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}
	spec.Paths["/prompts/{id}/activate"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Activate a prompt override for its stage",
			Tags:       []string{"prompts"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Prompt identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Activated prompt", "Prompt"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}
}

func addPrivacyPaths(spec *openapi.Spec) {
	spec.Paths["/privacy/audit"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List audit trail entries",
			Tags:    []string{"privacy"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("page", "integer", "Page number", false),
				openapi.QueryParam("page_size", "integer", "Results per page", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated audit entries", "AuditEntry"),
			},
		},
	}
	spec.Paths["/privacy/export"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Export all stored user data",
			Tags:    []string{"privacy"},
			Responses: map[int]*openapi.Response{
				200: {Description: "Complete data export bundle"},
			},
		},
	}
	spec.Paths["/privacy/data"] = &openapi.PathItem{
		Delete: &openapi.Operation{
			Summary:     "Erase all stored user data",
			Description: "The deletion intent is written to the audit trail before any record is removed.",
			Tags:        []string{"privacy"},
			Responses: map[int]*openapi.Response{
				200: {Description: "Erasure summary"},
			},
		},
	}
}

func ptr[T any](v T) *T {
	return &v
}
