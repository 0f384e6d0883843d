package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"docketline/internal/engine"
	"docketline/internal/repo"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   engine.Engine
	BasePath string
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"deadline not found"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

type requestKey struct{}
type bodyBytesKey struct{}

// apiError models the error envelope returned by every endpoint.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the Docketline API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bodyBytes, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			ctx := context.WithValue(r.Context(), requestKey{}, r)
			ctx = context.WithValue(ctx, bodyBytesKey{}, bodyBytes)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	hcfg := huma.DefaultConfig("Docketline API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "" // custom Swagger UI below
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerCases(group, cfg.Engine)
	registerStatus(group, cfg.Engine)
	registerTriggers(group, cfg.Engine)
	registerDeadlines(group, cfg.Engine)
	registerDependencies(group, cfg.Engine)
	registerRules(group, cfg.Engine)
	registerEvents(group, cfg.Engine)
	registerOpenAPI(router, api, basePath)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	switch {
	case strings.Contains(lowered, "cycle"),
		strings.Contains(lowered, "transition"),
		strings.Contains(lowered, "cannot move"):
		return newAPIError(http.StatusConflict, "conflict", msg, nil)
	case strings.Contains(lowered, "invalid") || strings.Contains(lowered, "required") ||
		strings.Contains(lowered, "contradicts") || strings.Contains(lowered, "cannot depend") ||
		strings.Contains(lowered, "no court calendar") || strings.Contains(lowered, "spans different"):
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func bodyBytes(ctx context.Context) []byte {
	b, _ := ctx.Value(bodyBytesKey{}).([]byte)
	return b
}

// actorID reads the caller identity header; identity management is
// out of scope so the header is trusted as-is.
func actorID(ctx context.Context) string {
	r, _ := ctx.Value(requestKey{}).(*http.Request)
	if r != nil {
		if v := r.Header.Get("X-Actor-Id"); v != "" {
			return v
		}
	}
	return "api"
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var spec []byte
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		if spec == nil {
			spec, _ = json.Marshal(api.OpenAPI())
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Docketline API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.onload = () => {
        window.ui = SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
  </body>
</html>`, specURL)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerCases(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-case",
		Method:        http.MethodPost,
		Path:          "/cases",
		Summary:       "Create case",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body CreateCaseRequest `json:"body"`
	}) (*struct {
		Body CaseResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		c, err := e.InitCase(ctx, engine.CaseCreateOptions{
			Title:        input.Body.Title,
			CaseNumber:   input.Body.CaseNumber,
			Jurisdiction: input.Body.Jurisdiction,
			CourtType:    input.Body.CourtType,
			ActorID:      actorID(ctx),
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body CaseResponse `json:"body"`
		}{Body: caseResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-cases",
		Method:      http.MethodGet,
		Path:        "/cases",
		Summary:     "List cases",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []CaseResponse `json:"body"`
	}, error) {
		items, err := e.Repo.ListCases(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []CaseResponse `json:"body"`
		}{Body: mapCases(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-case",
		Method:      http.MethodGet,
		Path:        "/cases/{case_id}",
		Summary:     "Get case",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		CaseID string `path:"case_id"`
	}) (*struct {
		Body CaseResponse `json:"body"`
	}, error) {
		c, err := e.Repo.GetCase(ctx, input.CaseID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body CaseResponse `json:"body"`
		}{Body: caseResponse(c)}, nil
	})
}

func registerStatus(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "case-status",
		Method:      http.MethodGet,
		Path:        "/cases/{case_id}/status",
		Summary:     "Case deadline status summary",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		CaseID string `path:"case_id"`
	}) (*struct {
		Body map[string]any `json:"body"`
	}, error) {
		c, err := e.Repo.GetCase(ctx, input.CaseID)
		if err != nil {
			return nil, handleError(err)
		}
		counts, err := e.Repo.CountDeadlinesByStatus(ctx, c.ID)
		if err != nil {
			return nil, handleError(err)
		}
		chains, err := e.Repo.ListChains(ctx, c.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body map[string]any `json:"body"`
		}{Body: map[string]any{
			"case_id":         c.ID,
			"status":          c.Status,
			"deadline_counts": counts,
			"chains":          mapChains(chains),
		}}, nil
	})
}

func registerTriggers(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "fire-trigger",
		Method:      http.MethodPost,
		Path:        "/cases/{case_id}/triggers",
		Summary:     "Fire a trigger and expand deadline chains",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		CaseID string             `path:"case_id"`
		Body   FireTriggerRequest `json:"body"`
	}) (*struct {
		Body engine.TriggerResult `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		res, err := e.FireTrigger(ctx, engine.TriggerOptions{
			CaseID:        input.CaseID,
			DocumentType:  input.Body.DocumentType,
			TriggerType:   input.Body.TriggerType,
			TriggerDate:   input.Body.TriggerDate,
			ServiceMethod: input.Body.ServiceMethod,
			ActorID:       actorID(ctx),
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.TriggerResult `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "match-document",
		Method:      http.MethodGet,
		Path:        "/cases/{case_id}/match",
		Summary:     "Preview trigger classification for a document type",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		CaseID       string `path:"case_id"`
		DocumentType string `query:"document_type"`
	}) (*struct {
		Body catalogMatchBody `json:"body"`
	}, error) {
		if input.DocumentType == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "document_type is required", nil)
		}
		c, err := e.Repo.GetCase(ctx, input.CaseID)
		if err != nil {
			return nil, handleError(err)
		}
		mr := e.Catalog.MatchDocument(input.DocumentType, c.Jurisdiction, c.CourtType)
		return &struct {
			Body catalogMatchBody `json:"body"`
		}{Body: catalogMatchBody{
			Matches:           mr.Matches,
			TriggerType:       mr.TriggerType,
			MatchedPattern:    mr.MatchedPattern,
			ExpectedDeadlines: mr.ExpectedDeadlines,
		}}, nil
	})
}

type catalogMatchBody struct {
	Matches           bool   `json:"matches"`
	TriggerType       string `json:"trigger_type,omitempty"`
	MatchedPattern    string `json:"matched_pattern,omitempty"`
	ExpectedDeadlines int    `json:"expected_deadlines"`
}

func registerDeadlines(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-deadlines",
		Method:      http.MethodGet,
		Path:        "/cases/{case_id}/deadlines",
		Summary:     "List deadlines",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		CaseID   string `path:"case_id"`
		Status   string `query:"status"`
		Priority string `query:"priority"`
		From     string `query:"from"`
		To       string `query:"to"`
	}) (*struct {
		Body []DeadlineResponse `json:"body"`
	}, error) {
		if _, err := e.Repo.GetCase(ctx, input.CaseID); err != nil {
			return nil, handleError(err)
		}
		items, err := e.Repo.ListDeadlines(ctx, repo.DeadlineFilters{
			CaseID:   input.CaseID,
			Status:   input.Status,
			Priority: input.Priority,
			From:     input.From,
			To:       input.To,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []DeadlineResponse `json:"body"`
		}{Body: mapDeadlines(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-deadline",
		Method:        http.MethodPost,
		Path:          "/cases/{case_id}/deadlines",
		Summary:       "Add a manual deadline",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		CaseID string                `path:"case_id"`
		Body   CreateDeadlineRequest `json:"body"`
	}) (*struct {
		Body DeadlineResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		d, err := e.AddManualDeadline(ctx, engine.DeadlineCreateOptions{
			CaseID:         input.CaseID,
			Title:          input.Body.Title,
			Description:    input.Body.Description,
			Date:           input.Body.Date,
			Time:           input.Body.Time,
			DeadlineType:   input.Body.DeadlineType,
			Priority:       input.Body.Priority,
			PartyRole:      input.Body.PartyRole,
			ActionRequired: input.Body.ActionRequired,
			ApplicableRule: input.Body.ApplicableRule,
			ActorID:        actorID(ctx),
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body DeadlineResponse `json:"body"`
		}{Body: deadlineResponse(d)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-deadline",
		Method:      http.MethodGet,
		Path:        "/deadlines/{deadline_id}",
		Summary:     "Get deadline",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		DeadlineID string `path:"deadline_id"`
	}) (*struct {
		Body DeadlineResponse `json:"body"`
	}, error) {
		d, err := e.Repo.GetDeadline(ctx, input.DeadlineID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body DeadlineResponse `json:"body"`
		}{Body: deadlineResponse(d)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-deadline",
		Method:      http.MethodPatch,
		Path:        "/deadlines/{deadline_id}",
		Summary:     "Update deadline status or date",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusConflict,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		DeadlineID string                `path:"deadline_id"`
		Body       UpdateDeadlineRequest `json:"body"`
	}) (*struct {
		Body DeadlineResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		d, err := e.UpdateDeadline(ctx, engine.DeadlineUpdateOptions{
			ID:            input.DeadlineID,
			Status:        input.Body.Status,
			SetDate:       input.Body.Date,
			SetTime:       input.Body.Time,
			SetAutoRecalc: input.Body.AutoRecalculate,
			Reason:        input.Body.Reason,
			ActorID:       actorID(ctx),
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body DeadlineResponse `json:"body"`
		}{Body: deadlineResponse(d)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-deadline",
		Method:      http.MethodDelete,
		Path:        "/deadlines/{deadline_id}",
		Summary:     "Delete deadline",
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		DeadlineID string `path:"deadline_id"`
	}) (*struct{}, error) {
		if err := e.DeleteDeadline(ctx, input.DeadlineID, actorID(ctx)); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "deadline-history",
		Method:      http.MethodGet,
		Path:        "/deadlines/{deadline_id}/history",
		Summary:     "Deadline change history",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		DeadlineID string `path:"deadline_id"`
	}) (*struct {
		Body []HistoryResponse `json:"body"`
	}, error) {
		if _, err := e.Repo.GetDeadline(ctx, input.DeadlineID); err != nil {
			return nil, handleError(err)
		}
		items, err := e.Repo.ListHistory(ctx, input.DeadlineID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []HistoryResponse `json:"body"`
		}{Body: mapHistory(items)}, nil
	})
}

func registerDependencies(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "add-dependency",
		Method:        http.MethodPost,
		Path:          "/deadlines/{deadline_id}/dependencies",
		Summary:       "Link a deadline to a parent",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusConflict,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		DeadlineID string               `path:"deadline_id"`
		Body       AddDependencyRequest `json:"body"`
	}) (*struct {
		Body DependencyResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		dep, err := e.AddDependency(ctx, engine.DependencyOptions{
			DeadlineID:      input.DeadlineID,
			DependsOnID:     input.Body.DependsOnID,
			OffsetDays:      input.Body.OffsetDays,
			OffsetDirection: input.Body.OffsetDirection,
			AddServiceDays:  input.Body.AddServiceDays,
			AutoRecalculate: input.Body.AutoRecalculate,
			ActorID:         actorID(ctx),
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body DependencyResponse `json:"body"`
		}{Body: dependencyResponse(dep)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-dependencies",
		Method:      http.MethodGet,
		Path:        "/cases/{case_id}/dependencies",
		Summary:     "List dependency edges for a case",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		CaseID string `path:"case_id"`
	}) (*struct {
		Body []DependencyResponse `json:"body"`
	}, error) {
		if _, err := e.Repo.GetCase(ctx, input.CaseID); err != nil {
			return nil, handleError(err)
		}
		items, err := e.Repo.ListDependenciesByCase(ctx, input.CaseID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []DependencyResponse `json:"body"`
		}{Body: mapDependencies(items)}, nil
	})
}

func registerRules(api huma.API, e engine.Engine) {
	type templateSummary struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Jurisdiction string `json:"jurisdiction"`
		CourtType    string `json:"court_type"`
		TriggerType  string `json:"trigger_type"`
		Deadlines    int    `json:"deadlines"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "list-rule-templates",
		Method:      http.MethodGet,
		Path:        "/rules/templates",
		Summary:     "List loaded rule templates",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []templateSummary `json:"body"`
	}, error) {
		var out []templateSummary
		for _, t := range e.Catalog.Templates() {
			out = append(out, templateSummary{
				ID:           t.ID,
				Name:         t.Name,
				Jurisdiction: t.Jurisdiction,
				CourtType:    t.CourtType,
				TriggerType:  t.TriggerType,
				Deadlines:    len(t.Deadlines),
			})
		}
		return &struct {
			Body []templateSummary `json:"body"`
		}{Body: out}, nil
	})
}

func registerEvents(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "Latest events",
	}, func(ctx context.Context, input *struct {
		N          int    `query:"n"`
		CaseID     string `query:"case_id"`
		Type       string `query:"type"`
		EntityKind string `query:"entity_kind"`
		EntityID   string `query:"entity_id"`
	}) (*struct {
		Body []EventResponse `json:"body"`
	}, error) {
		items, err := e.Repo.LatestEvents(ctx, input.N, input.CaseID, input.Type, input.EntityKind, input.EntityID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []EventResponse `json:"body"`
		}{Body: mapEvents(items)}, nil
	})
}
