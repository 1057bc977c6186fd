package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/degreeplan/internal/app/controllers"
	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/app/models/dto"
	"github.com/yigit/degreeplan/internal/app/repositories"
	"github.com/yigit/degreeplan/internal/app/routes"
	"github.com/yigit/degreeplan/internal/app/services"
	"github.com/yigit/degreeplan/internal/config"
	"github.com/yigit/degreeplan/internal/pkg/satsolver"
)

// envelope mirrors dto.APIResponse with a raw payload.
type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

func newRouter(t *testing.T, courses int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := make(models.Catalog)
	program := models.Program{Code: "TST", Name: "Test Program", Terms: make([][]string, 2)}
	for i := 0; i < courses; i++ {
		code := fmt.Sprintf("COR%03d", 100+i)
		cat[code] = models.CatalogCourse{Code: code, Name: "Core " + code, Credits: 4}
		program.Terms[i*2/courses] = append(program.Terms[i*2/courses], code)
	}
	cat["ADV200"] = models.CatalogCourse{Code: "ADV200", Name: "Advanced", Credits: 3, Prereqs: "[COR100 and (COR101 or COR102)]"}
	minors := []models.Minor{{Name: "Economics", Department: "HSS", CoreCredits: 3, ElectiveCredits: 3}}
	source := repositories.NewStaticCatalog(cat, []models.Program{program}, minors)

	cfg := config.DefaultPlannerConfig()
	cfg.DefaultProgram = "TST"
	cfg.HumanitiesFloor = 0
	cfg.ElectiveFloor = 0
	cfg.MaxExtendedTerms = 0
	cfg.SolveTimeout = "10s"

	planner := services.NewPlannerService(source, satsolver.New(zerolog.Nop()), cfg, zerolog.Nop())
	router := gin.New()
	routes.SetupRouter(router,
		controllers.NewPlanController(planner, 10*time.Second),
		controllers.NewCatalogController(services.NewCatalogService(source)),
	)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
	}
	return w, env
}

func TestCatalogEndpoints(t *testing.T) {
	router := newRouter(t, 4)

	tests := []struct {
		name     string
		path     string
		status   int
		wantCode dto.ErrorCode
	}{
		{name: "list courses", path: "/api/v1/courses", status: http.StatusOK},
		{name: "course", path: "/api/v1/courses/adv200", status: http.StatusOK},
		{name: "malformed code", path: "/api/v1/courses/ADV", status: http.StatusBadRequest, wantCode: dto.ErrorCodeBadRequest},
		{name: "missing course", path: "/api/v1/courses/ZZZ999", status: http.StatusNotFound, wantCode: dto.ErrorCodeResourceNotFound},
		{name: "programs", path: "/api/v1/programs", status: http.StatusOK},
		{name: "program", path: "/api/v1/programs/TST", status: http.StatusOK},
		{name: "missing program", path: "/api/v1/programs/NOPE", status: http.StatusNotFound, wantCode: dto.ErrorCodeResourceNotFound},
		{name: "minors", path: "/api/v1/minors", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, router, http.MethodGet, tt.path, nil)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.wantCode == "" {
				if !env.Success || env.Error != nil {
					t.Fatalf("unexpected error response %s", w.Body.String())
				}
				return
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Fatalf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}
}

func TestCourseDetailParsesPrerequisites(t *testing.T) {
	router := newRouter(t, 4)

	_, env := do(t, router, http.MethodGet, "/api/v1/courses/ADV200", nil)
	var detail services.CourseDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(detail.Paths) != 2 {
		t.Fatalf("paths = %v, want two alternatives", detail.Paths)
	}
}

func TestListCoursesPaginates(t *testing.T) {
	router := newRouter(t, 4)

	_, env := do(t, router, http.MethodGet, "/api/v1/courses?prefix=cor&page=2&size=3", nil)
	var page struct {
		Items      []models.CatalogCourse `json:"items"`
		Pagination dto.PaginationInfo     `json:"pagination"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Pagination.TotalItems != 4 || page.Pagination.TotalPages != 2 || page.Pagination.CurrentPage != 2 {
		t.Fatalf("pagination = %+v", page.Pagination)
	}
	if len(page.Items) != 1 || page.Items[0].Code != "COR103" {
		t.Fatalf("items = %+v", page.Items)
	}
}

func TestCreatePlan(t *testing.T) {
	profile := map[string]interface{}{
		"name":        "Test Student",
		"currentTerm": 1,
		"finalTerm":   2,
		"maxCredits":  20,
		"totalTarget": 40,
	}

	t.Run("planned", func(t *testing.T) {
		router := newRouter(t, 10)
		w, env := do(t, router, http.MethodPost, "/api/v1/plans", map[string]interface{}{"profile": profile})
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
		}
		var resp dto.PlanResponse
		if err := json.Unmarshal(env.Data, &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.TotalCredits != 40 || len(resp.Terms) != 2 || resp.RunID == "" {
			t.Fatalf("unexpected plan %+v", resp)
		}
	})

	t.Run("under-supplied", func(t *testing.T) {
		router := newRouter(t, 6)
		w, env := do(t, router, http.MethodPost, "/api/v1/plans", map[string]interface{}{"profile": profile})
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
		}
		if env.Error == nil || env.Error.Code != dto.ErrorCodeCategoryUnderSupply {
			t.Fatalf("error = %+v", env.Error)
		}
	})

	t.Run("invalid profile", func(t *testing.T) {
		router := newRouter(t, 4)
		bad := map[string]interface{}{"currentTerm": 0, "maxCredits": 20}
		w, env := do(t, router, http.MethodPost, "/api/v1/plans", map[string]interface{}{"profile": bad})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
		}
		if env.Error == nil || env.Error.Field != "profile.currentTerm" {
			t.Fatalf("error = %+v", env.Error)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newRouter(t, 4)
		w, _ := do(t, router, http.MethodPost, "/api/v1/plans", "{not json")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
	})
}

// recordingPlanner keeps the last request and returns an empty result.
type recordingPlanner struct {
	req services.PlanRequest
}

func (p *recordingPlanner) Plan(_ context.Context, req services.PlanRequest) (*services.PlanResult, error) {
	p.req = req
	return &services.PlanResult{}, nil
}

func TestCreatePlanCapsRequestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{name: "default", seconds: 0, want: 0},
		{name: "shorter", seconds: 5, want: 5 * time.Second},
		{name: "capped", seconds: 600, want: 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planner := &recordingPlanner{}
			router := gin.New()
			router.POST("/plans", controllers.NewPlanController(planner, 10*time.Second).CreatePlan)

			body := map[string]interface{}{
				"profile":        map[string]interface{}{"currentTerm": 1, "finalTerm": 2, "maxCredits": 20},
				"timeoutSeconds": tt.seconds,
			}
			w, _ := do(t, router, http.MethodPost, "/plans", body)
			if w.Code != http.StatusCreated {
				t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
			}
			if planner.req.Timeout != tt.want {
				t.Fatalf("timeout = %v, want %v", planner.req.Timeout, tt.want)
			}
		})
	}
}
