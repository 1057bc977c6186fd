package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/degreeplan/internal/app/models/dto"
	"github.com/yigit/degreeplan/internal/app/services"
	"github.com/yigit/degreeplan/internal/middleware"
	"github.com/yigit/degreeplan/internal/planner/diag"
)

// PlanController handles planning requests
type PlanController struct {
	plannerService services.Planner
	// requests may shorten the solve budget but not extend it past this
	maxSolveTimeout time.Duration
}

// NewPlanController creates a new PlanController
func NewPlanController(plannerService services.Planner, maxSolveTimeout time.Duration) *PlanController {
	return &PlanController{
		plannerService:  plannerService,
		maxSolveTimeout: maxSolveTimeout,
	}
}

// CreatePlan plans the remaining terms of the student in the request body.
// Responds 201 with a dto.PlanResponse, 400 on invalid input, 404 for an
// unknown program or minor, 422 when no plan exists and 504 when the
// solver ran out of time.
func (c *PlanController) CreatePlan(ctx *gin.Context) {
	var req dto.PlanRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	timeout := time.Duration(req.TimeoutSeconds) * time.Second
	if timeout > c.maxSolveTimeout {
		timeout = c.maxSolveTimeout
	}

	result, err := c.plannerService.Plan(ctx.Request.Context(), services.PlanRequest{
		Profile: req.Profile,
		Relax:   req.Relax,
		Timeout: timeout,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(toPlanResponse(result)))
}

func toPlanResponse(r *services.PlanResult) dto.PlanResponse {
	resp := dto.PlanResponse{
		RunID:       r.RunID.String(),
		Program:     r.Program,
		Horizon:     r.Horizon,
		Status:      string(r.Status),
		Objective:   r.Objective,
		Progress:    r.Progress,
		Overlap:     r.Overlap,
		Warnings:    r.Warnings,
		Relaxations: r.Relaxations,
		ElapsedMs:   r.Elapsed.Milliseconds(),
	}
	if r.Plan != nil {
		resp.Terms = r.Plan.Terms
		resp.Totals = r.Plan.Totals
		resp.TotalCredits = r.Plan.TotalCredits
		resp.Minor = r.Plan.Minor
	}
	if resp.Warnings == nil {
		resp.Warnings = []diag.Warning{}
	}
	return resp
}
