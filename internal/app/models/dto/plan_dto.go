package dto

import (
	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/planner/catalog"
	"github.com/yigit/degreeplan/internal/planner/diag"
	"github.com/yigit/degreeplan/internal/planner/extract"
	"github.com/yigit/degreeplan/internal/planner/overlap"
)

// PlanRequest represents a request to plan the remaining terms of a student
type PlanRequest struct {
	Profile models.StudentProfile `json:"profile"`
	// Relax overrides the server's relaxation setting when present
	Relax          *bool `json:"relax,omitempty"`
	TimeoutSeconds int   `json:"timeoutSeconds,omitempty" validate:"gte=0,lte=600" example:"30"`
}

// PlanResponse represents a produced plan
type PlanResponse struct {
	RunID        string                      `json:"runId" example:"0b6f0f5e-8a43-4c5e-9d2b-0d1f3f1b2c77"`
	Program      string                      `json:"program" example:"EE1"`
	Horizon      catalog.Horizon             `json:"horizon"`
	Status       string                      `json:"status" example:"Optimal"`
	Objective    int                         `json:"objective" example:"0"`
	Terms        []extract.TermPlan          `json:"terms"`
	Totals       map[models.Category]float64 `json:"totals"`
	TotalCredits float64                     `json:"totalCredits" example:"62"`
	Minor        *extract.MinorReport        `json:"minor,omitempty"`
	Progress     catalog.Progress            `json:"progress"`
	Overlap      *overlap.Result             `json:"overlap,omitempty"`
	Warnings     []diag.Warning              `json:"warnings"`
	Relaxations  []string                    `json:"relaxations,omitempty"`
	ElapsedMs    int64                       `json:"elapsedMs" example:"412"`
}

// MinorSummary represents a minor in listings
type MinorSummary struct {
	Name                    string  `json:"name" example:"Economics"`
	Department              string  `json:"department" example:"Humanities and Social Sciences"`
	CoreCourses             int     `json:"coreCourses" example:"3"`
	ElectiveCourses         int     `json:"electiveCourses" example:"8"`
	CoreCreditsRequired     float64 `json:"coreCreditsRequired" example:"9"`
	ElectiveCreditsRequired float64 `json:"electiveCreditsRequired" example:"11"`
	Note                    string  `json:"note,omitempty"`
}

// ProgramSummary represents a program in listings
type ProgramSummary struct {
	Code  string `json:"code" example:"EE1"`
	Name  string `json:"name" example:"B.Tech Electrical Engineering"`
	Terms int    `json:"terms" example:"8"`
}
