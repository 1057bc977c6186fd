package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/app/models/dto"
	"github.com/yigit/degreeplan/internal/app/services"
	"github.com/yigit/degreeplan/internal/middleware"
	"github.com/yigit/degreeplan/internal/pkg/helpers"
)

// CatalogController handles course, program and minor lookups
type CatalogController struct {
	catalogService services.CatalogReader
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalogService services.CatalogReader) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
	}
}

// GetAllCourses lists catalog courses page by page.
// Query parameters: prefix (code prefix such as "COL"), page, size.
func (c *CatalogController) GetAllCourses(ctx *gin.Context) {
	courses, err := c.catalogService.ListCourses(ctx.Request.Context(), ctx.Query("prefix"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	start, end := helpers.CalculateSliceIndices(page, size, len(courses))

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      courses[start:end],
		Pagination: helpers.NewPaginationInfo(int64(len(courses)), page, size),
	}))
}

// GetCourseByCode returns one course with its parsed prerequisite paths
func (c *CatalogController) GetCourseByCode(ctx *gin.Context) {
	course, err := c.catalogService.GetCourse(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course))
}

// GetAllPrograms lists the programs
func (c *CatalogController) GetAllPrograms(ctx *gin.Context) {
	programs, err := c.catalogService.ListPrograms(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	summaries := make([]dto.ProgramSummary, 0, len(programs))
	for _, p := range programs {
		summaries = append(summaries, dto.ProgramSummary{Code: p.Code, Name: p.Name, Terms: len(p.Terms)})
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(summaries))
}

// GetProgramByCode returns a program with its curriculum
func (c *CatalogController) GetProgramByCode(ctx *gin.Context) {
	program, err := c.catalogService.GetProgram(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(program))
}

// GetAllMinors lists the minors
func (c *CatalogController) GetAllMinors(ctx *gin.Context) {
	minors, err := c.catalogService.ListMinors(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	summaries := make([]dto.MinorSummary, 0, len(minors))
	for _, m := range minors {
		summaries = append(summaries, minorSummary(m))
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(summaries))
}

func minorSummary(m models.Minor) dto.MinorSummary {
	return dto.MinorSummary{
		Name:                    m.Name,
		Department:              m.Department,
		CoreCourses:             len(m.CoreCourses),
		ElectiveCourses:         len(m.ElectiveCourses),
		CoreCreditsRequired:     m.CoreCredits,
		ElectiveCreditsRequired: m.ElectiveCredits,
		Note:                    m.Note,
	}
}
