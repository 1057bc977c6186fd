package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/degreeplan/internal/app/controllers"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	planController *controllers.PlanController,
	catalogController *controllers.CatalogController,
) {
	// API version group
	v1 := router.Group("/api/v1")

	plans := v1.Group("/plans")
	{
		plans.POST("", planController.CreatePlan)
	}

	courses := v1.Group("/courses")
	{
		courses.GET("", catalogController.GetAllCourses)
		courses.GET("/:code", catalogController.GetCourseByCode)
	}

	programs := v1.Group("/programs")
	{
		programs.GET("", catalogController.GetAllPrograms)
		programs.GET("/:code", catalogController.GetProgramByCode)
	}

	v1.GET("/minors", catalogController.GetAllMinors)
}
