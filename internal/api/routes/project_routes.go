package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/proup-app/proup-api/internal/api/dto"
	"github.com/proup-app/proup-api/internal/api/handlers"
)

// ProjectRoutes registers projects, membership and the project leaderboard.
type ProjectRoutes struct {
	projects    *handlers.ProjectHandler
	leaderboard *handlers.LeaderboardHandler
	guard       Guard
}

func NewProjectRoutes(projects *handlers.ProjectHandler, leaderboard *handlers.LeaderboardHandler, guard Guard) *ProjectRoutes {
	return &ProjectRoutes{projects: projects, leaderboard: leaderboard, guard: guard}
}

func (r *ProjectRoutes) RegisterRoutes(router *gin.Engine) {
	validation := r.guard.Validation

	projects := router.Group("/api/projects")
	projects.Use(r.guard.chain()...)

	projects.GET("", r.projects.ListProjects)
	projects.POST("", validation.ValidateRequest(&dto.CreateProjectRequest{}), r.projects.CreateProject)
	projects.GET("/:id", r.projects.GetProject)
	projects.GET("/:id/members", r.projects.ListMembers)
	projects.POST("/:id/members", validation.ValidateRequest(&dto.AddMemberRequest{}), r.projects.AddMember)
	projects.DELETE("/:id/members/:userId", r.projects.RemoveMember)

	projects.GET("/:id/leaderboard", r.leaderboard.GetLeaderboard)
}
