package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Metrics        *handlers.MetricsHandler
	Users          *handlers.UsersHandler
	Issues         *handlers.IssuesHandler
	Lifecycle      *handlers.LifecycleHandler
	Hierarchy      *handlers.HierarchyHandler
	Attachments    *handlers.AttachmentsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/debug/metrics", cfg.Metrics.Snapshot)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authProtected.Post("/password/change", cfg.Users.ChangePassword)
	authProtected.Get("/me", cfg.Users.Me)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	api.Get("/categories", cfg.Hierarchy.ListCategories)
	api.Get("/priorities", cfg.Hierarchy.ListPriorities)

	api.Post("/institutes", auth.RequireAdmin(), cfg.Hierarchy.CreateInstitute)
	api.Get("/institutes", cfg.Hierarchy.ListInstitutes)
	api.Get("/institutes/:id/projects", cfg.Hierarchy.ListProjects)
	api.Post("/projects", auth.RequireAdmin(), cfg.Hierarchy.CreateProject)
	api.Get("/projects/:id", cfg.Hierarchy.GetProject)
	api.Get("/projects/:id/nodes", cfg.Hierarchy.ListNodes)
	api.Post("/nodes", auth.RequireAdmin(), cfg.Hierarchy.CreateNode)
	api.Get("/nodes/committees", cfg.Hierarchy.ListCommitteeNodes)
	api.Get("/nodes/:id", cfg.Hierarchy.GetNode)
	api.Post("/nodes/:id/members", auth.RequireAdmin(), cfg.Hierarchy.AddMember)
	api.Get("/nodes/:id/members", cfg.Hierarchy.ListMembers)
	api.Get("/nodes/:id/issues", auth.RequireHandler(), cfg.Issues.ListNodeIssues)

	api.Post("/attachments", cfg.Attachments.Upload)
	api.Get("/attachments/:id", cfg.Attachments.Download)

	api.Post("/issues", cfg.Issues.CreateIssue)
	api.Get("/issues", cfg.Issues.ListMyIssues)
	api.Get("/issues/ticket/:ticket_number", cfg.Issues.GetIssueByTicket)
	api.Get("/issues/user/:id", cfg.Issues.ListUserIssues)
	api.Get("/issues/hierarchy/:id", auth.RequireHandler(), cfg.Issues.ListNodeIssues)
	api.Get("/issues/:id", cfg.Issues.GetIssue)
	api.Post("/issues/:id/accept", auth.RequireHandler(), cfg.Issues.Accept)
	api.Post("/issues/:id/confirm", cfg.Issues.Confirm)
	api.Post("/issues/:id/assignments", auth.RequireHandler(), cfg.Issues.Assign)
	api.Post("/issues/:id/committee", auth.RequireHandler(), cfg.Issues.AssignCommittee)
	api.Delete("/issues/:id/assignments/:assignee_id", auth.RequireHandler(), cfg.Issues.RemoveAssignmentByAssignee)
	api.Delete("/assignments/:id", auth.RequireHandler(), cfg.Issues.RemoveAssignment)

	api.Post("/issues/:id/escalations", cfg.Lifecycle.Escalate)
	api.Post("/issues/:id/resolutions", auth.RequireHandler(), cfg.Lifecycle.Resolve)
	api.Post("/issues/:id/rejects", cfg.Lifecycle.Reject)
	api.Post("/issues/:id/re-raises", cfg.Lifecycle.ReRaise)

	api.Get("/notifications", cfg.Notifications.List)
	api.Post("/notifications/:id/read", cfg.Notifications.MarkRead)
}
