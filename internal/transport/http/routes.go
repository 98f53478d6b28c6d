package http

import "github.com/labstack/echo/v4"

// Mount registers every route on e. requireAuth guards the routes that need
// an authenticated user, throttle the routes that accept credentials.
func (r *Routers) Mount(e *echo.Echo, requireAuth, throttle echo.MiddlewareFunc) {
	e.GET("/", r.Root)
	e.GET("/health", r.Health)
	e.GET("/health/db", r.HealthDB)

	api := e.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", r.Register, throttle)
			authGroup.POST("/login", r.Login, throttle)
			authGroup.POST("/refresh", r.Refresh)
			authGroup.POST("/logout", r.Logout)
		}

		users := api.Group("/users")
		{
			users.POST("/signup", r.Signup, throttle)
			users.POST("/login", r.Login, throttle)
			users.POST("/refresh", r.Refresh)
			users.GET("/me", r.Me, requireAuth)
			users.PUT("/me/password", r.ChangePassword, requireAuth, throttle)
		}

		api.GET("/profile/:username", r.GetProfile)
		api.PUT("/profile/:username", r.UpdateProfile, requireAuth)
		api.GET("/discover", r.Discover)

		archetypes := api.Group("/archetypes")
		{
			archetypes.GET("", r.ListArchetypes)
			archetypes.POST("", r.CreateArchetype, requireAuth)
			archetypes.GET("/:id", r.GetArchetype)
			archetypes.DELETE("/:id", r.DeleteArchetype, requireAuth)
		}

		tiers := api.Group("/tiers")
		{
			tiers.GET("", r.ListTiers)
			tiers.POST("", r.CreateTier, requireAuth)
			tiers.GET("/:id", r.GetTier)
			tiers.DELETE("/:id", r.DeleteTier, requireAuth)
		}

		coalitions := api.Group("/coalitions")
		{
			coalitions.GET("", r.ListCoalitions)
			coalitions.POST("", r.CreateCoalition, requireAuth)
			coalitions.GET("/:id", r.GetCoalition)
			coalitions.DELETE("/:id", r.DeleteCoalition, requireAuth)
			coalitions.POST("/:id/join", r.JoinCoalition, requireAuth)
			coalitions.POST("/:id/leave", r.LeaveCoalition, requireAuth)
			coalitions.GET("/:id/members", r.CoalitionMembers)
		}

		projects := api.Group("/projects")
		{
			projects.GET("", r.ListProjects)
			projects.POST("", r.CreateProject, requireAuth)
			projects.GET("/:id", r.GetProject)
			projects.DELETE("/:id", r.DeleteProject, requireAuth)
		}

		collab := api.Group("/collabcircle")
		{
			collab.POST("/create", r.CreateCollab, requireAuth)
			collab.POST("/verify", r.VerifyCollab, requireAuth)
			collab.GET("/:username", r.CollabCircle)
		}
	}
}
