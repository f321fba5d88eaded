package router

import "github.com/gin-gonic/gin"

func (r *Router) authRoutes(root *gin.RouterGroup) {
	auth := root.Group("/auth")
	if r.authLimiter != nil {
		auth.Use(r.authLimiter.Handler())
	}
	{
		// Public routes (no authentication required)
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/refresh", r.authHandler.Refresh)

		// Protected routes (JWT authentication required)
		protected := auth.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.POST("/logout", r.authHandler.Logout)
			protected.GET("/me", r.authHandler.Me)
		}
	}
}
