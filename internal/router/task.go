package router

import "github.com/gin-gonic/gin"

func (r *Router) taskRoutes(root *gin.RouterGroup) {
	tasks := root.Group("/tasks")
	{
		// All task routes require JWT authentication
		tasks.Use(r.jwtMw.RequireAuth())
		{
			tasks.GET("", r.taskHandler.List)
			tasks.POST("", r.taskHandler.Create)
			tasks.GET("/:id", r.taskHandler.Get)
			tasks.PATCH("/:id", r.taskHandler.Update)
			tasks.DELETE("/:id", r.taskHandler.Delete)
			tasks.POST("/:id/toggle", r.taskHandler.Toggle)
		}
	}
}
