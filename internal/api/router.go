package api

import (
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"classroom-backend/internal/mw"
)

// RouterOptions configures the middleware stack.
type RouterOptions struct {
	Limiter *mw.IPRateLimiter
	Cache   *cache.Cache
	Logger  *zap.Logger
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Logger != nil {
		r.Use(mw.RequestLogger(opts.Logger))
	}

	caching := func(c *gin.Context) { c.Next() }
	api := r.Group("/api")
	if opts.Limiter != nil {
		api.Use(mw.RateLimiter(opts.Limiter))
	}
	if opts.Cache != nil {
		api.Use(mw.FlushOnWrite(opts.Cache))
		caching = mw.Cache(opts.Cache, cache.DefaultExpiration)
	}
	{
		api.GET("/health", Health)

		api.GET("/roster", caching, h.GetRoster)
		api.PUT("/roster", h.PutRoster)

		seating := api.Group("/seating")
		seating.POST("/generate", h.GenerateSeating)
		seating.GET("/columns", caching, h.GetColumns)
		seating.PUT("/columns", h.PutColumns)
		seating.GET("/history", caching, h.GetHistory)
		seating.POST("/history", h.SaveHistory)
		seating.GET("/history/:date", caching, h.LoadHistory)

		students := api.Group("/students/:number/attendance")
		students.GET("", caching, h.GetAttendance)
		students.POST("/:kind", h.AddAttendance)
		students.PUT("/:kind/:id", h.UpdateAttendance)
		students.DELETE("/:kind/:id", h.DeleteAttendance)

		api.GET("/todos", caching, h.GetTodos)
		api.POST("/todos", h.AddTodo)
		api.PUT("/todos/:id", h.UpdateTodo)
		api.DELETE("/todos/:id", h.DeleteTodo)
		api.POST("/todos/:id/toggle", h.ToggleTodo)

		// Messages change in the background as analyses land, so they are
		// never cached.
		api.GET("/messages", h.GetMessages)
		api.POST("/messages", h.AddMessage)
		api.DELETE("/messages/:id", h.DeleteMessage)

		api.GET("/briefing", caching, h.GetBriefing)
		api.POST("/briefing", h.GenerateBriefing)

		settings := api.Group("/settings")
		settings.GET("/admin", caching, h.GetAdmin)
		settings.PUT("/admin", h.PutAdmin)
		settings.GET("/attendance", caching, h.GetAttendanceSettings)
		settings.PUT("/attendance", h.PutAttendanceSettings)
		settings.GET("/api-key", h.GetAPIKey)
		settings.PUT("/api-key", h.PutAPIKey)
	}

	return r
}
