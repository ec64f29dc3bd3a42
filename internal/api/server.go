package api

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"comicvault/internal/auth"
	"comicvault/internal/comicvine"
	"comicvault/internal/ws"
	"comicvault/pkg/config"
)

// Server holds the injected dependencies for every handler. Nothing here is a
// package-level singleton; tests construct their own Server around a temp db
// and a fake provider.
type Server struct {
	db   *sql.DB
	cfg  *config.Config
	vine *comicvine.Client
	hub  *ws.Hub
}

func NewServer(db *sql.DB, cfg *config.Config, vine *comicvine.Client, hub *ws.Hub) *Server {
	return &Server{db: db, cfg: cfg, vine: vine, hub: hub}
}

// Router builds the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	r.GET("/api/test", s.handleTest)

	// AUTH
	r.POST("/auth/register", s.handleRegister)
	r.POST("/auth/login", s.handleLogin)

	// PUBLIC PROVIDER PROXY
	r.GET("/api/search", s.handleSearch)
	r.GET("/api/comic-details", s.handleComicDetails)

	// LIVE PROGRESS
	r.GET("/ws", ws.Handle(s.hub, []byte(s.cfg.JWTSecret)))

	// PROTECTED
	authed := r.Group("/")
	authed.Use(auth.RequireJWT([]byte(s.cfg.JWTSecret)))
	authed.POST("/api/comics/add-to-collection", s.handleAddToCollection)
	authed.GET("/api/comics/:id/collection-status", s.handleCollectionStatus)
	authed.PUT("/api/comics/:id/status", s.handleUpdateStatus)
	authed.DELETE("/api/comics/:id/collection", s.handleRemoveFromCollection)
	authed.GET("/api/user/comics", s.handleListComics)
	authed.GET("/api/user/currently-reading", s.handleCurrentlyReading)
	authed.GET("/api/user/stats", s.handleStats)
	authed.GET("/api/user/profile", s.handleGetProfile)
	authed.PUT("/api/user/profile", s.handleUpdateProfile)
	authed.POST("/api/issues/:comicId/:issueNumber/toggle", s.handleToggleIssue)
	authed.POST("/api/issues/:comicId/mark-all", s.handleMarkAllRead)
	authed.GET("/api/issues/:comicId/progress", s.handleProgress)

	return r
}

func (s *Server) handleTest(c *gin.Context) {
	if err := s.db.Ping(); err != nil {
		c.JSON(500, gin.H{"error": "database connection failed"})
		return
	}
	c.JSON(200, gin.H{"success": true, "message": "database connected successfully"})
}
