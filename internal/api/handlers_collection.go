package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"comicvault/internal/auth"
	"comicvault/internal/collection"
	"comicvault/internal/comic"
	"comicvault/internal/logger"
	"comicvault/pkg/models"
)

func (s *Server) handleAddToCollection(c *gin.Context) {
	var req struct {
		Comic  comic.RawComic `json:"comic"`
		Status string         `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Comic.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comic required"})
		return
	}
	if req.Status == "" {
		req.Status = models.StatusPlanned
	}
	if !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	userID := c.GetString(auth.CtxUserIDKey)

	comicID, err := comic.Resolve(s.db, req.Comic)
	if err != nil {
		logger.Error("resolve comic %d: %v", req.Comic.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	uc, err := collection.AddOrUpdate(s.db, userID, comicID, req.Status)
	if err != nil {
		logger.Error("add to collection user=%s comic=%d: %v", userID, comicID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": uc})
}

func (s *Server) handleCollectionStatus(c *gin.Context) {
	comicvineID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comic id"})
		return
	}
	userID := c.GetString(auth.CtxUserIDKey)

	check, err := collection.CheckStatus(s.db, userID, comicvineID)
	if err != nil {
		logger.Error("collection status user=%s comicvine=%d: %v", userID, comicvineID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"inCollection": check.InCollection,
		"status":       check.Status,
		"rating":       check.Rating,
	})
}

func (s *Server) handleUpdateStatus(c *gin.Context) {
	userComicID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Status string `json:"status"`
		Rating *int   `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be 1-5"})
		return
	}
	userID := c.GetString(auth.CtxUserIDKey)

	uc, err := collection.SetStatus(s.db, userID, userComicID, req.Status, req.Rating)
	if err == collection.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		logger.Error("set status user=%s id=%d: %v", userID, userComicID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": uc})
}

func (s *Server) handleRemoveFromCollection(c *gin.Context) {
	userComicID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	userID := c.GetString(auth.CtxUserIDKey)

	err = collection.Remove(s.db, userID, userComicID)
	if err == collection.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		logger.Error("remove user=%s id=%d: %v", userID, userComicID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleListComics(c *gin.Context) {
	statusFilter := c.Query("status")
	if statusFilter != "" && !models.ValidStatus(statusFilter) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	userID := c.GetString(auth.CtxUserIDKey)

	items, err := collection.List(s.db, userID, statusFilter)
	if err != nil {
		logger.Error("list comics user=%s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if items == nil {
		items = []collection.ListItem{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

func (s *Server) handleCurrentlyReading(c *gin.Context) {
	userID := c.GetString(auth.CtxUserIDKey)

	items, err := collection.CurrentlyReading(s.db, userID)
	if err != nil {
		logger.Error("currently reading user=%s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if items == nil {
		items = []collection.ReadingItem{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

func (s *Server) handleStats(c *gin.Context) {
	userID := c.GetString(auth.CtxUserIDKey)

	stats, err := collection.GetStats(s.db, userID)
	if err != nil {
		logger.Error("stats user=%s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}
