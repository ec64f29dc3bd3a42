package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"comicvault/internal/auth"
	"comicvault/internal/comic"
	"comicvault/internal/issues"
	"comicvault/internal/logger"
	"comicvault/pkg/models"
)

func (s *Server) handleToggleIssue(c *gin.Context) {
	comicID, err := strconv.ParseInt(c.Param("comicId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comic id"})
		return
	}
	issueNumber, err := strconv.Atoi(c.Param("issueNumber"))
	if err != nil || issueNumber < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid issue number"})
		return
	}
	userID := c.GetString(auth.CtxUserIDKey)

	ui, err := issues.Toggle(s.db, userID, comicID, issueNumber)
	if err != nil {
		logger.Error("toggle issue user=%s comic=%d issue=%d: %v", userID, comicID, issueNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	s.publishProgress(userID, comicID, issueNumber, ui.IsRead)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": ui})
}

func (s *Server) handleProgress(c *gin.Context) {
	comicID, err := strconv.ParseInt(c.Param("comicId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comic id"})
		return
	}
	userID := c.GetString(auth.CtxUserIDKey)

	p, err := issues.GetProgress(s.db, userID, comicID)
	if err != nil {
		logger.Error("progress user=%s comic=%d: %v", userID, comicID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
}

func (s *Server) handleMarkAllRead(c *gin.Context) {
	comicID, err := strconv.ParseInt(c.Param("comicId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comic id"})
		return
	}
	userID := c.GetString(auth.CtxUserIDKey)

	// body may override the comic's issue count, e.g. while provider metadata
	// is stale
	var req struct {
		TotalIssues int `json:"total_issues"`
	}
	_ = c.ShouldBindJSON(&req)

	total := req.TotalIssues
	if total <= 0 {
		m, err := comic.GetByID(s.db, comicID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "comic not found"})
			return
		}
		total = m.IssueCount
	}
	if total <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comic has no known issue count"})
		return
	}

	marked, err := issues.MarkAllRead(s.db, userID, comicID, total)
	if err != nil {
		logger.Error("mark all user=%s comic=%d: %v", userID, comicID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	s.publishProgress(userID, comicID, 0, true)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"marked": marked}})
}

func (s *Server) publishProgress(userID string, comicID int64, issueNumber int, isRead bool) {
	totalRead, err := issues.CountRead(s.db, userID, comicID)
	if err != nil {
		logger.Warn("count read user=%s comic=%d: %v", userID, comicID, err)
	}
	s.hub.Publish(models.ProgressUpdate{
		UserID:      userID,
		ComicID:     comicID,
		IssueNumber: issueNumber,
		IsRead:      isRead,
		TotalRead:   totalRead,
		Timestamp:   time.Now().Unix(),
	})
}
