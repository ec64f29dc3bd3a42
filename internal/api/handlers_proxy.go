package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"comicvault/internal/logger"
)

// Provider proxy. Raw ComicVine responses pass through untouched; the only
// job here is keeping the API key server-side.

func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query required"})
		return
	}
	limit := parseInt(c.Query("limit"), 10)

	body, err := s.vine.Search(query, limit)
	if err != nil {
		logger.Error("comicvine search %q: %v", query, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "provider request failed"})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

func (s *Server) handleComicDetails(c *gin.Context) {
	detailURL := c.Query("url")
	if detailURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url required"})
		return
	}

	body, err := s.vine.Detail(detailURL)
	if err != nil {
		logger.Error("comicvine detail %q: %v", detailURL, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "provider request failed"})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
