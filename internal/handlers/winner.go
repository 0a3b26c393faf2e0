package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListWinners handles GET /api/v1/raffle/winners
func (a *Admin) ListWinners(c *gin.Context) {
	winners, err := a.winners.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch winners: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"winners": winners, "count": len(winners)})
}
