package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/raffle-backend/internal/jobs"
	"github.com/ArowuTest/raffle-backend/internal/raffle"
)

type participantPayload struct {
	OrderNumber string   `json:"orderNumber" binding:"required"`
	ClientName  string   `json:"clientName" binding:"required"`
	ClientPhone string   `json:"clientPhone" binding:"required"`
	TotalItems  *int     `json:"totalItems" binding:"required,gte=0"`
	TotalValue  *float64 `json:"totalValue" binding:"required,gte=0"`
}

// ListParticipants handles GET /api/v1/raffle/participants
func (a *Admin) ListParticipants(c *gin.Context) {
	list, err := a.registry.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list participants: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": list, "count": len(list)})
}

// AddParticipant handles POST /api/v1/raffle/participants (manual entry).
func (a *Admin) AddParticipant(c *gin.Context) {
	var in participantPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}

	res := a.registry.Add(c.Request.Context(), raffle.Candidate{
		OrderNumber: in.OrderNumber,
		ClientName:  in.ClientName,
		ClientPhone: in.ClientPhone,
		TotalItems:  *in.TotalItems,
		TotalValue:  *in.TotalValue,
	})
	c.JSON(resultStatus(res), res)
}

// ClearParticipants handles DELETE /api/v1/raffle/participants
func (a *Admin) ClearParticipants(c *gin.Context) {
	n, err := a.registry.ClearAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear participants: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// Reconcile handles POST /api/v1/raffle/reconcile
func (a *Admin) Reconcile(c *gin.Context) {
	report, err := a.reconcile.Run(c.Request.Context())
	switch {
	case errors.Is(err, jobs.ErrRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Reconciliation failed: " + err.Error(), "report": report})
	default:
		c.JSON(http.StatusOK, report)
	}
}
