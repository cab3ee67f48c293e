package web

import (
	"net/http"

	"chathub/domain"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type rosterEntryView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsOnline bool   `json:"isOnline"`
}

// GetRoster returns every registered user with their live online flag,
// the same directory view carried on presence update frames plus email.
func (h *Handlers) GetRoster(c *gin.Context) {
	roster, err := h.presence.Roster()
	if err != nil {
		h.log.Error("Roster build failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": lo.Map(roster, func(entry domain.RosterEntry, _ int) rosterEntryView {
		return rosterEntryView{ID: entry.ID, Username: entry.Username, Email: entry.Email, IsOnline: entry.IsOnline}
	})})
}
