package web

import (
	"net/http"
	"strconv"

	"chathub/domain"
	"chathub/repositories"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

const defaultHistoryLimit = 20

// GetMessages serves one chronological page of channel history, newest
// page first. Clients walking pages while live messages arrive should
// deduplicate by message id, since both surfaces share the same shape.
func (h *Handlers) GetMessages(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	if err != nil || limit < 1 {
		limit = defaultHistoryLimit
	}

	messages, total, hasMore, err := h.chatService.History(domain.HistoryQuery{
		ChannelID: c.Param("channelId"),
		Page:      page,
		PageSize:  limit,
	})
	if err != nil {
		h.log.Error("History fetch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": lo.Map(messages, func(m repositories.StoredMessage, _ int) messageView {
			return toMessageView(m)
		}),
		"page":    page,
		"limit":   limit,
		"total":   total,
		"hasMore": hasMore,
	})
}
