package web

import (
	goerrors "errors"
	"net/http"
	"time"

	"chathub/auth"
	"chathub/domain"
	"chathub/errors"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type createChannelRequest struct {
	Name string `json:"name" binding:"required"`
}

type channelMembershipRequest struct {
	ChannelID string `json:"channelId" binding:"required"`
}

type renameChannelRequest struct {
	Name string `json:"name" binding:"required"`
}

type channelView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type memberView struct {
	ChannelID string    `json:"channelId"`
	UserID    string    `json:"userId"`
	JoinedAt  time.Time `json:"joinedAt"`
}

func toChannelView(c domain.Channel) channelView {
	return channelView{ID: c.ID, Name: c.Name, CreatedBy: c.CreatedBy, CreatedAt: c.CreatedAt}
}

func toMemberView(m domain.Member) memberView {
	return memberView{ChannelID: m.ChannelID, UserID: m.UserID, JoinedAt: m.JoinedAt}
}

func (h *Handlers) CreateChannel(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "channel name is required"})
		return
	}

	channel, err := h.channelService.Create(req.Name, c.GetString(auth.UserIDKey))
	if err != nil {
		switch {
		case goerrors.Is(err, errors.ErrChannelNameEmpty):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		case goerrors.Is(err, errors.ErrChannelExists):
			c.JSON(http.StatusConflict, gin.H{"message": "channel name already taken"})
		default:
			h.log.Error("Channel creation failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"channel": toChannelView(channel)})
}

func (h *Handlers) ListChannels(c *gin.Context) {
	channels, err := h.channelService.List()
	if err != nil {
		h.log.Error("Channel listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": lo.Map(channels, func(channel domain.Channel, _ int) channelView {
		return toChannelView(channel)
	})})
}

func (h *Handlers) JoinChannel(c *gin.Context) {
	var req channelMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "channelId is required"})
		return
	}

	added, err := h.channelService.Join(req.ChannelID, c.GetString(auth.UserIDKey))
	if err != nil {
		if goerrors.Is(err, errors.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "channel not found"})
			return
		}
		h.log.Error("Channel join failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"joined": added})
}

func (h *Handlers) LeaveChannel(c *gin.Context) {
	var req channelMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "channelId is required"})
		return
	}

	if err := h.channelService.Leave(req.ChannelID, c.GetString(auth.UserIDKey)); err != nil {
		h.log.Error("Channel leave failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"left": true})
}

func (h *Handlers) ChannelMembers(c *gin.Context) {
	members, err := h.channelService.Members(c.Param("channelId"))
	if err != nil {
		if goerrors.Is(err, errors.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "channel not found"})
			return
		}
		h.log.Error("Member listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": lo.Map(members, func(member domain.Member, _ int) memberView {
		return toMemberView(member)
	})})
}

func (h *Handlers) RenameChannel(c *gin.Context) {
	var req renameChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name is required"})
		return
	}

	channel, err := h.channelService.Rename(c.Param("channelId"), req.Name)
	if err != nil {
		switch {
		case goerrors.Is(err, errors.ErrChannelNameEmpty):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		case goerrors.Is(err, errors.ErrChannelNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "channel not found"})
		case goerrors.Is(err, errors.ErrChannelExists):
			c.JSON(http.StatusConflict, gin.H{"message": "channel name already taken"})
		default:
			h.log.Error("Channel rename failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"channel": toChannelView(channel)})
}

// DeleteChannel removes the channel, its membership records, and its
// message history in one sweep.
func (h *Handlers) DeleteChannel(c *gin.Context) {
	if err := h.channelService.Delete(c.Param("channelId")); err != nil {
		if goerrors.Is(err, errors.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "channel not found"})
			return
		}
		h.log.Error("Channel deletion failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
