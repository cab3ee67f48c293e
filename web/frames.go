// Package web is the transport surface: the gin router, the REST
// handlers, and the websocket session layer feeding the engine.
package web

import (
	"time"

	"chathub/domain/event"
	"chathub/repositories"
)

// Frame is one inbound websocket event. Unknown types are ignored.
type Frame struct {
	Type      string `json:"type"`
	ChannelID string `json:"channelId"`
	Text      string `json:"text"`
}

const (
	frameJoinChannel  = "joinChannel"
	frameLeaveChannel = "leaveChannel"
	frameSendMessage  = "sendMessage"
)

type senderView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type messageView struct {
	ID        string     `json:"id"`
	ChannelID string     `json:"channelId"`
	Sender    senderView `json:"sender"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"createdAt"`
}

// newMessageFrame is the outbound projection of a stored message,
// identical on the live stream and in history pages so clients can
// deduplicate by id.
type newMessageFrame struct {
	Type string `json:"type"`
	messageView
}

type presenceUserView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsOnline bool   `json:"isOnline"`
}

type presenceUpdateFrame struct {
	Type     string             `json:"type"`
	UserID   string             `json:"userId"`
	IsOnline bool               `json:"isOnline"`
	Users    []presenceUserView `json:"users"`
}

func toNewMessageFrame(evt event.MessageStored) newMessageFrame {
	return newMessageFrame{
		Type: "newMessage",
		messageView: messageView{
			ID:        evt.ID.String(),
			ChannelID: evt.ChannelID,
			Sender:    senderView{ID: evt.SenderID, Username: evt.SenderName},
			Text:      evt.Text,
			CreatedAt: evt.At,
		},
	}
}

func toPresenceUpdateFrame(evt event.PresenceChanged) presenceUpdateFrame {
	users := make([]presenceUserView, 0, len(evt.Roster))
	for _, entry := range evt.Roster {
		users = append(users, presenceUserView{
			ID:       entry.ID,
			Username: entry.Username,
			IsOnline: entry.IsOnline,
		})
	}
	return presenceUpdateFrame{
		Type:     "presenceUpdate",
		UserID:   evt.UserID,
		IsOnline: evt.IsOnline,
		Users:    users,
	}
}

func toMessageView(m repositories.StoredMessage) messageView {
	return messageView{
		ID:        m.ID.String(),
		ChannelID: m.ChannelID,
		Sender:    senderView{ID: m.SenderID, Username: m.SenderName},
		Text:      m.Text,
		CreatedAt: m.At,
	}
}
