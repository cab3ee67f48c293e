package domain

type Command interface {
	Channel() string
}

// PostMessageCommand carries a message sending intent from a session to
// the ingestion pipeline. SenderID/SenderName come from the session's
// bound identity, never from the client payload.
type PostMessageCommand struct {
	ChannelID  string
	SenderID   string
	SenderName string
	Text       string
}

func (p PostMessageCommand) Channel() string {
	return p.ChannelID
}

// HistoryQuery asks for the page-th most recent block of a channel's
// history. Page numbering starts at 1.
type HistoryQuery struct {
	ChannelID string
	Page      int
	PageSize  int
}

func (h HistoryQuery) Channel() string {
	return h.ChannelID
}
