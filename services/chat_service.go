package services

import (
	"chathub/contract"
	"chathub/domain"
	"chathub/repositories"
	"chathub/runtime"
)

type IChatService interface {
	ConnectSession(connID string, identity domain.Identity, sink contract.EventSink)
	DisconnectSession(connID, userID string)
	JoinChannel(channelID, connID string)
	LeaveChannel(channelID, connID string)
	PostMessage(cmd domain.PostMessageCommand)
	History(q domain.HistoryQuery) ([]repositories.StoredMessage, int, bool, error)
}

// ChatService is the session-facing surface of the engine; the
// orchestrator owns all semantics.
type ChatService struct {
	orchestrator *runtime.Orchestrator
}

func NewChatService(o *runtime.Orchestrator) *ChatService {
	return &ChatService{orchestrator: o}
}

func (s *ChatService) ConnectSession(connID string, identity domain.Identity, sink contract.EventSink) {
	s.orchestrator.ConnectSession(connID, identity, sink)
}

func (s *ChatService) DisconnectSession(connID, userID string) {
	s.orchestrator.DisconnectSession(connID, userID)
}

func (s *ChatService) JoinChannel(channelID, connID string) {
	s.orchestrator.JoinChannel(channelID, connID)
}

func (s *ChatService) LeaveChannel(channelID, connID string) {
	s.orchestrator.LeaveChannel(channelID, connID)
}

// PostMessage dispatches a sending intent into the ingestion pipeline.
// The sender receives its own message through the fan-out stream like
// every other subscriber; order and timestamps have a single source.
func (s *ChatService) PostMessage(cmd domain.PostMessageCommand) {
	s.orchestrator.Dispatch(cmd)
}

func (s *ChatService) History(q domain.HistoryQuery) ([]repositories.StoredMessage, int, bool, error) {
	return s.orchestrator.History(q)
}
