package services

import (
	"chathub/domain"
	"chathub/runtime"
)

type IPresenceService interface {
	Roster() ([]domain.RosterEntry, error)
}

// PresenceService exposes the roster view to the HTTP surface.
type PresenceService struct {
	orchestrator *runtime.Orchestrator
}

func NewPresenceService(o *runtime.Orchestrator) *PresenceService {
	return &PresenceService{orchestrator: o}
}

func (s *PresenceService) Roster() ([]domain.RosterEntry, error) {
	return s.orchestrator.Roster()
}
