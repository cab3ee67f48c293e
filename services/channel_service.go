package services

import (
	"strings"

	"chathub/domain"
	"chathub/errors"
	"chathub/repositories"
)

type IChannelService interface {
	Create(name, createdBy string) (domain.Channel, error)
	List() ([]domain.Channel, error)
	Join(channelID, userID string) (bool, error)
	Leave(channelID, userID string) error
	Members(channelID string) ([]domain.Member, error)
	Rename(channelID, name string) (domain.Channel, error)
	Delete(channelID string) error
}

// ChannelService covers channel administration. Administrative
// membership managed here is independent from live room subscriptions:
// a connection can subscribe to any room regardless of these records.
type ChannelService struct {
	channels repositories.IChannelRepository
}

func NewChannelService(channels repositories.IChannelRepository) *ChannelService {
	return &ChannelService{channels: channels}
}

func (s *ChannelService) Create(name, createdBy string) (domain.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Channel{}, errors.ErrChannelNameEmpty
	}
	return s.channels.CreateChannel(name, createdBy)
}

func (s *ChannelService) List() ([]domain.Channel, error) {
	return s.channels.ListChannels()
}

// Join records membership; returns false when already a member.
func (s *ChannelService) Join(channelID, userID string) (bool, error) {
	return s.channels.AddMember(channelID, userID)
}

func (s *ChannelService) Leave(channelID, userID string) error {
	return s.channels.RemoveMember(channelID, userID)
}

func (s *ChannelService) Members(channelID string) ([]domain.Member, error) {
	return s.channels.ListMembers(channelID)
}

func (s *ChannelService) Rename(channelID, name string) (domain.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Channel{}, errors.ErrChannelNameEmpty
	}
	return s.channels.RenameChannel(channelID, name)
}

func (s *ChannelService) Delete(channelID string) error {
	return s.channels.DeleteChannel(channelID)
}
