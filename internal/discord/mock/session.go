package mock

import (
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
)

// SessionHandler is a mock implementation of discord.SessionHandler
type SessionHandler struct {
	mock.Mock
}

// InteractionRespond implements discord.SessionHandler
func (s *SessionHandler) InteractionRespond(i *discordgo.Interaction, r *discordgo.InteractionResponse) error {
	args := s.Called(i, r)
	return args.Error(0)
}

// ChannelMessageSend implements discord.SessionHandler
func (s *SessionHandler) ChannelMessageSend(channelID string, content string) (*discordgo.Message, error) {
	args := s.Called(channelID, content)
	msg, _ := args.Get(0).(*discordgo.Message)
	return msg, args.Error(1)
}

// ChannelMessageSendComplex implements discord.SessionHandler
func (s *SessionHandler) ChannelMessageSendComplex(channelID string, m *discordgo.MessageSend) (*discordgo.Message, error) {
	args := s.Called(channelID, m)
	msg, _ := args.Get(0).(*discordgo.Message)
	return msg, args.Error(1)
}

// ChannelMessageEdit implements discord.SessionHandler
func (s *SessionHandler) ChannelMessageEdit(channelID string, messageID string, content string) (*discordgo.Message, error) {
	args := s.Called(channelID, messageID, content)
	msg, _ := args.Get(0).(*discordgo.Message)
	return msg, args.Error(1)
}

// ChannelMessageDelete implements discord.SessionHandler
func (s *SessionHandler) ChannelMessageDelete(channelID string, messageID string) error {
	args := s.Called(channelID, messageID)
	return args.Error(0)
}

// MessageReactionAdd implements discord.SessionHandler
func (s *SessionHandler) MessageReactionAdd(channelID, messageID, emoji string) error {
	args := s.Called(channelID, messageID, emoji)
	return args.Error(0)
}

// MessageReactionRemove implements discord.SessionHandler
func (s *SessionHandler) MessageReactionRemove(channelID, messageID, emoji, userID string) error {
	args := s.Called(channelID, messageID, emoji, userID)
	return args.Error(0)
}

// ApplicationCommandBulkOverwrite implements discord.SessionHandler
func (s *SessionHandler) ApplicationCommandBulkOverwrite(appID string, guildID string, cmds []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error) {
	args := s.Called(appID, guildID, cmds)
	out, _ := args.Get(0).([]*discordgo.ApplicationCommand)
	return out, args.Error(1)
}

// ApplicationCommandDelete implements discord.SessionHandler
func (s *SessionHandler) ApplicationCommandDelete(appID string, guildID string, cmdID string) error {
	args := s.Called(appID, guildID, cmdID)
	return args.Error(0)
}

// ApplicationCommands implements discord.SessionHandler
func (s *SessionHandler) ApplicationCommands(appID string, guildID string) ([]*discordgo.ApplicationCommand, error) {
	args := s.Called(appID, guildID)
	out, _ := args.Get(0).([]*discordgo.ApplicationCommand)
	return out, args.Error(1)
}

// Open implements discord.SessionHandler
func (s *SessionHandler) Open() error {
	args := s.Called()
	return args.Error(0)
}

// Close implements discord.SessionHandler
func (s *SessionHandler) Close() error {
	args := s.Called()
	return args.Error(0)
}

// AddHandler implements discord.SessionHandler
func (s *SessionHandler) AddHandler(handler interface{}) func() {
	args := s.Called(handler)
	return args.Get(0).(func())
}

// State implements discord.SessionHandler
func (s *SessionHandler) State() *discordgo.State {
	args := s.Called()
	return args.Get(0).(*discordgo.State)
}
