package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/pkg/events"
	"AgriWaste-Marketplace/pkg/listing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type (
	ChatService interface {
		StartConversation(ctx context.Context, req domain.StartConversationRequest, buyerID string) (*domain.Conversation, error)
		GetConversations(ctx context.Context, userID string, page, limit int) ([]*domain.Conversation, int64, error)
		GetMessages(ctx context.Context, conversationID, userID string, page, limit int) ([]*domain.Message, int64, error)
		SendMessage(ctx context.Context, conversationID string, req domain.SendMessageRequest, senderID string) (*domain.Message, error)
		MarkAsRead(ctx context.Context, conversationID, userID string) error
	}

	chatService struct {
		chatRepository    ChatRepository
		listingRepository listing.ListingRepository
		publisher         events.Publisher
		log               *logrus.Logger
	}
)

func NewChatService(
	chatRepository ChatRepository,
	listingRepository listing.ListingRepository,
	publisher events.Publisher,
	logger *logrus.Logger,
) ChatService {
	return &chatService{
		chatRepository:    chatRepository,
		listingRepository: listingRepository,
		publisher:         publisher,
		log:               logger,
	}
}

// StartConversation opens the buyer's conversation on a listing, reusing
// the existing one if there is one. An optional first message is sent.
func (s *chatService) StartConversation(ctx context.Context, req domain.StartConversationRequest, buyerID string) (*domain.Conversation, error) {
	buyerUUID, err := uuid.Parse(buyerID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	l, err := s.listingRepository.GetListingByID(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	if l.FarmerID == buyerUUID {
		return nil, domain.ErrChatSelf
	}

	conversation, err := s.chatRepository.GetConversationByListingAndBuyer(ctx, req.ListingID, buyerID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		conversation = &entities.Conversation{
			ID:              uuid.New(),
			ListingID:       l.ID,
			BuyerID:         buyerUUID,
			FarmerID:        l.FarmerID,
			LastMessageTime: time.Now(),
		}
		if err := s.chatRepository.CreateConversation(ctx, conversation); err != nil {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{"conversation_id": conversation.ID.String(), "listing_id": req.ListingID}).Info("conversation started")
	}
	conversation.Listing = l

	if msg := strings.TrimSpace(req.Message); msg != "" {
		if _, err := s.send(ctx, conversation, buyerUUID, msg); err != nil {
			return nil, err
		}
	}

	return ToConversation(conversation, 0), nil
}

func (s *chatService) GetConversations(ctx context.Context, userID string, page, limit int) ([]*domain.Conversation, int64, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, 0, domain.ErrParseUUID
	}

	conversations, count, err := s.chatRepository.GetUserConversations(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]*domain.Conversation, 0, len(conversations))
	for _, c := range conversations {
		unread, err := s.chatRepository.GetUnreadMessageCount(ctx, c.ID.String(), userID)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, ToConversation(c, unread))
	}
	return result, count, nil
}

// GetMessages returns a page of the conversation and marks the other
// party's messages as read.
func (s *chatService) GetMessages(ctx context.Context, conversationID, userID string, page, limit int) ([]*domain.Message, int64, error) {
	if _, err := s.participantConversation(ctx, conversationID, userID); err != nil {
		return nil, 0, err
	}

	messages, count, err := s.chatRepository.GetMessages(ctx, conversationID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	if err := s.chatRepository.MarkMessagesAsRead(ctx, conversationID, userID); err != nil {
		s.log.WithError(err).WithField("conversation_id", conversationID).Warn("failed to mark messages as read")
	}

	result := make([]*domain.Message, 0, len(messages))
	for _, m := range messages {
		result = append(result, ToMessage(m))
	}
	return result, count, nil
}

func (s *chatService) SendMessage(ctx context.Context, conversationID string, req domain.SendMessageRequest, senderID string) (*domain.Message, error) {
	conversation, err := s.participantConversation(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, domain.ErrEmptyMessage
	}
	return s.send(ctx, conversation, uuid.MustParse(senderID), content)
}

func (s *chatService) MarkAsRead(ctx context.Context, conversationID, userID string) error {
	if _, err := s.participantConversation(ctx, conversationID, userID); err != nil {
		return err
	}
	return s.chatRepository.MarkMessagesAsRead(ctx, conversationID, userID)
}

func (s *chatService) send(ctx context.Context, conversation *entities.Conversation, senderID uuid.UUID, content string) (*domain.Message, error) {
	message := &entities.Message{
		ID:             uuid.New(),
		ConversationID: conversation.ID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := s.chatRepository.AddMessage(ctx, message); err != nil {
		return nil, err
	}

	recipient := conversation.FarmerID
	if senderID == conversation.FarmerID {
		recipient = conversation.BuyerID
	}

	res := ToMessage(message)
	s.publisher.Publish(domain.NewEvent(domain.EventMessageReceived, res, recipient.String()))
	return res, nil
}

func (s *chatService) participantConversation(ctx context.Context, conversationID, userID string) (*entities.Conversation, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	conversation, err := s.chatRepository.GetConversationByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	if conversation.BuyerID != userUUID && conversation.FarmerID != userUUID {
		return nil, domain.ErrUserNotAllowed
	}
	return conversation, nil
}

func ToConversation(c *entities.Conversation, unread int) *domain.Conversation {
	res := &domain.Conversation{
		ID:              c.ID.String(),
		ListingID:       c.ListingID.String(),
		BuyerID:         c.BuyerID.String(),
		FarmerID:        c.FarmerID.String(),
		LastMessageTime: c.LastMessageTime,
		UnreadCount:     unread,
	}
	if c.Listing != nil {
		res.WasteType = c.Listing.WasteType
	}
	if c.Buyer != nil {
		res.BuyerName = c.Buyer.Name
	}
	if c.Farmer != nil {
		res.FarmerName = c.Farmer.Name
	}
	return res
}

func ToMessage(m *entities.Message) *domain.Message {
	res := &domain.Message{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		SenderID:       m.SenderID.String(),
		Content:        m.Content,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
	}
	if m.Sender != nil {
		res.SenderName = m.Sender.Name
	}
	return res
}
