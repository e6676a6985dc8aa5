package chat

import (
	"context"
	"errors"
	"time"

	"AgriWaste-Marketplace/entities"

	"gorm.io/gorm"
)

type (
	ChatRepository interface {
		CreateConversation(ctx context.Context, conversation *entities.Conversation) error
		GetConversationByID(ctx context.Context, id string) (*entities.Conversation, error)
		GetConversationByListingAndBuyer(ctx context.Context, listingID, buyerID string) (*entities.Conversation, error)
		GetUserConversations(ctx context.Context, userID string, page, limit int) ([]*entities.Conversation, int64, error)

		AddMessage(ctx context.Context, message *entities.Message) error
		GetMessages(ctx context.Context, conversationID string, page, limit int) ([]*entities.Message, int64, error)
		MarkMessagesAsRead(ctx context.Context, conversationID, userID string) error
		GetUnreadMessageCount(ctx context.Context, conversationID, userID string) (int, error)
	}

	chatRepository struct {
		db *gorm.DB
	}
)

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{
		db: db,
	}
}

func (r *chatRepository) CreateConversation(ctx context.Context, conversation *entities.Conversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

func (r *chatRepository) GetConversationByID(ctx context.Context, id string) (*entities.Conversation, error) {
	var conversation entities.Conversation
	if err := r.db.WithContext(ctx).
		Preload("Listing").
		Preload("Buyer").
		Preload("Farmer").
		Where("id = ?", id).
		First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

// GetConversationByListingAndBuyer returns nil, nil when the buyer has no
// conversation on the listing yet.
func (r *chatRepository) GetConversationByListingAndBuyer(ctx context.Context, listingID, buyerID string) (*entities.Conversation, error) {
	var conversation entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("listing_id = ? AND buyer_id = ?", listingID, buyerID).
		First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *chatRepository) GetUserConversations(ctx context.Context, userID string, page, limit int) ([]*entities.Conversation, int64, error) {
	var conversations []*entities.Conversation
	var count int64
	offset := (page - 1) * limit

	query := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("buyer_id = ? OR farmer_id = ?", userID, userID)

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Listing").
		Preload("Buyer").
		Preload("Farmer").
		Order("last_message_time DESC").
		Offset(offset).
		Limit(limit).
		Find(&conversations).Error; err != nil {
		return nil, 0, err
	}

	return conversations, count, nil
}

// AddMessage stores the message and moves the conversation to the top of
// both participants' lists.
func (r *chatRepository) AddMessage(ctx context.Context, message *entities.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&entities.Conversation{}).
			Where("id = ?", message.ConversationID).
			Update("last_message_time", time.Now()).Error
	})
}

func (r *chatRepository) GetMessages(ctx context.Context, conversationID string, page, limit int) ([]*entities.Message, int64, error) {
	var messages []*entities.Message
	var count int64
	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, 0, err
	}

	return messages, count, nil
}

func (r *chatRepository) MarkMessagesAsRead(ctx context.Context, conversationID, userID string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversationID, userID, false).
		Update("is_read", true).Error
}

func (r *chatRepository) GetUnreadMessageCount(ctx context.Context, conversationID, userID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversationID, userID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
