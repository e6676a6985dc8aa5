package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessStartConversation = "conversation started successfully"
	MessageSuccessGetConversations  = "conversations retrieved successfully"
	MessageSuccessGetMessages       = "messages retrieved successfully"
	MessageSuccessSendMessage       = "message sent successfully"
	MessageSuccessMarkAsRead        = "messages marked as read"

	MessageFailedStartConversation = "failed to start conversation"
	MessageFailedGetConversations  = "failed to retrieve conversations"
	MessageFailedGetMessages       = "failed to retrieve messages"
	MessageFailedSendMessage       = "failed to send message"
	MessageFailedMarkAsRead        = "failed to mark messages as read"

	ErrConversationNotFound = errors.New("conversation not found")
	ErrChatSelf             = errors.New("cannot chat about your own waste listing")
	ErrEmptyMessage         = errors.New("message content is empty")
)

type (
	StartConversationRequest struct {
		ListingID string `json:"listing_id" validate:"required,uuid"`
		Message   string `json:"message" validate:"omitempty,max=2000"`
	}

	SendMessageRequest struct {
		Content string `json:"content" validate:"required,max=2000"`
	}

	Conversation struct {
		ID              string    `json:"id"`
		ListingID       string    `json:"listing_id"`
		WasteType       string    `json:"waste_type,omitempty"`
		BuyerID         string    `json:"buyer_id"`
		BuyerName       string    `json:"buyer_name,omitempty"`
		FarmerID        string    `json:"farmer_id"`
		FarmerName      string    `json:"farmer_name,omitempty"`
		LastMessageTime time.Time `json:"last_message_time"`
		UnreadCount     int       `json:"unread_count"`
	}

	Message struct {
		ID             string    `json:"id"`
		ConversationID string    `json:"conversation_id"`
		SenderID       string    `json:"sender_id"`
		SenderName     string    `json:"sender_name,omitempty"`
		Content        string    `json:"content"`
		IsRead         bool      `json:"is_read"`
		CreatedAt      time.Time `json:"created_at"`
	}
)
