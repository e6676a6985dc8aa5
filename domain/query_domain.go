package domain

import (
	"errors"
	"time"
)

const (
	QueryStatusPending  = "pending"
	QueryStatusApproved = "approved"
	QueryStatusRejected = "rejected"
)

var (
	MessageSuccessCreateQuery  = "query submitted successfully"
	MessageSuccessGetQueries   = "queries retrieved successfully"
	MessageSuccessRespondQuery = "query response saved successfully"

	MessageFailedCreateQuery  = "failed to submit query"
	MessageFailedGetQueries   = "failed to retrieve queries"
	MessageFailedRespondQuery = "failed to respond to query"

	ErrQueryNotFound        = errors.New("query not found")
	ErrQueryAlreadyResolved = errors.New("query already resolved")
	ErrInvalidQueryStatus   = errors.New("invalid query status")
)

type (
	CreateQueryRequest struct {
		Subject string `json:"subject" validate:"required,max=120"`
		Message string `json:"message" validate:"required,max=2000"`
	}

	RespondQueryRequest struct {
		Status          string `json:"status" validate:"required,oneof=approved rejected"`
		ResponseMessage string `json:"response_message" validate:"max=2000"`
	}

	Query struct {
		ID              string     `json:"id"`
		RequesterID     string     `json:"requester_id"`
		RequesterName   string     `json:"requester_name,omitempty"`
		RequesterEmail  string     `json:"requester_email,omitempty"`
		RequesterRole   string     `json:"requester_role"`
		Subject         string     `json:"subject"`
		Message         string     `json:"message"`
		Status          string     `json:"status"`
		ResponseMessage string     `json:"response_message,omitempty"`
		RespondedBy     string     `json:"responded_by,omitempty"`
		RespondedAt     *time.Time `json:"responded_at,omitempty"`
		CreatedAt       time.Time  `json:"created_at"`
	}
)

// DefaultQueryResponse is the message stored when an admin resolves a
// query without writing one.
func DefaultQueryResponse(status string) string {
	if status == QueryStatusApproved {
		return "Your query has been approved. We will contact you soon."
	}
	return "Your query has been rejected. Please contact support for more information."
}
