package query

import (
	"context"
	"errors"
	"time"

	"AgriWaste-Marketplace/domain"
	"AgriWaste-Marketplace/entities"
	"AgriWaste-Marketplace/internal/utils/mailing"
	"AgriWaste-Marketplace/pkg/events"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type (
	QueryService interface {
		CreateQuery(ctx context.Context, req domain.CreateQueryRequest, userID, role string) (*domain.Query, error)
		GetMyQueries(ctx context.Context, userID string, page, limit int) ([]*domain.Query, int64, error)
		GetQueries(ctx context.Context, status string, page, limit int) ([]*domain.Query, int64, error)
		RespondQuery(ctx context.Context, id string, req domain.RespondQueryRequest, adminID, role string) (*domain.Query, error)
	}

	queryService struct {
		queryRepository QueryRepository
		mailer          mailing.Mailer
		publisher       events.Publisher
		log             *logrus.Logger
		now             func() time.Time
	}
)

func NewQueryService(
	queryRepository QueryRepository,
	mailer mailing.Mailer,
	publisher events.Publisher,
	logger *logrus.Logger,
) QueryService {
	return &queryService{
		queryRepository: queryRepository,
		mailer:          mailer,
		publisher:       publisher,
		log:             logger,
		now:             time.Now,
	}
}

func (s *queryService) CreateQuery(ctx context.Context, req domain.CreateQueryRequest, userID, role string) (*domain.Query, error) {
	requesterID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	if role != domain.RoleFarmer && role != domain.RoleBuyer {
		return nil, domain.ErrUserNotAllowed
	}

	query := &entities.Query{
		ID:            uuid.New(),
		RequesterID:   requesterID,
		RequesterRole: role,
		Subject:       req.Subject,
		Message:       req.Message,
		Status:        domain.QueryStatusPending,
		Version:       1,
	}
	if err := s.queryRepository.CreateQuery(ctx, query); err != nil {
		return nil, err
	}

	res := ToQuery(query)
	s.publisher.Publish(domain.NewEvent(domain.EventQueryCreated, res, userID).ToRoles(domain.RoleAdmin))
	return res, nil
}

func (s *queryService) GetMyQueries(ctx context.Context, userID string, page, limit int) ([]*domain.Query, int64, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, 0, domain.ErrParseUUID
	}
	return s.list(ctx, userID, "", page, limit)
}

func (s *queryService) GetQueries(ctx context.Context, status string, page, limit int) ([]*domain.Query, int64, error) {
	switch status {
	case "", "all", domain.QueryStatusPending, domain.QueryStatusApproved, domain.QueryStatusRejected:
	default:
		return nil, 0, domain.ErrInvalidQueryStatus
	}
	return s.list(ctx, "", status, page, limit)
}

func (s *queryService) list(ctx context.Context, requesterID, status string, page, limit int) ([]*domain.Query, int64, error) {
	queries, count, err := s.queryRepository.GetQueries(ctx, requesterID, status, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]*domain.Query, 0, len(queries))
	for _, q := range queries {
		result = append(result, ToQuery(q))
	}
	return result, count, nil
}

// RespondQuery resolves a pending query. A query is resolved once; later
// responses are refused.
func (s *queryService) RespondQuery(ctx context.Context, id string, req domain.RespondQueryRequest, adminID, role string) (*domain.Query, error) {
	if role != domain.RoleAdmin {
		return nil, domain.ErrUserNotAllowed
	}
	adminUUID, err := uuid.Parse(adminID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}
	if req.Status != domain.QueryStatusApproved && req.Status != domain.QueryStatusRejected {
		return nil, domain.ErrInvalidQueryStatus
	}

	query, err := s.queryRepository.GetQueryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrQueryNotFound
		}
		return nil, err
	}
	if query.Status != domain.QueryStatusPending {
		return nil, domain.ErrQueryAlreadyResolved
	}

	response := req.ResponseMessage
	if response == "" {
		response = domain.DefaultQueryResponse(req.Status)
	}
	now := s.now()

	if err := s.queryRepository.UpdateQuery(ctx, query, map[string]any{
		"status":           req.Status,
		"response_message": response,
		"responded_by":     adminUUID,
		"responded_at":     now,
	}); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, domain.ErrQueryAlreadyResolved
		}
		return nil, err
	}

	query.Status = req.Status
	query.ResponseMessage = response
	query.RespondedBy = &adminUUID
	query.RespondedAt = &now
	query.Version++

	res := ToQuery(query)
	s.publisher.Publish(domain.NewEvent(domain.EventQueryResponded, res, query.RequesterID.String()))

	if query.Requester != nil && query.Requester.Email != "" {
		subject, body := mailing.QueryResponseEmail(query.Requester.Name, query.Subject, req.Status, response)
		if err := s.mailer.SendMail(ctx, query.Requester.Email, subject, body); err != nil {
			s.log.WithError(err).WithField("query_id", id).Warn("failed to send query response email")
		}
	}

	s.log.WithFields(logrus.Fields{"query_id": id, "status": req.Status, "admin_id": adminID}).Info("query resolved")
	return res, nil
}

func ToQuery(q *entities.Query) *domain.Query {
	res := &domain.Query{
		ID:              q.ID.String(),
		RequesterID:     q.RequesterID.String(),
		RequesterRole:   q.RequesterRole,
		Subject:         q.Subject,
		Message:         q.Message,
		Status:          q.Status,
		ResponseMessage: q.ResponseMessage,
		RespondedAt:     q.RespondedAt,
		CreatedAt:       q.CreatedAt,
	}
	if q.RespondedBy != nil {
		res.RespondedBy = q.RespondedBy.String()
	}
	if q.Requester != nil {
		res.RequesterName = q.Requester.Name
		res.RequesterEmail = q.Requester.Email
	}
	return res
}
