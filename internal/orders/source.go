package orders

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ArowuTest/raffle-backend/internal/models"
)

// Source is the read-only Orders collaborator.
type Source interface {
	ListAll(ctx context.Context) ([]models.Order, error)
}

// HTTPSource lists orders from the storefront's REST API.
type HTTPSource struct {
	client *resty.Client
	log    *zap.Logger
}

// NewHTTPSource builds a client for baseURL. token is sent as a bearer
// token when non-empty.
func NewHTTPSource(baseURL, token string, log *zap.Logger) *HTTPSource {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &HTTPSource{client: c, log: log}
}

func (s *HTTPSource) ListAll(ctx context.Context) ([]models.Order, error) {
	resp, err := s.client.R().SetContext(ctx).Get("/orders")
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch orders: unexpected status %d", resp.StatusCode())
	}

	list, errs := DecodeList(resp.Body())
	for _, err := range errs {
		s.log.Warn("skipping malformed order", zap.Error(err))
	}
	if list == nil && len(errs) > 0 {
		return nil, errs[0]
	}
	return list, nil
}

// DocumentSource lists orders stored as JSON documents in the order_documents table.
type DocumentSource struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewDocumentSource(db *gorm.DB, log *zap.Logger) *DocumentSource {
	return &DocumentSource{db: db, log: log}
}

func (s *DocumentSource) ListAll(ctx context.Context) ([]models.Order, error) {
	var docs []models.OrderDocument
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list order documents: %w", err)
	}

	out := make([]models.Order, 0, len(docs))
	for _, d := range docs {
		o, err := Decode([]byte(d.Data))
		if err != nil {
			s.log.Warn("skipping malformed order", zap.String("document_id", d.ID), zap.Error(err))
			continue
		}
		out = append(out, o)
	}
	return out, nil
}
