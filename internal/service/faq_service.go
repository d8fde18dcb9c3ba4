package service

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

type FAQService interface {
	List(ctx context.Context) ([]*domain.FAQ, error)
	Get(ctx context.Context, id int64) (*domain.FAQ, error)
}

type faqService struct {
	repo repository.FAQRepository
}

func NewFAQService(repo repository.FAQRepository) FAQService {
	return &faqService{repo: repo}
}

func (s *faqService) List(ctx context.Context) ([]*domain.FAQ, error) {
	return s.repo.List(ctx)
}

func (s *faqService) Get(ctx context.Context, id int64) (*domain.FAQ, error) {
	return s.repo.FindByID(ctx, id)
}
