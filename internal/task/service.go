package task

import (
	"context"

	"github.com/google/uuid"
)

// Service validates task input and delegates to the owner-scoped repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListResult is a page of tasks with its pagination block.
type ListResult struct {
	Tasks      []*Task
	Pagination Pagination
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, q ListQuery) (*ListResult, error) {
	page, err := s.repo.List(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Tasks:      page.Tasks,
		Pagination: newPagination(q, page.Total),
	}, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Task, error) {
	return s.repo.Get(ctx, ownerID, id)
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*Task, error) {
	t, err := in.toTask()
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, ownerID, t)
}

func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, in UpdateInput) (*Task, error) {
	p, err := in.toPatch()
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, ownerID, id, p)
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}

func (s *Service) Stats(ctx context.Context, ownerID uuid.UUID) (*Stats, error) {
	return s.repo.Stats(ctx, ownerID)
}
