package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/repository"
	"github.com/novaacademy/aula-virtual/internal/validation"
)

type LiveService struct {
	liveRepo repository.LiveRepository
}

func NewLiveService(liveRepo repository.LiveRepository) *LiveService {
	return &LiveService{liveRepo: liveRepo}
}

func (s *LiveService) Create(ctx context.Context, input domain.LiveInput) (*domain.Live, error) {
	if err := validation.Struct(input); err != nil {
		return nil, invalid(err)
	}

	now := time.Now()
	live := &domain.Live{
		ID:        uuid.New(),
		Name:      *input.Name,
		VideoURL:  *input.VideoURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyLiveInput(live, input)

	if err := s.liveRepo.Create(ctx, live); err != nil {
		return nil, err
	}
	return live, nil
}

func (s *LiveService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Live, error) {
	return s.liveRepo.GetByID(ctx, id)
}

// List returns every video, or only the Zoom sessions when zoomOnly is set.
func (s *LiveService) List(ctx context.Context, zoomOnly bool) ([]*domain.Live, error) {
	lives, err := s.liveRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if !zoomOnly {
		return lives, nil
	}

	zoom := make([]*domain.Live, 0, len(lives))
	for _, l := range lives {
		if l.IsZoomLive {
			zoom = append(zoom, l)
		}
	}
	return zoom, nil
}

func (s *LiveService) Update(ctx context.Context, id uuid.UUID, input domain.LiveInput) (*domain.Live, error) {
	if err := validation.Partial(input); err != nil {
		return nil, invalid(err)
	}

	live, err := s.liveRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyLiveInput(live, input)
	live.UpdatedAt = time.Now()

	if err := s.liveRepo.Update(ctx, live); err != nil {
		return nil, err
	}
	return live, nil
}

func (s *LiveService) Delete(ctx context.Context, id uuid.UUID) (*domain.Live, error) {
	live, err := s.liveRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.liveRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return live, nil
}

func applyLiveInput(live *domain.Live, input domain.LiveInput) {
	if input.Name != nil {
		live.Name = *input.Name
	}
	if input.Thumbnail != nil {
		live.Thumbnail = *input.Thumbnail
	}
	if input.VideoURL != nil {
		live.VideoURL = *input.VideoURL
	}
	if input.IsZoomLive != nil {
		live.IsZoomLive = *input.IsZoomLive
	}
	if input.Description != nil {
		live.Description = *input.Description
	}
}
