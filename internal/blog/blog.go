// Package blog publishes articles.
package blog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fairyhunter13/storefront/internal/apperr"
	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/internal/store"
)

type Service struct {
	store store.Blogs
	now   func() time.Time
}

func NewService(st store.Blogs) *Service {
	return &Service{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// List returns articles newest first.
func (s *Service) List(ctx context.Context) ([]model.Blog, error) {
	out, err := s.store.ListBlogs(ctx)
	if err != nil {
		return nil, apperr.Persistence("list blogs", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (model.Blog, error) {
	b, err := s.store.GetBlog(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.Blog{}, apperr.NotFound("blog", id)
	}
	if err != nil {
		return model.Blog{}, apperr.Persistence("get blog", err)
	}
	return b, nil
}

// Create publishes an article. A zero date means now.
func (s *Service) Create(ctx context.Context, b model.Blog) (model.Blog, error) {
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		return model.Blog{}, apperr.Validation("title", "is required")
	}
	if strings.TrimSpace(b.Content) == "" {
		return model.Blog{}, apperr.Validation("content", "is required")
	}
	if b.Date.IsZero() {
		b.Date = s.now()
	}
	if err := s.store.CreateBlog(ctx, &b); err != nil {
		return model.Blog{}, apperr.Persistence("create blog", err)
	}
	return b, nil
}
