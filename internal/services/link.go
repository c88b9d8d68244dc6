package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/qoolink/server/internal/store"
	"github.com/qoolink/server/types"
)

// LinkRepository defines persistence operations for links.
type LinkRepository interface {
	Create(ctx context.Context, link types.Link) (types.Link, error)
	ListByOwner(ctx context.Context, userID string) ([]types.Link, error)
	FindURLBySlug(ctx context.Context, slug string) (string, error)
}

// LinkService implements link creation, listing, and slug resolution.
type LinkService struct {
	repo LinkRepository
}

func NewLinkService(repo LinkRepository) *LinkService {
	return &LinkService{repo: repo}
}

// CreateLinkInput carries the link-creation form fields.
type CreateLinkInput struct {
	Slug    string
	URL     string
	Title   string
	Publish bool
	UserID  string
}

// Create validates the input and inserts the link. The slug unique
// constraint decides races: of two concurrent creators for the same slug,
// exactly one succeeds and the other gets ErrSlugTaken.
func (s *LinkService) Create(ctx context.Context, input CreateLinkInput) (types.Link, error) {
	input.Slug = strings.TrimSpace(input.Slug)
	input.Title = strings.TrimSpace(input.Title)
	input.URL = strings.TrimSpace(input.URL)

	verr := newValidationError()
	if input.Title == "" {
		verr.add("title", "Please provide a title")
	}
	if input.URL == "" {
		verr.add("url", "Please provide a URL")
	} else if !isHTTPURL(input.URL) {
		verr.add("url", "Please provide a valid URL")
	}
	if input.Slug == "" {
		verr.add("slug", "Please provide a slug")
	}
	if err := verr.orNil(); err != nil {
		return types.Link{}, err
	}

	link, err := s.repo.Create(ctx, types.Link{
		Slug:    input.Slug,
		URL:     input.URL,
		Title:   input.Title,
		Publish: input.Publish,
		UserID:  input.UserID,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.Link{}, ErrSlugTaken
		}
		return types.Link{}, fmt.Errorf("create link: %w", err)
	}
	return link, nil
}

// ListByOwner returns the user's links, newest first.
func (s *LinkService) ListByOwner(ctx context.Context, userID string) ([]types.Link, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// Resolve maps a slug to its destination URL. An empty or malformed slug
// simply misses; the only error shapes are store.ErrNotFound and storage
// failures.
func (s *LinkService) Resolve(ctx context.Context, slug string) (string, error) {
	return s.repo.FindURLBySlug(ctx, slug)
}

func isHTTPURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
