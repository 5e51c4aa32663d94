// Package feed implements the post submission pipeline and feed reads.
package feed

import (
	"context"

	"github.com/starford/mannaz/internal/mediastore"
	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/poststore"
)

// Fetcher retrieves avatar bytes for a non-empty URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// PublishedFunc is called after a submission has been finalized.
type PublishedFunc func(post models.Post)

// Item is one visible feed entry with resolved media paths.
// Empty paths mean the post carries no avatar or image.
type Item struct {
	Author     string `json:"author"`
	AvatarPath string `json:"avatar_path"`
	Date       string `json:"date"`
	ImagePath  string `json:"image_path"`
	Text       string `json:"text"`
}

// Service coordinates validation, avatar fetching, persistence, and
// media writes for one submission at a time. It holds no mutable state,
// so concurrent submissions are fully independent.
type Service struct {
	store       poststore.Store
	media       mediastore.Provider
	fetcher     Fetcher
	onPublished PublishedFunc // may be nil
}

// NewService creates a feed service. onPublished, if non-nil, fires
// after each successful submission.
func NewService(store poststore.Store, media mediastore.Provider, fetcher Fetcher, onPublished PublishedFunc) *Service {
	return &Service{store: store, media: media, fetcher: fetcher, onPublished: onPublished}
}

// Submit runs the full pipeline for one submission:
//
//	validate → fetch avatar (conditional) → create invisible row →
//	write media files → finalize visible.
//
// The first failure stops the pipeline. A failure after row creation
// leaves the row permanently invisible; no rollback is attempted.
// Submit returns the new post id only after the row is visible.
func (s *Service) Submit(ctx context.Context, sub models.Submission) (int64, error) {
	if err := Validate(sub); err != nil {
		return 0, err
	}

	var avatarData []byte
	hasAvatar := sub.AvatarURL != ""
	if hasAvatar {
		data, err := s.fetcher.Fetch(ctx, sub.AvatarURL)
		if err != nil {
			return 0, err
		}
		avatarData = data
	}

	id, err := s.store.CreateInvisible(sub.Author, sub.Date, sub.Text)
	if err != nil {
		return 0, err
	}

	if hasAvatar {
		if err := s.media.Write(mediastore.KindAvatar, id, avatarData); err != nil {
			return 0, err
		}
	}
	hasImage := len(sub.Image) > 0
	if hasImage {
		if err := s.media.Write(mediastore.KindImage, id, sub.Image); err != nil {
			return 0, err
		}
	}

	if err := s.store.Finalize(id, hasImage, hasAvatar); err != nil {
		return 0, err
	}

	if s.onPublished != nil {
		s.onPublished(models.Post{
			ID:        id,
			Author:    sub.Author,
			Date:      sub.Date,
			HasImage:  hasImage,
			HasAvatar: hasAvatar,
			Content:   sub.Text,
			Visible:   true,
		})
	}
	return id, nil
}

// List returns the visible feed, most recent date first.
func (s *Service) List(_ context.Context) ([]Item, error) {
	posts, err := s.store.ListVisible()
	if err != nil {
		return nil, err
	}
	items := make([]Item, len(posts))
	for i, p := range posts {
		item := Item{
			Author: p.Author,
			Date:   p.Date,
			Text:   p.Content,
		}
		if p.HasAvatar {
			item.AvatarPath = s.media.URLPath(mediastore.KindAvatar, p.ID)
		}
		if p.HasImage {
			item.ImagePath = s.media.URLPath(mediastore.KindImage, p.ID)
		}
		items[i] = item
	}
	return items, nil
}
