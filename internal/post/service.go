package post

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abduss/blogd/internal/asset"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxTitleLength = 200

type postStore interface {
	List(ctx context.Context) ([]Post, error)
	Get(ctx context.Context, id uuid.UUID) (Post, error)
	Create(ctx context.Context, authorID uuid.UUID, title, body string, image *string) (Post, error)
	Update(ctx context.Context, p Post) (Post, error)
	Delete(ctx context.Context, id uuid.UUID) (Post, error)
}

type imageLifecycle interface {
	Create(ctx context.Context, up asset.Upload) (asset.CreateOutcome, error)
	Delete(ctx context.Context, name string) (asset.DeleteOutcome, error)
	Retire(ctx context.Context, name string) *asset.DeleteOutcome
}

// Service implements post use cases and drives the image lifecycle for attached assets.
type Service struct {
	store  postStore
	images imageLifecycle
	log    *zap.Logger
}

// NewService constructs a post service.
func NewService(store postStore, images imageLifecycle, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, images: images, log: log}
}

// List returns every post.
func (s *Service) List(ctx context.Context) ([]Post, error) {
	return s.store.List(ctx)
}

// Get returns one post.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Post, error) {
	return s.store.Get(ctx, id)
}

// Create stores the optional upload and then the post. A degraded or discarded image never
// fails the create; only upload naming errors and storage failures of the original do.
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, input CreateInput, upload *asset.Upload) (WriteResult, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		return WriteResult{}, err
	}

	var result WriteResult
	if upload != nil {
		outcome, err := s.images.Create(ctx, *upload)
		if err != nil {
			return WriteResult{}, err
		}
		result.Image = &outcome
	}

	imageName := assetName(result.Image)
	p, err := s.store.Create(ctx, authorID, title, input.Body, imageName)
	if err != nil {
		s.logOrphan(imageName, err)
		return WriteResult{}, fmt.Errorf("create post: %w", err)
	}
	result.Post = p
	return result, nil
}

// Update changes the text of a post and, when an upload is given, replaces its image. The
// previous asset is retired only after the post references the new one; retirement failures
// are logged and do not fail the update.
func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, input UpdateInput, upload *asset.Upload) (WriteResult, error) {
	p, err := s.authorize(ctx, actorID, id)
	if err != nil {
		return WriteResult{}, err
	}

	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return WriteResult{}, err
		}
		p.Title = title
	}
	if input.Body != nil {
		p.Body = *input.Body
	}

	var result WriteResult
	if upload != nil {
		outcome, err := s.images.Create(ctx, *upload)
		if err != nil {
			return WriteResult{}, err
		}
		result.Image = &outcome
	}

	previous := p.Image
	replacement := assetName(result.Image)
	if replacement != nil {
		p.Image = replacement
	}

	updated, err := s.store.Update(ctx, p)
	if err != nil {
		s.logOrphan(replacement, err)
		return WriteResult{}, fmt.Errorf("update post: %w", err)
	}
	result.Post = updated

	if replacement != nil && previous != nil && *previous != *replacement {
		s.images.Retire(ctx, *previous)
	}
	return result, nil
}

// Delete removes the post and then retires its image.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) (DeleteResult, error) {
	if _, err := s.authorize(ctx, actorID, id); err != nil {
		return DeleteResult{}, err
	}

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}

	result := DeleteResult{Post: deleted}
	if deleted.Image != nil {
		result.Image = s.images.Retire(ctx, *deleted.Image)
	}
	return result, nil
}

// DeleteImage removes every variant of the post's image. The post keeps its reference when any
// variant could not be removed so the delete can be retried.
func (s *Service) DeleteImage(ctx context.Context, actorID, id uuid.UUID) (asset.DeleteOutcome, error) {
	p, err := s.authorize(ctx, actorID, id)
	if err != nil {
		return asset.DeleteOutcome{}, err
	}
	if p.Image == nil {
		return asset.DeleteOutcome{}, ErrNoImage
	}

	outcome, err := s.images.Delete(ctx, *p.Image)
	if err != nil {
		return asset.DeleteOutcome{}, err
	}
	if outcome.Outcome == asset.OutcomeFailure {
		return outcome, nil
	}

	p.Image = nil
	if _, err := s.store.Update(ctx, p); err != nil {
		return asset.DeleteOutcome{}, fmt.Errorf("detach image: %w", err)
	}
	return outcome, nil
}

func (s *Service) authorize(ctx context.Context, actorID, id uuid.UUID) (Post, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if p.AuthorID != actorID {
		return Post{}, ErrForbidden
	}
	return p, nil
}

func (s *Service) logOrphan(imageName *string, err error) {
	if imageName == nil {
		return
	}
	s.log.Error("post write failed after image was stored",
		zap.String("asset", *imageName),
		zap.Error(err),
	)
}

func assetName(outcome *asset.CreateOutcome) *string {
	if outcome == nil {
		return nil
	}
	return outcome.AssetName()
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidPost)
	}
	if len(title) > maxTitleLength {
		return "", fmt.Errorf("%w: title exceeds %d characters", ErrInvalidPost, maxTitleLength)
	}
	return title, nil
}

// IsClientError reports whether err stems from the request rather than the server.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPost) ||
		asset.IsNameError(err) ||
		errors.Is(err, asset.ErrInvalidAssetName) ||
		errors.Is(err, asset.ErrEmptyUpload)
}
