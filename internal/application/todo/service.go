package todo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/taskbox-api/internal/domain"
	"github.com/taskbox-api/internal/pkg/id"
	"github.com/taskbox-api/internal/pkg/validate"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldTodoImage  = "todo_image"
	fieldTodoName   = "todo_name"
	fieldTodoDesc   = "todo_desc"
	fieldTodoStatus = "todo_status"
)

// presignTTL bounds how long an uploaded image URL stays fetchable.
const presignTTL = 15 * time.Minute

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateTodoRequest) (*domain.Todo, error)
	List(ctx context.Context) ([]domain.Todo, error)
	Update(ctx context.Context, todoID string, req domain.UpdateTodoRequest) (*domain.Todo, error)
	Delete(ctx context.Context, todoID string) error
	// UploadImage stores an image and returns its object key and a
	// time-limited URL for immediate display.
	UploadImage(ctx context.Context, userID, filename, contentType string, r io.Reader) (key, url string, err error)
}

type todoStore interface {
	Put(ctx context.Context, t *domain.Todo) error
	Get(ctx context.Context, todoID string) (*domain.Todo, error)
	Scan(ctx context.Context) ([]domain.Todo, error)
	Update(ctx context.Context, todoID string, updates map[string]interface{}) error
	Delete(ctx context.Context, todoID string) error
}

type imageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	repo   todoStore
	images imageStore
}

func NewService(repo todoStore, images imageStore) Service {
	return &service{repo: repo, images: images}
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateTodoRequest) (*domain.Todo, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("Please fill in the required fields: %w", domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	t := &domain.Todo{
		TodoID:     id.New(),
		TodoImage:  req.TodoImage,
		TodoName:   req.TodoName,
		TodoDesc:   req.TodoDesc,
		TodoStatus: req.TodoStatus,
		CreatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) List(ctx context.Context) ([]domain.Todo, error) {
	return s.repo.Scan(ctx)
}

func (s *service) Update(ctx context.Context, todoID string, req domain.UpdateTodoRequest) (*domain.Todo, error) {
	updates := map[string]interface{}{}
	if req.TodoImage != nil {
		updates[fieldTodoImage] = *req.TodoImage
	}
	if req.TodoName != nil {
		updates[fieldTodoName] = *req.TodoName
	}
	if req.TodoDesc != nil {
		updates[fieldTodoDesc] = *req.TodoDesc
	}
	if req.TodoStatus != nil {
		updates[fieldTodoStatus] = *req.TodoStatus
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, todoID)
	}
	if err := s.repo.Update(ctx, todoID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, todoID)
}

func (s *service) Delete(ctx context.Context, todoID string) error {
	t, err := s.repo.Get(ctx, todoID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, todoID); err != nil {
		return err
	}
	// Managed images carry the todo-images/ prefix; anything else is an
	// external URL the client supplied and is not ours to remove.
	if s.images != nil && strings.HasPrefix(t.TodoImage, "todo-images/") {
		if err := s.images.Delete(ctx, t.TodoImage); err != nil {
			slog.Warn("could not delete todo image", "key", t.TodoImage, "err", err)
		}
	}
	return nil
}

func (s *service) UploadImage(ctx context.Context, userID, filename, contentType string, r io.Reader) (string, string, error) {
	if s.images == nil {
		return "", "", fmt.Errorf("image storage is not configured: %w", domain.ErrBadRequest)
	}
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", "", fmt.Errorf("unsupported image type %q: %w", ext, domain.ErrBadRequest)
	}
	key := "todo-images/" + userID + "/" + id.New() + ext
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.images.Upload(ctx, key, r, contentType); err != nil {
		return "", "", err
	}
	url, err := s.images.PresignedURL(ctx, key, presignTTL)
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}
