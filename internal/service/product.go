package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"productapi/internal/model"
	"productapi/internal/repository"
	"productapi/internal/storage"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("product not found")
	ErrNoImage    = errors.New("product has no image")
	ErrReaderNil  = errors.New("reader is nil")
)

// imageURLExpiry bounds how long a presigned download link stays valid.
const imageURLExpiry = 15 * time.Minute

// ProductInput carries the client-settable fields of a product.
// The identifier is never client-settable; the database assigns it on create.
type ProductInput struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ProductService defines the use cases for handling products.
type ProductService interface {
	// List returns the full, unordered collection of persisted products.
	List(ctx context.Context) ([]model.Product, error)

	// Get returns a single product by its ID, or ErrNotFound.
	Get(ctx context.Context, id int64) (*model.Product, error)

	// Create persists a new product and returns it with the assigned ID.
	Create(ctx context.Context, in ProductInput) (*model.Product, error)

	// Update fetches the existing product (ErrNotFound if absent), overwrites
	// its name and price only, persists, and returns the updated row. Other
	// stored fields are preserved.
	Update(ctx context.Context, id int64, in ProductInput) (*model.Product, error)

	// Delete removes a product by ID. Deleting a missing ID is a silent
	// no-op; only read paths raise ErrNotFound.
	Delete(ctx context.Context, id int64) error

	// AttachImage stores an image for the product in object storage, records
	// its key on the row, and rolls back the object if the DB write fails.
	AttachImage(ctx context.Context, id int64, r io.Reader, originalFilename string, contentType string, size int64) (*model.Product, error)

	// ImageURL returns a presigned, time-limited download URL for the
	// product's image, or ErrNoImage when none is attached.
	ImageURL(ctx context.Context, id int64) (string, error)
}

// productService is a concrete implementation of ProductService.
type productService struct {
	store storage.Storage
	repo  repository.ProductRepository
}

// NewProductService constructs a new ProductService.
func NewProductService(store storage.Storage, repo repository.ProductRepository) ProductService {
	return &productService{store: store, repo: repo}
}

func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	return s.repo.ListAll(ctx)
}

// Get translates the repository's absent-row result into a descriptive
// failure carrying the requested id.
func (s *productService) Get(ctx context.Context, id int64) (*model.Product, error) {
	if id <= 0 {
		return nil, ErrIDRequired
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *productService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	return s.repo.Save(ctx, &model.Product{Name: in.Name, Price: in.Price})
}

func (s *productService) Update(ctx context.Context, id int64, in ProductInput) (*model.Product, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Merge-then-save: only name and price come from the request, everything
	// else on the row survives untouched.
	existing.Name = in.Name
	existing.Price = in.Price
	return s.repo.Save(ctx, existing)
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrIDRequired
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Delete-of-missing-id is silent success, unlike the read paths.
			return nil
		}
		return err
	}
	// Best-effort image cleanup; the row is removed regardless.
	if existing.ImagePath != "" {
		_ = s.store.Delete(ctx, existing.ImagePath)
	}
	return s.repo.Delete(ctx, id)
}

func (s *productService) AttachImage(ctx context.Context, id int64, r io.Reader, originalFilename string, contentType string, size int64) (*model.Product, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Generate object key using UUID + original extension
	ext := filepath.Ext(originalFilename)
	key := filepath.ToSlash(filepath.Join("products", uuid.New().String()+ext))

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	previous := existing.ImagePath
	existing.ImagePath = objInfo.Key
	stored, err := s.repo.Save(ctx, existing)
	if err != nil {
		// Rollback: delete the freshly uploaded object
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	// A replaced image leaves no reference behind; remove it best-effort.
	if previous != "" && previous != objInfo.Key {
		_ = s.store.Delete(ctx, previous)
	}
	return stored, nil
}

func (s *productService) ImageURL(ctx context.Context, id int64) (string, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if existing.ImagePath == "" {
		return "", ErrNoImage
	}
	u, err := s.store.PresignGet(ctx, existing.ImagePath, imageURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign image url: %w", err)
	}
	return u, nil
}
