package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	"productapi/internal/model"
	repoMocks "productapi/internal/repository/mocks"
	"productapi/internal/storage"
	storeMocks "productapi/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProductService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(mRepo *repoMocks.MockProductRepository)
		wantErr    bool
		checkRes   func(t *testing.T, items []model.Product)
	}{
		{
			name: "happy path",
			setupMocks: func(mRepo *repoMocks.MockProductRepository) {
				mRepo.On("ListAll", ctx).Return([]model.Product{
					{ID: 1, Name: "Pen", Price: 1.5},
					{ID: 2, Name: "Pencil", Price: 2.0},
				}, nil)
			},
			checkRes: func(t *testing.T, items []model.Product) {
				assert.Len(t, items, 2)
			},
		},
		{
			name: "empty store returns empty collection, not an error",
			setupMocks: func(mRepo *repoMocks.MockProductRepository) {
				mRepo.On("ListAll", ctx).Return([]model.Product{}, nil)
			},
			checkRes: func(t *testing.T, items []model.Product) {
				assert.NotNil(t, items)
				assert.Empty(t, items)
			},
		},
		{
			name: "repository error",
			setupMocks: func(mRepo *repoMocks.MockProductRepository) {
				mRepo.On("ListAll", ctx).Return(nil, errors.New("db fail"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockProductRepository)
			svc := NewProductService(nil, mRepo)

			tt.setupMocks(mRepo)

			items, err := svc.List(ctx)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				if tt.checkRes != nil {
					tt.checkRes(t, items)
				}
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         int64
		setupMocks func(mRepo *repoMocks.MockProductRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   1,
			setupMocks: func(mRepo *repoMocks.MockProductRepository) {
				mRepo.On("FindByID", ctx, int64(1)).Return(&model.Product{ID: 1, Name: "Pen", Price: 1.5}, nil)
			},
		},
		{
			name:       "validation - non-positive id",
			id:         0,
			setupMocks: func(mRepo *repoMocks.MockProductRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found - mapping sql.ErrNoRows",
			id:   99,
			setupMocks: func(mRepo *repoMocks.MockProductRepository) {
				mRepo.On("FindByID", ctx, int64(99)).Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "generic repository error",
			id:   2,
			setupMocks: func(mRepo *repoMocks.MockProductRepository) {
				mRepo.On("FindByID", ctx, int64(2)).Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockProductRepository)
			svc := NewProductService(nil, mRepo)

			tt.setupMocks(mRepo)

			p, err := svc.Get(ctx, tt.id)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrIDRequired) || errors.Is(tt.wantErr, ErrNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
				}
				assert.Nil(t, p)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, p)
				assert.Equal(t, tt.id, p.ID)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_GetNotFoundCarriesID(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockProductRepository)
	svc := NewProductService(nil, mRepo)

	mRepo.On("FindByID", ctx, int64(42)).Return(nil, sql.ErrNoRows)

	_, err := svc.Get(ctx, 42)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "42")
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id via repository save", func(t *testing.T) {
		mRepo := new(repoMocks.MockProductRepository)
		svc := NewProductService(nil, mRepo)

		mRepo.On("Save", ctx, mock.MatchedBy(func(p *model.Product) bool {
			return p.ID == 0 && p.Name == "Pen" && p.Price == 1.5
		})).Return(&model.Product{ID: 1, Name: "Pen", Price: 1.5}, nil)

		created, err := svc.Create(ctx, ProductInput{Name: "Pen", Price: 1.5})

		assert.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
		assert.Equal(t, "Pen", created.Name)
		assert.Equal(t, 1.5, created.Price)
		mRepo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		mRepo := new(repoMocks.MockProductRepository)
		svc := NewProductService(nil, mRepo)

		mRepo.On("Save", ctx, mock.Anything).Return(nil, errors.New("db fail"))

		created, err := svc.Create(ctx, ProductInput{Name: "Pen"})

		assert.Error(t, err)
		assert.Nil(t, created)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("merges name and price, preserves other fields", func(t *testing.T) {
		mRepo := new(repoMocks.MockProductRepository)
		svc := NewProductService(nil, mRepo)

		mRepo.On("FindByID", ctx, int64(1)).
			Return(&model.Product{ID: 1, Name: "Pen", Price: 1.5, ImagePath: "products/pen.png"}, nil)
		mRepo.On("Save", ctx, mock.MatchedBy(func(p *model.Product) bool {
			return p.ID == 1 && p.Name == "Pencil" && p.Price == 2.0 && p.ImagePath == "products/pen.png"
		})).Return(&model.Product{ID: 1, Name: "Pencil", Price: 2.0, ImagePath: "products/pen.png"}, nil)

		updated, err := svc.Update(ctx, 1, ProductInput{Name: "Pencil", Price: 2.0})

		assert.NoError(t, err)
		assert.Equal(t, int64(1), updated.ID)
		assert.Equal(t, "Pencil", updated.Name)
		assert.Equal(t, 2.0, updated.Price)
		assert.Equal(t, "products/pen.png", updated.ImagePath)
		mRepo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockProductRepository)
		svc := NewProductService(nil, mRepo)

		mRepo.On("FindByID", ctx, int64(99)).Return(nil, sql.ErrNoRows)

		updated, err := svc.Update(ctx, 99, ProductInput{Name: "Ghost"})

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, updated)
		mRepo.AssertExpectations(t)
	})
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         int64
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository)
		wantErr    error
	}{
		{
			name: "happy path without image",
			id:   1,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {
				mRepo.On("FindByID", ctx, int64(1)).Return(&model.Product{ID: 1}, nil)
				mRepo.On("Delete", ctx, int64(1)).Return(nil)
			},
		},
		{
			name: "existing image is removed from storage",
			id:   2,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {
				mRepo.On("FindByID", ctx, int64(2)).Return(&model.Product{ID: 2, ImagePath: "products/img.png"}, nil)
				mStore.On("Delete", ctx, "products/img.png").Return(nil)
				mRepo.On("Delete", ctx, int64(2)).Return(nil)
			},
		},
		{
			name: "missing id is a silent success, not NotFound",
			id:   99,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {
				mRepo.On("FindByID", ctx, int64(99)).Return(nil, sql.ErrNoRows)
			},
		},
		{
			name:       "validation - non-positive id",
			id:         -1,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "repository delete error",
			id:   3,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {
				mRepo.On("FindByID", ctx, int64(3)).Return(&model.Product{ID: 3}, nil)
				mRepo.On("Delete", ctx, int64(3)).Return(errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockProductRepository)
			svc := NewProductService(mStore, mRepo)

			tt.setupMocks(mStore, mRepo)

			err := svc.Delete(ctx, tt.id)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrIDRequired) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
			} else {
				assert.NoError(t, err)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_AttachImage(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         int64
		filename   string
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) io.Reader
		wantErr    error
		wantErrMsg string
	}{
		{
			name:     "happy path",
			id:       1,
			filename: "pen.png",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) io.Reader {
				r := strings.NewReader("image-bytes")
				mRepo.On("FindByID", ctx, int64(1)).Return(&model.Product{ID: 1, Name: "Pen"}, nil)
				mStore.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "products/") && strings.HasSuffix(key, ".png")
				}), r, mock.Anything).Return(storage.ObjectInfo{Key: "products/uuid.png"}, nil)
				mRepo.On("Save", ctx, mock.MatchedBy(func(p *model.Product) bool {
					return p.ID == 1 && p.ImagePath == "products/uuid.png"
				})).Return(&model.Product{ID: 1, Name: "Pen", ImagePath: "products/uuid.png"}, nil)
				return r
			},
		},
		{
			name:     "validation error - nil reader",
			id:       1,
			filename: "pen.png",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) io.Reader {
				return nil
			},
			wantErr: ErrReaderNil,
		},
		{
			name:     "product not found",
			id:       99,
			filename: "pen.png",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) io.Reader {
				mRepo.On("FindByID", ctx, int64(99)).Return(nil, sql.ErrNoRows)
				return strings.NewReader("image-bytes")
			},
			wantErr: ErrNotFound,
		},
		{
			name:     "storage error",
			id:       1,
			filename: "pen.png",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) io.Reader {
				r := strings.NewReader("image-bytes")
				mRepo.On("FindByID", ctx, int64(1)).Return(&model.Product{ID: 1}, nil)
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
				return r
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name:     "repository error with successful rollback",
			id:       1,
			filename: "pen.png",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) io.Reader {
				r := strings.NewReader("image-bytes")
				mRepo.On("FindByID", ctx, int64(1)).Return(&model.Product{ID: 1}, nil)
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						return storage.ObjectInfo{Key: key}
					}, nil)
				mRepo.On("Save", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(nil)
				return r
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:     "repository error with failed rollback",
			id:       1,
			filename: "pen.png",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) io.Reader {
				r := strings.NewReader("image-bytes")
				mRepo.On("FindByID", ctx, int64(1)).Return(&model.Product{ID: 1}, nil)
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						return storage.ObjectInfo{Key: key}
					}, nil)
				mRepo.On("Save", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(errors.New("delete fail"))
				return r
			},
			wantErrMsg: "rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockProductRepository)
			svc := NewProductService(mStore, mRepo)

			r := tt.setupMocks(mStore, mRepo)

			p, err := svc.AttachImage(ctx, tt.id, r, tt.filename, "image/png", 11)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, p)
				assert.NotEmpty(t, p.ImagePath)
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_AttachImageReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockProductRepository)
	svc := NewProductService(mStore, mRepo)

	r := strings.NewReader("new-image")
	mRepo.On("FindByID", ctx, int64(1)).Return(&model.Product{ID: 1, ImagePath: "products/old.png"}, nil)
	mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
		Return(storage.ObjectInfo{Key: "products/new.png"}, nil)
	mRepo.On("Save", ctx, mock.Anything).
		Return(&model.Product{ID: 1, ImagePath: "products/new.png"}, nil)
	mStore.On("Delete", ctx, "products/old.png").Return(nil)

	p, err := svc.AttachImage(ctx, 1, r, "new.png", "image/png", 9)

	assert.NoError(t, err)
	assert.Equal(t, "products/new.png", p.ImagePath)
	mStore.AssertExpectations(t)
	mRepo.AssertExpectations(t)
}

func TestProductService_ImageURL(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         int64
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository)
		want       string
		wantErr    error
	}{
		{
			name: "happy path",
			id:   1,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {
				mRepo.On("FindByID", ctx, int64(1)).Return(&model.Product{ID: 1, ImagePath: "products/img.png"}, nil)
				mStore.On("PresignGet", ctx, "products/img.png", imageURLExpiry).
					Return("https://example.test/presigned", nil)
			},
			want: "https://example.test/presigned",
		},
		{
			name: "no image attached",
			id:   2,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {
				mRepo.On("FindByID", ctx, int64(2)).Return(&model.Product{ID: 2}, nil)
			},
			wantErr: ErrNoImage,
		},
		{
			name: "product not found",
			id:   99,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockProductRepository) {
				mRepo.On("FindByID", ctx, int64(99)).Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockProductRepository)
			svc := NewProductService(mStore, mRepo)

			tt.setupMocks(mStore, mRepo)

			u, err := svc.ImageURL(ctx, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, u)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}
