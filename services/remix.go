package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
	"gorm.io/gorm"

	"github.com/artontop/artontop/models"
	"github.com/artontop/artontop/utils"
)

// RemixService stores canvas exports drawn over publications.
type RemixService struct {
	db        *gorm.DB
	uploadDir string
	maxBytes  int64
	now       func() time.Time
}

// NewRemixService stores remixes under uploadDir. Decoded images above maxBytes are refused; 0 disables the check.
func NewRemixService(db *gorm.DB, uploadDir string, maxBytes int64) *RemixService {
	return &RemixService{db: db, uploadDir: uploadDir, maxBytes: maxBytes, now: time.Now}
}

// Save decodes a base64 data URL, writes it as remix_<original>_<nanos>.<ext> and records the remix.
func (s *RemixService) Save(ctx context.Context, authorID, originalID uint, dataURL string) (*models.Remix, error) {
	if originalID == 0 || dataURL == "" {
		return nil, ErrMissingData
	}
	data, _, err := utils.DecodeDataURL(dataURL)
	if err != nil {
		return nil, fmt.Errorf("remix image: %w: %v", ErrInvalidInput, err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("remix image of %d bytes: %w", len(data), utils.ErrTooLarge)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("remix image: %w: %v", ErrInvalidInput, err)
	}
	if err := loadByID(ctx, s.db, &models.Publication{}, originalID, "publication"); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	name := fmt.Sprintf("remix_%d_%d.%s", originalID, s.now().UnixNano(), extFor(format))
	path := filepath.Join(s.uploadDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write remix file: %w", err)
	}

	remix := models.Remix{Image: name, OriginalPubID: originalID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&remix).Error; err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			utils.Logger.Warn("remove orphaned remix file", zap.String("file", name), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("create remix: %w", err)
	}
	return &remix, nil
}

// Delete removes the remix with its likes and comments, then its file. Only the author may delete.
func (s *RemixService) Delete(ctx context.Context, userID, remixID uint) error {
	var remix models.Remix
	if err := loadByID(ctx, s.db, &remix, remixID, "remix"); err != nil {
		return err
	}
	if remix.AuthorID != userID {
		return fmt.Errorf("remix %d: %w", remixID, ErrForbidden)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteRemixes(tx, []uint{remix.ID})
	})
	if err != nil {
		return fmt.Errorf("delete remix %d: %w", remixID, err)
	}
	if err := utils.RemoveUpload(s.uploadDir, remix.Image); err != nil {
		utils.Logger.Warn("remove remix file", zap.String("file", remix.Image), zap.Error(err))
	}
	return nil
}

// ForPublication lists remixes of a publication, most liked first and newest among equals.
func (s *RemixService) ForPublication(ctx context.Context, pubID, viewerID uint) ([]models.Remix, error) {
	remixes := []models.Remix{}
	err := withRemixStats(s.db.WithContext(ctx), viewerID).
		Where("remixes.original_pub_id = ?", pubID).
		Order("likes_count DESC").
		Order("remixes.id DESC").
		Find(&remixes).Error
	if err != nil {
		return nil, fmt.Errorf("list remixes of publication %d: %w", pubID, err)
	}
	return remixes, nil
}

// ByAuthor lists a user's remixes newest first.
func (s *RemixService) ByAuthor(ctx context.Context, authorID, viewerID uint) ([]models.Remix, error) {
	remixes := []models.Remix{}
	err := withRemixStats(s.db.WithContext(ctx), viewerID).
		Where("remixes.author_id = ?", authorID).
		Order("remixes.id DESC").
		Find(&remixes).Error
	if err != nil {
		return nil, fmt.Errorf("list remixes of user %d: %w", authorID, err)
	}
	return remixes, nil
}

// deleteRemixes removes the given remixes and everything hanging off them. Callers pass a transaction.
func deleteRemixes(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("remix_id IN ?", ids).Delete(&models.RemixLike{}).Error; err != nil {
		return err
	}
	if err := tx.Where("remix_id IN ?", ids).Delete(&models.RemixComment{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Remix{}).Error
}

func extFor(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
