package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/artontop/artontop/models"
	"github.com/artontop/artontop/utils"
)

const detailCacheTTL = 10 * time.Minute

// PublicationInput carries the text fields of the publish form.
type PublicationInput struct {
	Title       string
	Description string
	Hashtags    string
	PubType     string
}

// PublicationEdit is a partial update; nil fields are left as they are.
type PublicationEdit struct {
	Title       *string
	Description *string
	Hashtags    *string
	PubType     *string
}

// PublicationDetail is what the detail modal shows.
type PublicationDetail struct {
	ID          uint   `json:"id"`
	Image       string `json:"image"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Hashtags    string `json:"hashtags"`
	PubType     string `json:"pub_type"`
	AuthorID    uint   `json:"author_id"`
	AuthorName  string `json:"author_name"`
	Pinned      bool   `json:"pinned"`
	IsOwner     bool   `json:"is_owner"`
	LikesCount  int64  `json:"likes_count"`
	Liked       bool   `json:"liked"`
}

// EditorView is a publication with the remixes drawn over it.
type EditorView struct {
	Publication *models.Publication `json:"publication"`
	Remixes     []models.Remix      `json:"remixes"`
}

// PublicationService manages publications and their uploaded images.
type PublicationService struct {
	db        *gorm.DB
	uploadDir string
	remixes   *RemixService
}

func NewPublicationService(db *gorm.DB, uploadDir string, remixes *RemixService) *PublicationService {
	return &PublicationService{db: db, uploadDir: uploadDir, remixes: remixes}
}

// Create stores a publication for an already saved image.
func (s *PublicationService) Create(ctx context.Context, authorID uint, image string, in PublicationInput) (*models.Publication, error) {
	if image == "" {
		return nil, fmt.Errorf("image: %w", ErrMissingData)
	}
	pubType := strings.TrimSpace(in.PubType)
	if pubType == "" {
		pubType = "Other"
	}
	if !models.IsContentType(pubType) {
		return nil, fmt.Errorf("type %q: %w", pubType, ErrInvalidInput)
	}

	pub := models.Publication{
		Image:       image,
		Title:       truncateRunes(utils.Sanitize(in.Title), 100),
		Description: utils.Sanitize(in.Description),
		Hashtags:    truncateRunes(utils.Sanitize(in.Hashtags), 200),
		PubType:     pubType,
		AuthorID:    authorID,
	}
	if err := s.db.WithContext(ctx).Create(&pub).Error; err != nil {
		return nil, fmt.Errorf("create publication: %w", err)
	}
	return &pub, nil
}

// Get loads a publication with its counters as seen by viewerID.
func (s *PublicationService) Get(ctx context.Context, id, viewerID uint) (*models.Publication, error) {
	var pubs []models.Publication
	err := withPublicationStats(s.db.WithContext(ctx), viewerID).
		Where("publications.id = ?", id).
		Limit(1).
		Find(&pubs).Error
	if err != nil {
		return nil, fmt.Errorf("load publication %d: %w", id, err)
	}
	if len(pubs) == 0 {
		return nil, fmt.Errorf("publication %d: %w", id, ErrNotFound)
	}
	return &pubs[0], nil
}

// Detail returns the modal view. Base fields come from Redis when cached; like state is always fresh.
func (s *PublicationService) Detail(ctx context.Context, id, viewerID uint) (*PublicationDetail, error) {
	var d PublicationDetail
	if !utils.CacheGetJSON(detailCacheKey(id), &d) {
		pub, err := s.Get(ctx, id, 0)
		if err != nil {
			return nil, err
		}
		d = PublicationDetail{
			ID:          pub.ID,
			Image:       pub.Image,
			Title:       pub.Title,
			Description: pub.Description,
			Hashtags:    pub.Hashtags,
			PubType:     pub.PubType,
			AuthorID:    pub.AuthorID,
			AuthorName:  pub.AuthorName,
			Pinned:      pub.Pinned,
		}
		utils.CacheSetJSON(detailCacheKey(id), d, detailCacheTTL)
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.PublicationLike{}).Where("pub_id = ?", id).Count(&d.LikesCount).Error; err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	if viewerID != 0 {
		var n int64
		if err := db.Model(&models.PublicationLike{}).Where("pub_id = ? AND user_id = ?", id, viewerID).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("check like: %w", err)
		}
		d.Liked = n > 0
	}
	d.IsOwner = viewerID != 0 && viewerID == d.AuthorID
	return &d, nil
}

// Edit applies a partial update. Only the author may edit.
func (s *PublicationService) Edit(ctx context.Context, userID, id uint, in PublicationEdit) (*models.Publication, error) {
	pub, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = truncateRunes(utils.Sanitize(*in.Title), 100)
	}
	if in.Description != nil {
		updates["description"] = utils.Sanitize(*in.Description)
	}
	if in.Hashtags != nil {
		updates["hashtags"] = truncateRunes(utils.Sanitize(*in.Hashtags), 200)
	}
	if in.PubType != nil {
		t := strings.TrimSpace(*in.PubType)
		if !models.IsContentType(t) {
			return nil, fmt.Errorf("type %q: %w", t, ErrInvalidInput)
		}
		updates["pub_type"] = t
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(pub).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update publication %d: %w", id, err)
		}
		utils.CacheDelete(detailCacheKey(id))
	}
	return s.Get(ctx, id, userID)
}

// TogglePin flips the pinned flag. Only the author may pin.
func (s *PublicationService) TogglePin(ctx context.Context, userID, id uint) (*models.Publication, error) {
	pub, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	pinned := !pub.Pinned
	if err := s.db.WithContext(ctx).Model(pub).Update("pinned", pinned).Error; err != nil {
		return nil, fmt.Errorf("toggle pin %d: %w", id, err)
	}
	utils.CacheDelete(detailCacheKey(id))
	pub.Pinned = pinned
	return pub, nil
}

// Delete removes a publication together with its likes, comments and remixes.
// Image files go after the transaction commits; missing files are ignored.
func (s *PublicationService) Delete(ctx context.Context, userID, id uint) error {
	pub, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	var remixes []models.Remix
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "image").Where("original_pub_id = ?", id).Find(&remixes).Error; err != nil {
			return err
		}
		ids := make([]uint, 0, len(remixes))
		for _, r := range remixes {
			ids = append(ids, r.ID)
		}
		if err := deleteRemixes(tx, ids); err != nil {
			return err
		}
		if err := tx.Where("pub_id = ?", id).Delete(&models.PublicationLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("pub_id = ?", id).Delete(&models.PublicationComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(pub).Error
	})
	if err != nil {
		return fmt.Errorf("delete publication %d: %w", id, err)
	}
	utils.CacheDelete(detailCacheKey(id))

	files := []string{pub.Image}
	for _, r := range remixes {
		files = append(files, r.Image)
	}
	for _, f := range files {
		if err := utils.RemoveUpload(s.uploadDir, f); err != nil {
			utils.Logger.Warn("remove upload", zap.String("file", f), zap.Error(err))
		}
	}
	return nil
}

// Editor returns a publication and its remixes for the drawing page.
func (s *PublicationService) Editor(ctx context.Context, id, viewerID uint) (*EditorView, error) {
	pub, err := s.Get(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	remixes, err := s.remixes.ForPublication(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	return &EditorView{Publication: pub, Remixes: remixes}, nil
}

// ByAuthor lists a user's publications, pinned first then newest.
func (s *PublicationService) ByAuthor(ctx context.Context, authorID, viewerID uint) ([]models.Publication, error) {
	pubs := []models.Publication{}
	err := withPublicationStats(s.db.WithContext(ctx), viewerID).
		Where("publications.author_id = ?", authorID).
		Order("publications.pinned DESC").
		Order("publications.id DESC").
		Find(&pubs).Error
	if err != nil {
		return nil, fmt.Errorf("list publications of user %d: %w", authorID, err)
	}
	return pubs, nil
}

func (s *PublicationService) owned(ctx context.Context, userID, id uint) (*models.Publication, error) {
	var pub models.Publication
	if err := loadByID(ctx, s.db, &pub, id, "publication"); err != nil {
		return nil, err
	}
	if pub.AuthorID != userID {
		return nil, fmt.Errorf("publication %d: %w", id, ErrForbidden)
	}
	return &pub, nil
}

func detailCacheKey(id uint) string {
	return fmt.Sprintf("cache:pub:detail:%d", id)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
