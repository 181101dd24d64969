package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/artontop/artontop/models"
	"github.com/artontop/artontop/utils"
)

// CommentTimeLayout is how comment timestamps are rendered.
const CommentTimeLayout = "02.01.2006 15:04"

// LikeResult is the state after a like toggle.
type LikeResult struct {
	Liked  bool   `json:"liked"`
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// CommentView is a comment as shown under a publication or remix.
type CommentView struct {
	ID           uint   `json:"id"`
	AuthorID     uint   `json:"author_id"`
	AuthorName   string `json:"author_name"`
	AuthorAvatar string `json:"author_avatar"`
	Text         string `json:"text"`
	CreatedAt    string `json:"created_at"`
}

type commentRow struct {
	ID           uint
	AuthorID     uint
	AuthorName   string
	AuthorAvatar string
	Text         string
	CreatedAt    time.Time
}

// EngagementService handles likes and comments on publications and remixes.
type EngagementService struct {
	db *gorm.DB
}

func NewEngagementService(db *gorm.DB) *EngagementService {
	return &EngagementService{db: db}
}

func (s *EngagementService) TogglePublicationLike(ctx context.Context, userID, pubID uint) (*LikeResult, error) {
	if err := loadByID(ctx, s.db, &models.Publication{}, pubID, "publication"); err != nil {
		return nil, err
	}
	return toggleLike(ctx, s.db, &models.PublicationLike{}, "pub_id", pubID, userID,
		&models.PublicationLike{PubID: pubID, UserID: userID})
}

func (s *EngagementService) ToggleRemixLike(ctx context.Context, userID, remixID uint) (*LikeResult, error) {
	if err := loadByID(ctx, s.db, &models.Remix{}, remixID, "remix"); err != nil {
		return nil, err
	}
	return toggleLike(ctx, s.db, &models.RemixLike{}, "remix_id", remixID, userID,
		&models.RemixLike{RemixID: remixID, UserID: userID})
}

// toggleLike removes the (target, user) like if present, otherwise inserts it.
// A concurrent insert of the same pair is absorbed by the unique index.
func toggleLike(ctx context.Context, db *gorm.DB, model interface{}, column string, targetID, userID uint, row interface{}) (*LikeResult, error) {
	tx := db.WithContext(ctx)
	res := tx.Where(column+" = ? AND user_id = ?", targetID, userID).Delete(model)
	if res.Error != nil {
		return nil, fmt.Errorf("remove like: %w", res.Error)
	}

	liked := res.RowsAffected == 0
	if liked {
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
		if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("add like: %w", err)
		}
	}

	var count int64
	if err := tx.Model(model).Where(column+" = ?", targetID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	status := "unliked"
	if liked {
		status = "liked"
	}
	return &LikeResult{Liked: liked, Status: status, Count: count}, nil
}

func (s *EngagementService) AddPublicationComment(ctx context.Context, authorID, pubID uint, text string) (*CommentView, error) {
	text, err := commentText(pubID, text)
	if err != nil {
		return nil, err
	}
	if err := loadByID(ctx, s.db, &models.Publication{}, pubID, "publication"); err != nil {
		return nil, err
	}
	c := models.PublicationComment{PubID: pubID, AuthorID: authorID, Text: text}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create publication comment: %w", err)
	}
	return s.commentView(ctx, authorID, c.ID, text, c.CreatedAt)
}

func (s *EngagementService) AddRemixComment(ctx context.Context, authorID, remixID uint, text string) (*CommentView, error) {
	text, err := commentText(remixID, text)
	if err != nil {
		return nil, err
	}
	if err := loadByID(ctx, s.db, &models.Remix{}, remixID, "remix"); err != nil {
		return nil, err
	}
	c := models.RemixComment{RemixID: remixID, AuthorID: authorID, Text: text}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create remix comment: %w", err)
	}
	return s.commentView(ctx, authorID, c.ID, text, c.CreatedAt)
}

// PublicationComments lists a publication's comments oldest first.
func (s *EngagementService) PublicationComments(ctx context.Context, pubID uint) ([]CommentView, error) {
	if err := loadByID(ctx, s.db, &models.Publication{}, pubID, "publication"); err != nil {
		return nil, err
	}
	return s.listComments(ctx, "publication_comments", "pub_id", pubID)
}

// RemixComments lists a remix's comments oldest first.
func (s *EngagementService) RemixComments(ctx context.Context, remixID uint) ([]CommentView, error) {
	if err := loadByID(ctx, s.db, &models.Remix{}, remixID, "remix"); err != nil {
		return nil, err
	}
	return s.listComments(ctx, "remix_comments", "remix_id", remixID)
}

func (s *EngagementService) DeletePublicationComment(ctx context.Context, userID, commentID uint) error {
	var c models.PublicationComment
	if err := loadByID(ctx, s.db, &c, commentID, "comment"); err != nil {
		return err
	}
	if c.AuthorID != userID {
		return fmt.Errorf("comment %d: %w", commentID, ErrForbidden)
	}
	if err := s.db.WithContext(ctx).Delete(&c).Error; err != nil {
		return fmt.Errorf("delete comment %d: %w", commentID, err)
	}
	return nil
}

func (s *EngagementService) DeleteRemixComment(ctx context.Context, userID, commentID uint) error {
	var c models.RemixComment
	if err := loadByID(ctx, s.db, &c, commentID, "comment"); err != nil {
		return err
	}
	if c.AuthorID != userID {
		return fmt.Errorf("comment %d: %w", commentID, ErrForbidden)
	}
	if err := s.db.WithContext(ctx).Delete(&c).Error; err != nil {
		return fmt.Errorf("delete comment %d: %w", commentID, err)
	}
	return nil
}

func commentText(targetID uint, text string) (string, error) {
	text = utils.Sanitize(text)
	if targetID == 0 || text == "" {
		return "", ErrMissingData
	}
	return text, nil
}

func (s *EngagementService) listComments(ctx context.Context, table, column string, targetID uint) ([]CommentView, error) {
	var rows []commentRow
	err := s.db.WithContext(ctx).
		Table(table+" AS c").
		Select("c.id, c.author_id, c.text, c.created_at, "+
			"COALESCE(users.username, 'Unknown') AS author_name, "+
			"COALESCE(users.avatar, ?) AS author_avatar", models.DefaultAvatar).
		Joins("LEFT JOIN users ON users.id = c.author_id").
		Where("c."+column+" = ?", targetID).
		Order("c.created_at ASC, c.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}

	out := make([]CommentView, 0, len(rows))
	for _, r := range rows {
		out = append(out, CommentView{
			ID:           r.ID,
			AuthorID:     r.AuthorID,
			AuthorName:   r.AuthorName,
			AuthorAvatar: r.AuthorAvatar,
			Text:         r.Text,
			CreatedAt:    r.CreatedAt.Format(CommentTimeLayout),
		})
	}
	return out, nil
}

func (s *EngagementService) commentView(ctx context.Context, authorID, id uint, text string, at time.Time) (*CommentView, error) {
	var u models.User
	name, avatar := "Unknown", models.DefaultAvatar
	if err := s.db.WithContext(ctx).Select("username", "avatar").First(&u, authorID).Error; err == nil {
		name, avatar = u.Username, u.Avatar
	}
	return &CommentView{
		ID:           id,
		AuthorID:     authorID,
		AuthorName:   name,
		AuthorAvatar: avatar,
		Text:         text,
		CreatedAt:    at.Format(CommentTimeLayout),
	}, nil
}
