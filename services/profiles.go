package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/artontop/artontop/models"
	"github.com/artontop/artontop/utils"
)

// MaxBioRunes bounds the profile bio.
const MaxBioRunes = 500

// SubscriptionResult is the state after a follow toggle.
type SubscriptionResult struct {
	Subscribed       bool `json:"subscribed"`
	SubscribersCount int  `json:"subscribers_count"`
}

// Profile is a user's public page.
type Profile struct {
	User         models.User          `json:"user"`
	Publications []models.Publication `json:"publications"`
	Remixes      []models.Remix       `json:"remixes"`
	IsSelf       bool                 `json:"is_self"`
	IsSubscribed bool                 `json:"is_subscribed"`
}

// ProfileUpdate is a partial profile edit; nil fields and an empty Avatar are left unchanged.
type ProfileUpdate struct {
	Username *string
	Bio      *string
	Avatar   string
}

// ProfileService covers profiles, ratings and subscriptions.
type ProfileService struct {
	db           *gorm.DB
	uploadDir    string
	publications *PublicationService
	remixes      *RemixService
}

func NewProfileService(db *gorm.DB, uploadDir string, pubs *PublicationService, remixes *RemixService) *ProfileService {
	return &ProfileService{db: db, uploadDir: uploadDir, publications: pubs, remixes: remixes}
}

// Get loads a profile and refreshes the user's rating on the way.
func (s *ProfileService) Get(ctx context.Context, userID, viewerID uint) (*Profile, error) {
	var user models.User
	if err := loadByID(ctx, s.db, &user, userID, "user"); err != nil {
		return nil, err
	}
	rating, err := s.Rating(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rating != user.Rating {
		if err := s.db.WithContext(ctx).Model(&user).UpdateColumn("rating", rating).Error; err != nil {
			return nil, fmt.Errorf("store rating: %w", err)
		}
		user.Rating = rating
	}

	pubs, err := s.publications.ByAuthor(ctx, userID, viewerID)
	if err != nil {
		return nil, err
	}
	remixes, err := s.remixes.ByAuthor(ctx, userID, viewerID)
	if err != nil {
		return nil, err
	}

	p := &Profile{User: user, Publications: pubs, Remixes: remixes, IsSelf: viewerID == userID}
	if viewerID != 0 && viewerID != userID {
		var n int64
		err := s.db.WithContext(ctx).Model(&models.Subscription{}).
			Where("follower_id = ? AND following_id = ?", viewerID, userID).
			Count(&n).Error
		if err != nil {
			return nil, fmt.Errorf("check subscription: %w", err)
		}
		p.IsSubscribed = n > 0
	}
	return p, nil
}

// Rating is the number of likes received on a user's publications and remixes.
func (s *ProfileService) Rating(ctx context.Context, userID uint) (int, error) {
	db := s.db.WithContext(ctx)
	var pubLikes, remixLikes int64
	err := db.Model(&models.PublicationLike{}).
		Joins("JOIN publications ON publications.id = publication_likes.pub_id").
		Where("publications.author_id = ?", userID).
		Count(&pubLikes).Error
	if err != nil {
		return 0, fmt.Errorf("count publication likes: %w", err)
	}
	err = db.Model(&models.RemixLike{}).
		Joins("JOIN remixes ON remixes.id = remix_likes.remix_id").
		Where("remixes.author_id = ?", userID).
		Count(&remixLikes).Error
	if err != nil {
		return 0, fmt.Errorf("count remix likes: %w", err)
	}
	return int(pubLikes + remixLikes), nil
}

// Update edits the caller's own profile. A replaced avatar file is removed from disk.
func (s *ProfileService) Update(ctx context.Context, userID uint, in ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := loadByID(ctx, s.db, &user, userID, "user"); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Username != nil {
		name := utils.Sanitize(*in.Username)
		if name == "" || utf8.RuneCountInString(name) > 80 {
			return nil, fmt.Errorf("username: %w", ErrInvalidInput)
		}
		updates["username"] = name
	}
	if in.Bio != nil {
		bio := utils.Sanitize(*in.Bio)
		if utf8.RuneCountInString(bio) > MaxBioRunes {
			return nil, fmt.Errorf("bio longer than %d characters: %w", MaxBioRunes, ErrInvalidInput)
		}
		updates["bio"] = bio
	}
	oldAvatar := user.Avatar
	if in.Avatar != "" {
		updates["avatar"] = in.Avatar
	}
	if len(updates) == 0 {
		return &user, nil
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update profile %d: %w", userID, err)
	}
	if in.Avatar != "" && oldAvatar != in.Avatar && oldAvatar != models.DefaultAvatar {
		if err := utils.RemoveUpload(s.uploadDir, oldAvatar); err != nil {
			utils.Logger.Warn("remove old avatar", zap.String("file", oldAvatar), zap.Error(err))
		}
	}
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("reload profile %d: %w", userID, err)
	}
	return &user, nil
}

// ToggleSubscription follows or unfollows a user and keeps subscribers_count in step.
func (s *ProfileService) ToggleSubscription(ctx context.Context, followerID, followingID uint) (*SubscriptionResult, error) {
	if followerID == followingID {
		return nil, fmt.Errorf("cannot subscribe to yourself: %w", ErrInvalidInput)
	}
	if err := loadByID(ctx, s.db, &models.User{}, followingID, "user"); err != nil {
		return nil, err
	}

	var res SubscriptionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Subscription{})
		if del.Error != nil {
			return del.Error
		}
		res.Subscribed = del.RowsAffected == 0
		if res.Subscribed {
			sub := models.Subscription{FollowerID: followerID, FollowingID: followingID}
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sub).Error
			if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
		}

		var n int64
		if err := tx.Model(&models.Subscription{}).Where("following_id = ?", followingID).Count(&n).Error; err != nil {
			return err
		}
		res.SubscribersCount = int(n)
		return tx.Model(&models.User{}).Where("id = ?", followingID).UpdateColumn("subscribers_count", n).Error
	})
	if err != nil {
		return nil, fmt.Errorf("toggle subscription %d->%d: %w", followerID, followingID, err)
	}
	return &res, nil
}

// UsernameOrDefault derives a display name from an email when none was given.
func UsernameOrDefault(username, email string) string {
	if name := strings.TrimSpace(username); name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
