package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"

	"github.com/artontop/artontop/models"
)

func TestTogglePublicationLikeTwice(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, "ann")
	fan := seedUser(t, db, "bob")
	p := seedPublication(t, db, author.ID, "Drawing", "")
	svc := NewEngagementService(db)
	ctx := context.Background()

	first, err := svc.TogglePublicationLike(ctx, fan.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, "liked", first.Status)
	assert.EqualValues(t, 1, first.Count)

	second, err := svc.TogglePublicationLike(ctx, fan.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.Equal(t, "unliked", second.Status)
	assert.EqualValues(t, 0, second.Count)
}

func TestToggleRemixLike(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "ann")
	p := seedPublication(t, db, u.ID, "Drawing", "")
	r := models.Remix{Image: "r.png", OriginalPubID: p.ID, AuthorID: u.ID}
	require.NoError(t, db.Create(&r).Error)
	svc := NewEngagementService(db)

	res, err := svc.ToggleRemixLike(context.Background(), u.ID, r.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.EqualValues(t, 1, res.Count)

	_, err = svc.ToggleRemixLike(context.Background(), u.ID, r.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleLikeUnknownPublication(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "ann")
	_, err := NewEngagementService(db).TogglePublicationLike(context.Background(), u.ID, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentTogglesNeverDuplicate(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "ann")
	p := seedPublication(t, db, u.ID, "Drawing", "")
	svc := NewEngagementService(db)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.TogglePublicationLike(context.Background(), u.ID, p.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("toggle failed: %v", err)
	}

	var n int64
	require.NoError(t, db.Model(&models.PublicationLike{}).Where("pub_id = ?", p.ID).Count(&n).Error)
	assert.LessOrEqual(t, n, int64(1))
}

func TestDuplicateLikeInsertIsNoop(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "ann")
	p := seedPublication(t, db, u.ID, "Drawing", "")
	require.NoError(t, db.Create(&models.PublicationLike{PubID: p.ID, UserID: u.ID}).Error)

	// a second row for the same pair is rejected by the unique index
	err := db.Create(&models.PublicationLike{PubID: p.ID, UserID: u.ID}).Error
	require.Error(t, err)

	// the insert used by the toggle turns the same conflict into a no-op
	err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.PublicationLike{PubID: p.ID, UserID: u.ID}).Error
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&models.PublicationLike{}).Where("pub_id = ?", p.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestPublicationComments(t *testing.T) {
	db := newTestDB(t)
	ann := seedUser(t, db, "ann")
	bob := seedUser(t, db, "bob")
	p := seedPublication(t, db, ann.ID, "Drawing", "")
	svc := NewEngagementService(db)
	ctx := context.Background()

	c1, err := svc.AddPublicationComment(ctx, bob.ID, p.ID, "  <b>nice</b> ")
	require.NoError(t, err)
	assert.Equal(t, "nice", c1.Text)
	assert.Equal(t, "bob", c1.AuthorName)
	_, err = time.ParseInLocation(CommentTimeLayout, c1.CreatedAt, time.Local)
	assert.NoError(t, err)

	_, err = svc.AddPublicationComment(ctx, ann.ID, p.ID, "thanks")
	require.NoError(t, err)

	list, err := svc.PublicationComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "nice", list[0].Text)
	assert.Equal(t, "thanks", list[1].Text)
	assert.Equal(t, "ann", list[1].AuthorName)

	assert.ErrorIs(t, svc.DeletePublicationComment(ctx, ann.ID, c1.ID), ErrForbidden)
	require.NoError(t, svc.DeletePublicationComment(ctx, bob.ID, c1.ID))
	assert.ErrorIs(t, svc.DeletePublicationComment(ctx, bob.ID, c1.ID), ErrNotFound)
}

func TestCommentValidation(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "ann")
	p := seedPublication(t, db, u.ID, "Drawing", "")
	svc := NewEngagementService(db)
	ctx := context.Background()

	_, err := svc.AddPublicationComment(ctx, u.ID, p.ID, "   ")
	assert.ErrorIs(t, err, ErrMissingData)
	_, err = svc.AddPublicationComment(ctx, u.ID, 0, "hello")
	assert.ErrorIs(t, err, ErrMissingData)
	_, err = svc.AddPublicationComment(ctx, u.ID, p.ID+1, "hello")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.AddRemixComment(ctx, u.ID, 7, "hello")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.RemixComments(ctx, 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemixComments(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "ann")
	p := seedPublication(t, db, u.ID, "Drawing", "")
	r := models.Remix{Image: "r.png", OriginalPubID: p.ID, AuthorID: u.ID}
	require.NoError(t, db.Create(&r).Error)
	svc := NewEngagementService(db)
	ctx := context.Background()

	c, err := svc.AddRemixComment(ctx, u.ID, r.ID, "cool remix")
	require.NoError(t, err)
	list, err := svc.RemixComments(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)
	require.NoError(t, svc.DeleteRemixComment(ctx, u.ID, c.ID))
}
