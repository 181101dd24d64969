package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artontop/artontop/models"
)

func newProfileService(t *testing.T) *ProfileService {
	t.Helper()
	db := newTestDB(t)
	dir := t.TempDir()
	remixes := NewRemixService(db, dir, 0)
	return NewProfileService(db, dir, NewPublicationService(db, dir, remixes), remixes)
}

func TestToggleSubscriptionTwice(t *testing.T) {
	svc := newProfileService(t)
	ann := seedUser(t, svc.db, "ann")
	bob := seedUser(t, svc.db, "bob")
	ctx := context.Background()

	res, err := svc.ToggleSubscription(ctx, bob.ID, ann.ID)
	require.NoError(t, err)
	assert.True(t, res.Subscribed)
	assert.Equal(t, 1, res.SubscribersCount)

	var stored models.User
	require.NoError(t, svc.db.First(&stored, ann.ID).Error)
	assert.Equal(t, 1, stored.SubscribersCount)

	res, err = svc.ToggleSubscription(ctx, bob.ID, ann.ID)
	require.NoError(t, err)
	assert.False(t, res.Subscribed)
	assert.Equal(t, 0, res.SubscribersCount)
	require.NoError(t, svc.db.First(&stored, ann.ID).Error)
	assert.Equal(t, 0, stored.SubscribersCount)
}

func TestToggleSubscriptionRejectsSelfAndUnknown(t *testing.T) {
	svc := newProfileService(t)
	ann := seedUser(t, svc.db, "ann")

	_, err := svc.ToggleSubscription(context.Background(), ann.ID, ann.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.ToggleSubscription(context.Background(), ann.ID, ann.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileRatingAndRelations(t *testing.T) {
	svc := newProfileService(t)
	ann := seedUser(t, svc.db, "ann")
	bob := seedUser(t, svc.db, "bob")
	p := seedPublication(t, svc.db, ann.ID, "Drawing", "")
	r := models.Remix{Image: "r.png", OriginalPubID: p.ID, AuthorID: ann.ID}
	require.NoError(t, svc.db.Create(&r).Error)
	require.NoError(t, svc.db.Create(&models.PublicationLike{PubID: p.ID, UserID: bob.ID}).Error)
	require.NoError(t, svc.db.Create(&models.PublicationLike{PubID: p.ID, UserID: ann.ID}).Error)
	require.NoError(t, svc.db.Create(&models.RemixLike{RemixID: r.ID, UserID: bob.ID}).Error)
	ctx := context.Background()

	_, err := svc.ToggleSubscription(ctx, bob.ID, ann.ID)
	require.NoError(t, err)

	prof, err := svc.Get(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, prof.User.Rating)
	assert.Equal(t, 1, prof.User.SubscribersCount)
	assert.True(t, prof.IsSubscribed)
	assert.False(t, prof.IsSelf)
	assert.Len(t, prof.Publications, 1)
	assert.Len(t, prof.Remixes, 1)

	var stored models.User
	require.NoError(t, svc.db.First(&stored, ann.ID).Error)
	assert.Equal(t, 3, stored.Rating, "rating is persisted")

	self, err := svc.Get(ctx, ann.ID, ann.ID)
	require.NoError(t, err)
	assert.True(t, self.IsSelf)
	assert.False(t, self.IsSubscribed)

	_, err = svc.Get(ctx, 999, ann.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc := newProfileService(t)
	ann := seedUser(t, svc.db, "ann")
	ctx := context.Background()

	name, bio := "Ann B", "<i>draws</i> cats"
	u, err := svc.Update(ctx, ann.ID, ProfileUpdate{Username: &name, Bio: &bio, Avatar: "new.png"})
	require.NoError(t, err)
	assert.Equal(t, "Ann B", u.Username)
	assert.Equal(t, "draws cats", u.Bio)
	assert.Equal(t, "new.png", u.Avatar)

	long := strings.Repeat("a", MaxBioRunes+1)
	_, err = svc.Update(ctx, ann.ID, ProfileUpdate{Bio: &long})
	assert.ErrorIs(t, err, ErrInvalidInput)

	blank := "  "
	_, err = svc.Update(ctx, ann.ID, ProfileUpdate{Username: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUsernameOrDefault(t *testing.T) {
	assert.Equal(t, "ann", UsernameOrDefault("  ann ", "x@y.z"))
	assert.Equal(t, "bob", UsernameOrDefault("", "bob@example.com"))
}
