package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogmailer_backend/internal/model"
	"blogmailer_backend/pkg/plan"
)

func newSubscriberService(t *testing.T, maxSubscribers int) *SubscriberService {
	t.Helper()
	return NewSubscriberService(newTestDB(t), plan.PlanLimits{MaxSubscribers: maxSubscribers})
}

func TestCreateSubscriber(t *testing.T) {
	svc := newSubscriberService(t, 0)

	subscriber, err := svc.Create(CreateSubscriberInput{
		Email:     "Jane.Doe@Example.COM",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)

	assert.Equal(t, "jane.doe@example.com", subscriber.Email)
	assert.Equal(t, model.StatusPending, subscriber.Status)
	assert.NotEmpty(t, subscriber.UnsubscribeKey)
	assert.Equal(t, "Jane Doe", subscriber.FullName())
}

func TestCreateSubscriberInvalidEmail(t *testing.T) {
	svc := newSubscriberService(t, 0)

	_, err := svc.Create(CreateSubscriberInput{Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestCreateSubscriberDuplicate(t *testing.T) {
	svc := newSubscriberService(t, 0)

	_, err := svc.Create(CreateSubscriberInput{Email: "dup@example.com"})
	require.NoError(t, err)

	_, err = svc.Create(CreateSubscriberInput{Email: "dup@example.com"})
	assert.ErrorIs(t, err, ErrEmailExists)

	// Case differences collapse onto the same address.
	_, err = svc.Create(CreateSubscriberInput{Email: "DUP@example.com"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestCreateSubscriberCapacity(t *testing.T) {
	svc := newSubscriberService(t, 2)

	_, err := svc.Create(CreateSubscriberInput{Email: "one@example.com"})
	require.NoError(t, err)
	_, err = svc.Create(CreateSubscriberInput{Email: "two@example.com"})
	require.NoError(t, err)

	_, err = svc.Create(CreateSubscriberInput{Email: "three@example.com"})
	assert.ErrorIs(t, err, ErrSubscriberLimit)
}

func TestDeriveFirstNameFromEmail(t *testing.T) {
	svc := newSubscriberService(t, 0)

	subscriber, err := svc.Create(CreateSubscriberInput{Email: "foo@bar.com"})
	require.NoError(t, err)
	assert.Equal(t, "Foo", subscriber.FirstName)

	subscriber, err = svc.Create(CreateSubscriberInput{Email: "john.smith99@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Johnsmith", subscriber.FirstName)

	// A provided name is never overridden.
	subscriber, err = svc.Create(CreateSubscriberInput{
		Email:    "ada@example.com",
		LastName: "Lovelace",
	})
	require.NoError(t, err)
	assert.Empty(t, subscriber.FirstName)
	assert.Equal(t, "Lovelace", subscriber.LastName)
}

func TestConfirmIsIdempotent(t *testing.T) {
	svc := newSubscriberService(t, 0)

	subscriber, err := svc.Create(CreateSubscriberInput{Email: "confirm@example.com"})
	require.NoError(t, err)

	changed, err := svc.Confirm(subscriber.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.Confirm(subscriber.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err := svc.Get(subscriber.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, stored.Status)
}

func TestUnsubscribeByKey(t *testing.T) {
	svc := newSubscriberService(t, 0)

	subscriber, err := svc.Create(CreateSubscriberInput{Email: "leave@example.com"})
	require.NoError(t, err)

	_, err = svc.GetByEmailAndKey("leave@example.com", "wrong-key")
	assert.ErrorIs(t, err, ErrInvalidKey)

	found, err := svc.GetByEmailAndKey("leave@example.com", subscriber.UnsubscribeKey)
	require.NoError(t, err)
	require.NoError(t, svc.Unsubscribe(found.ID))

	stored, err := svc.Get(subscriber.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnsubscribed, stored.Status)
}

func TestSubscriberStatsAndList(t *testing.T) {
	svc := newSubscriberService(t, 0)

	a, err := svc.Create(CreateSubscriberInput{Email: "a@example.com", FirstName: "Alice"})
	require.NoError(t, err)
	_, err = svc.Create(CreateSubscriberInput{Email: "b@example.com", FirstName: "Bob"})
	require.NoError(t, err)
	c, err := svc.Create(CreateSubscriberInput{Email: "c@example.com", FirstName: "Carol"})
	require.NoError(t, err)

	_, err = svc.Confirm(a.ID)
	require.NoError(t, err)
	_, err = svc.Confirm(c.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Unsubscribe(c.ID))

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Confirmed)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Unsubscribed)

	confirmed, err := svc.Confirmed()
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, "a@example.com", confirmed[0].Email)

	results, total, err := svc.List(ListSubscribersFilters{Search: "bob"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, "b@example.com", results[0].Email)

	results, total, err = svc.List(ListSubscribersFilters{Status: model.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, "b@example.com", results[0].Email)
}

func TestGenerateMissingKeys(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriberService(db, plan.PlanLimits{})

	require.NoError(t, db.Create(&model.Subscriber{
		Email:  "legacy@example.com",
		Status: model.StatusConfirmed,
	}).Error)
	_, err := svc.Create(CreateSubscriberInput{Email: "fresh@example.com"})
	require.NoError(t, err)

	updated, err := svc.GenerateMissingKeys()
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	var legacy model.Subscriber
	require.NoError(t, db.Where("email = ?", "legacy@example.com").First(&legacy).Error)
	assert.NotEmpty(t, legacy.UnsubscribeKey)
}

func TestCountCreatedSince(t *testing.T) {
	svc := newSubscriberService(t, 0)

	_, err := svc.Create(CreateSubscriberInput{Email: "recent@example.com"})
	require.NoError(t, err)

	count, err := svc.CountCreatedSince(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = svc.CountCreatedSince(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
