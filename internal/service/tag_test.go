package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogmailer_backend/pkg/plan"
)

func TestTagCreateAndSlug(t *testing.T) {
	svc := NewTagService(newTestDB(t))

	tag, err := svc.Create("VIP Readers", "high engagement", "")
	require.NoError(t, err)
	assert.Equal(t, "vip-readers", tag.Slug)

	_, err = svc.Create("VIP Readers", "", "")
	assert.ErrorIs(t, err, ErrTagExists)
}

func TestTagAssignment(t *testing.T) {
	db := newTestDB(t)
	tags := NewTagService(db)
	subscribers := NewSubscriberService(db, plan.PlanLimits{})

	subscriber, err := subscribers.Create(CreateSubscriberInput{Email: "tagged@example.com"})
	require.NoError(t, err)
	tag, err := tags.Create("Weekly", "", "#336699")
	require.NoError(t, err)

	require.NoError(t, tags.Assign(subscriber.ID, tag.ID))
	// Repeating the assignment is a no-op.
	require.NoError(t, tags.Assign(subscriber.ID, tag.ID))

	assigned, err := tags.ForSubscriber(subscriber.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "Weekly", assigned[0].Name)

	require.NoError(t, tags.Remove(subscriber.ID, tag.ID))
	assigned, err = tags.ForSubscriber(subscriber.ID)
	require.NoError(t, err)
	assert.Empty(t, assigned)
}

func TestTagAssignUnknownSubscriber(t *testing.T) {
	db := newTestDB(t)
	tags := NewTagService(db)

	tag, err := tags.Create("Orphan", "", "")
	require.NoError(t, err)

	err = tags.Assign(9999, tag.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTagDeleteCleansAssignments(t *testing.T) {
	db := newTestDB(t)
	tags := NewTagService(db)
	subscribers := NewSubscriberService(db, plan.PlanLimits{})

	subscriber, err := subscribers.Create(CreateSubscriberInput{Email: "a@example.com"})
	require.NoError(t, err)
	tag, err := tags.Create("Doomed", "", "")
	require.NoError(t, err)
	require.NoError(t, tags.Assign(subscriber.ID, tag.ID))

	require.NoError(t, tags.Delete(tag.ID))

	assigned, err := tags.ForSubscriber(subscriber.ID)
	require.NoError(t, err)
	assert.Empty(t, assigned)

	assert.ErrorIs(t, tags.Delete(tag.ID), ErrNotFound)
}
