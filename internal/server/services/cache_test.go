package services

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/truthchain/internal/server/models"
	"github.com/stretchr/testify/assert"
)

func TestListingCache(t *testing.T) {
	c := NewListingCache(time.Minute)

	_, gen, ok := c.Get()
	assert.False(t, ok)

	recs := []*models.Record{{ID: "a"}}
	assert.True(t, c.Set(gen, recs))

	got, _, ok := c.Get()
	assert.True(t, ok)
	assert.Equal(t, recs, got)

	c.Invalidate()
	_, _, ok = c.Get()
	assert.False(t, ok)
}

func TestListingCache_StaleSetIsDropped(t *testing.T) {
	c := NewListingCache(time.Minute)

	_, gen, ok := c.Get()
	assert.False(t, ok)

	// a record is created while the listing is being read
	c.Invalidate()

	assert.False(t, c.Set(gen, []*models.Record{{ID: "stale"}}))
	_, gen, ok = c.Get()
	assert.False(t, ok)

	fresh := []*models.Record{{ID: "new"}, {ID: "stale"}}
	assert.True(t, c.Set(gen, fresh))
	got, _, ok := c.Get()
	assert.True(t, ok)
	assert.Equal(t, fresh, got)
}

func TestListingCache_Expires(t *testing.T) {
	c := NewListingCache(10 * time.Millisecond)
	_, gen, _ := c.Get()
	c.Set(gen, []*models.Record{{ID: "a"}})

	assert.Eventually(t, func() bool {
		_, _, ok := c.Get()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestListingCache_DisabledAndNil(t *testing.T) {
	for _, c := range []*ListingCache{NewListingCache(0), nil} {
		assert.False(t, c.Set(0, []*models.Record{{ID: "a"}}))
		_, _, ok := c.Get()
		assert.False(t, ok)
		c.Invalidate()
	}
}
