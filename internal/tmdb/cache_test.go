package tmdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetGet(t *testing.T) {
	c := newCache[*Movie](time.Hour)

	_, ok := c.get(550)
	assert.False(t, ok)

	c.set(550, &Movie{ID: 550, Title: "Fight Club"})
	got, ok := c.get(550)
	assert.True(t, ok)
	assert.Equal(t, "Fight Club", got.Title)
}

func TestCache_Expired(t *testing.T) {
	c := newCache[*TVShow](-time.Second)
	c.set(1, &TVShow{ID: 1})

	_, ok := c.get(1)
	assert.False(t, ok)
}
