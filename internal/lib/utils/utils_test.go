package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDedupHash(t *testing.T) {
	morning := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	a := DedupHash("Jane@Example.com ", "Hello   there\nfriend", morning)
	b := DedupHash("jane@example.com", "hello there friend", morning.Add(10*time.Hour))
	c := DedupHash("jane@example.com", "hello there, friend", morning)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)

	t.Run("next day is a new submission", func(t *testing.T) {
		assert.NotEqual(t, a, DedupHash("jane@example.com", "hello there friend", morning.Add(24*time.Hour)))
	})

	t.Run("day is taken in UTC", func(t *testing.T) {
		detroit := time.FixedZone("EDT", -4*60*60)
		evening := time.Date(2026, 10, 14, 23, 30, 0, 0, detroit)
		assert.Equal(t, a, DedupHash("jane@example.com", "hello there friend", evening))
	})
}

func TestCountLinks(t *testing.T) {
	assert.Equal(t, 0, CountLinks("no links here, just riva.com mentioned"))
	assert.Equal(t, 1, CountLinks("see https://riva.com/pricing"))
	assert.Equal(t, 4, CountLinks("http://a.io www.b.io HTTPS://c.io https://d.io/x?y=1"))
}

func TestOptional(t *testing.T) {
	assert.Nil(t, Optional("   "))
	assert.Equal(t, "x", *Optional(" x "))
	assert.Equal(t, "", Deref(nil))
	assert.Equal(t, "x", Deref(Optional("x")))
}

func TestFirstName(t *testing.T) {
	assert.Equal(t, "Jane", FirstName("  Jane Cooper"))
	assert.Equal(t, "", FirstName(" "))
}
