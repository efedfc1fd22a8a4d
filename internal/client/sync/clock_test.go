package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_NextIsStrictlyIncreasing(t *testing.T) {
	now := int64(1000)
	c := &Clock{now: func() time.Time { return time.UnixMilli(now) }}

	assert.Equal(t, int64(1000), c.Next())
	assert.Equal(t, int64(1001), c.Next(), "a frozen wall clock still advances the logical clock")

	now = 5000
	assert.Equal(t, int64(5000), c.Next())
}

func TestClock_ObserveRaisesFloor(t *testing.T) {
	c := &Clock{now: func() time.Time { return time.UnixMilli(1000) }}

	c.Observe(2000)
	assert.Equal(t, int64(2001), c.Next(), "new stamps must order after every observed remote stamp")

	c.Observe(500)
	assert.Equal(t, int64(2002), c.Next(), "older observations never rewind the clock")
}
