package actuator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-dragonstage/internal/rig"
)

func TestBurstTurnsOffAfterDuration(t *testing.T) {
	r := rig.New()
	s := NewScheduler(r, 50*time.Millisecond)

	start := time.Now()
	require.True(t, s.Burst(rig.DragonLeft))
	assert.Less(t, time.Since(start), 20*time.Millisecond, "burst must not block")
	assert.True(t, r.Smoke(rig.DragonLeft))
	assert.False(t, r.Smoke(rig.DragonRight))

	require.Eventually(t, func() bool { return !r.Smoke(rig.DragonLeft) }, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.False(t, r.Smoke(rig.DragonRight))
	assert.False(t, s.Active(rig.DragonLeft))
}

func TestBurstWhileActiveIsIgnored(t *testing.T) {
	r := rig.New()
	s := NewScheduler(r, time.Hour)
	require.True(t, s.Burst(rig.DragonRight))
	assert.False(t, s.Burst(rig.DragonRight))
	assert.True(t, s.Burst(rig.DragonLeft))
	s.CancelAll()
}

func TestCancelForcesOffAndStaleTimerIsHarmless(t *testing.T) {
	r := rig.New()
	s := NewScheduler(r, time.Hour)

	var fire []func()
	s.afterFunc = func(d time.Duration, f func()) *time.Timer {
		fire = append(fire, f)
		return time.NewTimer(time.Hour)
	}

	require.True(t, s.Burst(rig.DragonLeft))
	s.Cancel(rig.DragonLeft)
	assert.False(t, r.Smoke(rig.DragonLeft))

	require.True(t, s.Burst(rig.DragonLeft))
	assert.True(t, r.Smoke(rig.DragonLeft))

	// the first burst's completion arrives late
	fire[0]()
	assert.True(t, r.Smoke(rig.DragonLeft), "stale completion must not end the new burst")

	fire[1]()
	assert.False(t, r.Smoke(rig.DragonLeft))
}

func TestClosedSchedulerRefuses(t *testing.T) {
	r := rig.New()
	s := NewScheduler(r, 0)
	assert.Equal(t, DefaultBurst, s.Duration())
	require.NoError(t, s.Close())
	assert.False(t, s.Burst(rig.DragonLeft))
	assert.False(t, r.Smoke(rig.DragonLeft))
}
