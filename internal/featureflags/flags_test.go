package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabled_AbsoluteValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=TRUE,d=false,e=1,f=0,g=maybe")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, 1), name)
	}
	for _, name := range []string{"b", "d", "f", "g", "missing"} {
		assert.False(t, m.Enabled(name, 1), name)
	}
}

func TestEnabled_Rollout(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,broken=x%")

	assert.True(t, m.Enabled("always", 1))
	assert.False(t, m.Enabled("never", 1))
	assert.False(t, m.Enabled("broken", 1))
	assert.False(t, m.Enabled("canary", 0), "anonymous users never fall in a rollout")

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42), "rollout is stable per user")
	}

	on := 0
	for id := uint(1); id <= 1000; id++ {
		if m.Enabled("canary", id) {
			on++
		}
	}
	assert.InDelta(t, 250, on, 80)
}

func TestDefaultsAndOverrides(t *testing.T) {
	assert.True(t, NewManager("").Enabled(CalendarICS, 0))
	assert.False(t, NewManager(" Calendar_ICS = off ").Enabled(CalendarICS, 0))

	var nilManager *Manager
	assert.False(t, nilManager.Enabled(CalendarICS, 1))
	assert.Nil(t, nilManager.List(1))
}

func TestList(t *testing.T) {
	m := NewManager(" bad ,zeta=on, =on,club_images=off")
	flags := m.List(7)

	require.Len(t, flags, 3)
	assert.Equal(t, Flag{Name: CalendarICS, Value: "on", Enabled: true}, flags[0])
	assert.Equal(t, Flag{Name: ClubImages, Value: "off", Enabled: false}, flags[1])
	assert.Equal(t, Flag{Name: "zeta", Value: "on", Enabled: true}, flags[2])
}
