package effects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateSwitchRejectsSameTimestamp(t *testing.T) {
	s := NewStateSwitch("burn_phase")
	assert.False(t, s.On())
	assert.Equal(t, time.Duration(0), s.Duration(0))

	assert.True(t, s.Enable(0))
	assert.True(t, s.On())
	assert.False(t, s.Enable(0))

	assert.True(t, s.Disable(0))
	assert.False(t, s.Disable(0))
	assert.False(t, s.Enable(0))

	assert.True(t, s.Enable(time.Second))
	assert.Equal(t, 2*time.Second, s.Duration(3*time.Second))
	assert.Equal(t, 2, s.Count())
}

func TestStateSwitchTotalAndReset(t *testing.T) {
	s := NewStateSwitch("pyro_chain")
	s.Enable(time.Second)
	s.Disable(4 * time.Second)
	s.Enable(10 * time.Second)
	assert.Equal(t, 5*time.Second, s.Total(12*time.Second))

	s.Reset()
	assert.False(t, s.On())
	assert.Equal(t, 0, s.Count())
	assert.True(t, s.Enable(10*time.Second))
}

func TestTimer(t *testing.T) {
	tm := &Timer{Name: "combustion", Duration: 45 * time.Second}
	assert.True(t, tm.Ready(0))
	tm.Start(5 * time.Second)
	assert.False(t, tm.Ready(10*time.Second))
	assert.Equal(t, 40*time.Second, tm.Remaining(10*time.Second))
	tm.Adjust(10*time.Second, -time.Minute)
	assert.True(t, tm.Ready(10*time.Second))
	tm.Clear()
	assert.Equal(t, time.Duration(0), tm.ReadyAt())
}
