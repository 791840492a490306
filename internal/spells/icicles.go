package spells

import (
	"slices"
	"time"

	"wod-mage-sim/internal/actor"
)

// icicleVolleyDelay is the gap between ice lance and the first icicle.
const icicleVolleyDelay = 250 * time.Millisecond

type icicle struct {
	amount  float64
	created time.Duration
}

func (m *Mage) icicleAction() *actor.Action {
	ic := m.newBackground("icicle", "icicle", actor.SchoolFrost)
	ic.MayCrit = false
	ic.IgnoreMultipliers = true
	return ic
}

// Icicles returns the number of stored icicles that have not melted.
func (m *Mage) Icicles() int {
	now := m.Now()
	n := 0
	for _, ic := range m.icicles {
		if now-ic.created < m.icicleLifetime {
			n++
		}
	}
	return n
}

// gainIcicle stores a new icicle. A full store launches its oldest icicle
// at target first.
func (m *Mage) gainIcicle(target *actor.Actor, amount float64) {
	if m.Icicles() >= m.icicleMax {
		if ic, ok := m.drawIcicle(); ok {
			m.launchIcicle(target, ic)
		}
	}
	m.icicles = append(m.icicles, icicle{amount: amount, created: m.Now()})
	m.Logf("ICICLE_GAIN", "%.0f (%d stored)", amount, len(m.icicles))
}

// drawIcicle removes and returns the oldest icicle that has not melted.
// Melted icicles in front of it are discarded.
func (m *Mage) drawIcicle() (icicle, bool) {
	now := m.Now()
	for len(m.icicles) > 0 {
		ic := m.icicles[0]
		m.icicles = slices.Delete(m.icicles, 0, 1)
		if now-ic.created < m.icicleLifetime {
			return ic, true
		}
	}
	return icicle{}, false
}

func (m *Mage) launchIcicle(target *actor.Actor, ic icicle) {
	if target == nil || target.Sleeping() {
		return
	}
	s := m.icicle.NewState(target)
	s.Fixed = ic.amount
	m.icicle.Execute(s)
}

// startIcicleVolley draws the oldest icicle and launches it, then every other
// stored icicle, at target one after the other. Both gaps scale with spell
// speed. A volley already in flight keeps going and absorbs new icicles.
func (m *Mage) startIcicleVolley(target *actor.Actor) {
	if m.icicleEvent.Pending() {
		return
	}
	ic, ok := m.drawIcicle()
	if !ok {
		return
	}
	m.icicleEvent = m.Schedule(m.hasted(icicleVolleyDelay), "icicle volley", func() { m.volley(target, ic) })
}

func (m *Mage) volley(target *actor.Actor, ic icicle) {
	m.icicleEvent = nil
	if target.Sleeping() {
		return
	}
	m.launchIcicle(target, ic)
	next, ok := m.drawIcicle()
	if !ok {
		return
	}
	m.icicleEvent = m.Schedule(m.hasted(m.icicleInterval), "icicle volley", func() { m.volley(target, next) })
}

func (m *Mage) hasted(d time.Duration) time.Duration {
	return time.Duration(float64(d) * m.Attr.SpellSpeed())
}
