package actor

import "errors"

// ID identifies an actor inside one registry. IDs are assigned in insertion
// order and never reused within a world.
type ID int

// NoID marks an absent reference, e.g. an actor without an owner.
const NoID ID = -1

// Kind distinguishes the roles an actor can play.
type Kind int

const (
	KindPlayer Kind = iota
	KindPet
	KindEnemy
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindPet:
		return "pet"
	case KindEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

var (
	// ErrActionListLoop is returned when a decision re-enters an action list
	// it is already evaluating.
	ErrActionListLoop = errors.New("action list in infinite loop")
	// ErrUnknownAction is returned when an action list names an ability the
	// actor does not have.
	ErrUnknownAction = errors.New("unknown action")
)

// Registry owns every actor of a world. Actors refer to each other by ID.
type Registry struct {
	actors []*Actor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a and assigns its ID.
func (r *Registry) Add(a *Actor) ID {
	a.ID = ID(len(r.actors))
	a.registry = r
	r.actors = append(r.actors, a)
	return a.ID
}

// Get returns the actor with the given ID or nil.
func (r *Registry) Get(id ID) *Actor {
	if r == nil || id < 0 || int(id) >= len(r.actors) {
		return nil
	}
	return r.actors[id]
}

// Find returns the first actor with the given name.
func (r *Registry) Find(name string) *Actor {
	for _, a := range r.actors {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// All returns every registered actor in ID order.
func (r *Registry) All() []*Actor {
	return r.actors
}

// Enemies returns the living enemies in ID order.
func (r *Registry) Enemies() []*Actor {
	var out []*Actor
	for _, a := range r.actors {
		if a.Kind == KindEnemy && !a.sleeping {
			out = append(out, a)
		}
	}
	return out
}

// Demise puts a to sleep and notifies everyone else.
func (r *Registry) Demise(a *Actor) {
	a.Demise()
}

func (r *Registry) notifyRemoved(dead *Actor) {
	for _, a := range r.actors {
		if a == dead {
			continue
		}
		if td := a.targetData[dead.ID]; td != nil {
			td.cancelDots()
		}
		for _, fn := range a.removed {
			fn(a, dead)
		}
	}
}
