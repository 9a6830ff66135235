package sim

// Event is a scheduled login attempt for one actor.
type Event struct {
	Time    float64   // virtual fire time (seconds)
	ActorID int       // index of the actor in Simulator.Actors
	Kind    ActorKind // declared kind of the actor at schedule time
}

// EventQueue implements heap.Interface with deterministic ordering.
// Order by: fire time → actor ID. Two events never compare equal because
// an actor has at most one pending event.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue []Event

func (eq EventQueue) Len() int { return len(eq) }

func (eq EventQueue) Less(i, j int) bool {
	if eq[i].Time != eq[j].Time {
		return eq[i].Time < eq[j].Time
	}
	return eq[i].ActorID < eq[j].ActorID
}

func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(Event))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}
