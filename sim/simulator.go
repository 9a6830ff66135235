// sim/simulator.go
package sim

import (
	"container/heap"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/authdefense-sim/authdefense-sim/sim/trace"
)

// progressEvery controls how often the event loop logs progress.
const progressEvery = 500

// RunSummary reports how a Run ended.
type RunSummary struct {
	EventsProcessed int
	EndTime         float64 // clock value when the loop stopped
}

// Simulator is the core object that holds simulation time, the actor set, and the event loop.
type Simulator struct {
	Clock    *Clock
	Duration float64 // events with Time > Duration are never processed
	Auth     *AuthService
	// Actors is indexed by actor ID; the index is the event tie-break key.
	Actors []Actor
	// EventQueue holds at most one pending event per actor.
	EventQueue EventQueue
	Outcomes   trace.OutcomeSink

	EventsProcessed int
}

// NewSimulator creates a simulator and schedules each actor's first attempt.
// A nil outcomes sink discards records.
func NewSimulator(clock *Clock, auth *AuthService, actors []Actor, duration float64, outcomes trace.OutcomeSink) *Simulator {
	if outcomes == nil {
		outcomes = trace.Discard{}
	}
	s := &Simulator{
		Clock:      clock,
		Duration:   duration,
		Auth:       auth,
		Actors:     actors,
		EventQueue: make(EventQueue, 0, len(actors)),
		Outcomes:   outcomes,
	}
	for id := range actors {
		s.Schedule(id)
	}
	return s
}

// Schedule asks the actor for its next attempt time and queues it.
// Returns false if the actor is finished or its next attempt falls past Duration.
func (sim *Simulator) Schedule(actorID int) bool {
	actor := sim.Actors[actorID]
	t, ok := actor.NextAttemptTime(sim.Clock.Now())
	if !ok || t > sim.Duration {
		return false
	}
	heap.Push(&sim.EventQueue, Event{Time: t, ActorID: actorID, Kind: actor.Kind()})
	return true
}

// Run processes events in (time, actor ID) order until the queue is empty or
// the next event lies beyond Duration. Events exactly at Duration are processed.
// An error is returned only if an outcome sink fails.
func (sim *Simulator) Run() (RunSummary, error) {
	for len(sim.EventQueue) > 0 {
		ev := heap.Pop(&sim.EventQueue).(Event)
		if ev.Time > sim.Duration {
			break
		}
		if err := sim.Clock.AdvanceTo(ev.Time); err != nil {
			// The heap never yields an event earlier than the last one.
			panic(fmt.Sprintf("event loop: %v", err))
		}
		if err := sim.process(ev); err != nil {
			return sim.summary(), err
		}
		sim.Schedule(ev.ActorID)

		sim.EventsProcessed++
		if sim.EventsProcessed%progressEvery == 0 {
			logrus.Debugf("[t=%.0f] processed %d events", sim.Clock.Now(), sim.EventsProcessed)
		}
	}
	logrus.Infof("[t=%.3f] simulation complete: %d events", sim.Clock.Now(), sim.EventsProcessed)
	return sim.summary(), nil
}

func (sim *Simulator) process(ev Event) error {
	actor := sim.Actors[ev.ActorID]
	creds := actor.Credentials()

	res, err := sim.Auth.Login(creds.Username, creds.Password, creds.SourceIP)
	if err != nil {
		return err
	}
	actor.RecordResult(res.Success(), res.Blocked())

	err = sim.Outcomes.RecordOutcome(trace.OutcomeRecord{
		Timestamp: ev.Time,
		ActorName: actor.Name(),
		ActorKind: string(ev.Kind),
		Username:  creds.Username,
		SourceIP:  creds.SourceIP,
		Outcome:   string(res.Outcome),
		Reason:    res.Reason,
	})
	if err != nil {
		return fmt.Errorf("recording outcome for %s: %w", actor.Name(), err)
	}
	return nil
}

func (sim *Simulator) summary() RunSummary {
	return RunSummary{EventsProcessed: sim.EventsProcessed, EndTime: sim.Clock.Now()}
}
