package trace

// OutcomeSink accepts outcome records in event processing order.
type OutcomeSink interface {
	RecordOutcome(OutcomeRecord) error
}

// AuthSink accepts auth service records in invocation order.
type AuthSink interface {
	RecordAuth(AuthRecord) error
}

// SimulationTrace collects records in memory. It satisfies both sinks.
type SimulationTrace struct {
	Outcomes []OutcomeRecord
	Auths    []AuthRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace() *SimulationTrace {
	return &SimulationTrace{
		Outcomes: make([]OutcomeRecord, 0),
		Auths:    make([]AuthRecord, 0),
	}
}

// RecordOutcome appends an outcome record.
func (st *SimulationTrace) RecordOutcome(r OutcomeRecord) error {
	st.Outcomes = append(st.Outcomes, r)
	return nil
}

// RecordAuth appends an auth record.
func (st *SimulationTrace) RecordAuth(r AuthRecord) error {
	st.Auths = append(st.Auths, r)
	return nil
}

// TeeOutcomes fans every outcome record out to all sinks, stopping at the first error.
type TeeOutcomes []OutcomeSink

func (t TeeOutcomes) RecordOutcome(r OutcomeRecord) error {
	for _, s := range t {
		if err := s.RecordOutcome(r); err != nil {
			return err
		}
	}
	return nil
}

// TeeAuths fans every auth record out to all sinks, stopping at the first error.
type TeeAuths []AuthSink

func (t TeeAuths) RecordAuth(r AuthRecord) error {
	for _, s := range t {
		if err := s.RecordAuth(r); err != nil {
			return err
		}
	}
	return nil
}

// Discard drops every record.
type Discard struct{}

func (Discard) RecordOutcome(OutcomeRecord) error { return nil }
func (Discard) RecordAuth(AuthRecord) error       { return nil }
