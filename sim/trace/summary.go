package trace

import (
	"fmt"
	"sort"
)

// TrialMetrics summarizes one trial's security/usability tradeoff.
type TrialMetrics struct {
	Compromised          bool    `json:"compromised"`            // an attacker logged into the target account
	TimeToCompromise     float64 `json:"time_to_compromise"`     // first attacker success on target; duration if never
	CompromiseRate       float64 `json:"compromise_rate"`        // target successes / attacker attempts
	NonTargetCompromised int     `json:"non_target_compromised"` // distinct other accounts an attacker logged into
	BlockRate            float64 `json:"block_rate"`             // blocked user attempts / user attempts
	ImpactedUsersPct     float64 `json:"impacted_users_pct"`     // users blocked at least once / users seen
	Throughput           float64 `json:"throughput"`             // attempts per virtual second
	TotalEvents          int     `json:"total_events"`
	AttackerEvents       int     `json:"attacker_events"`
	UserEvents           int     `json:"user_events"`
}

// Analyze computes TrialMetrics from an ordered outcome log.
// target is the account whose compromise is the headline result.
// Safe for nil or empty logs (returns zero-value rates).
func Analyze(records []OutcomeRecord, duration float64, target string) TrialMetrics {
	m := TrialMetrics{TimeToCompromise: duration, TotalEvents: len(records)}

	var targetSuccesses, userBlocked int
	otherAccounts := make(map[string]bool)
	users := make(map[string]bool)
	blockedUsers := make(map[string]bool)

	for _, r := range records {
		switch r.ActorKind {
		case KindAttacker:
			m.AttackerEvents++
			if r.Outcome != OutcomeSuccess {
				continue
			}
			if r.Username == target {
				targetSuccesses++
				if !m.Compromised || r.Timestamp < m.TimeToCompromise {
					m.TimeToCompromise = r.Timestamp
				}
				m.Compromised = true
			} else {
				otherAccounts[r.Username] = true
			}
		case KindUser:
			m.UserEvents++
			users[r.ActorName] = true
			if r.Outcome == OutcomeBlocked {
				userBlocked++
				blockedUsers[r.ActorName] = true
			}
		}
	}

	m.NonTargetCompromised = len(otherAccounts)
	if m.AttackerEvents > 0 {
		m.CompromiseRate = float64(targetSuccesses) / float64(m.AttackerEvents)
	}
	if m.UserEvents > 0 {
		m.BlockRate = float64(userBlocked) / float64(m.UserEvents)
	}
	if len(users) > 0 {
		m.ImpactedUsersPct = float64(len(blockedUsers)) / float64(len(users))
	}
	if duration > 0 {
		m.Throughput = float64(len(records)) / duration
	}
	return m
}

// OutcomeCounts tallies outcomes per actor kind, with blocked attempts keyed
// as "blocked/<reason>".
func OutcomeCounts(records []OutcomeRecord) map[string]map[string]int {
	counts := make(map[string]map[string]int)
	for _, r := range records {
		key := r.Outcome
		if r.Outcome == OutcomeBlocked && r.Reason != "" {
			key = r.Outcome + "/" + r.Reason
		}
		if counts[r.ActorKind] == nil {
			counts[r.ActorKind] = make(map[string]int)
		}
		counts[r.ActorKind][key]++
	}
	return counts
}

// Print displays trial metrics and outcome counts.
func (m TrialMetrics) Print(records []OutcomeRecord) {
	fmt.Println("=== Trial Metrics ===")
	fmt.Printf("Total Events         : %d (attacker %d, user %d)\n", m.TotalEvents, m.AttackerEvents, m.UserEvents)
	fmt.Printf("Target Compromised   : %v\n", m.Compromised)
	fmt.Printf("Time To Compromise   : %.2f s\n", m.TimeToCompromise)
	fmt.Printf("Compromise Rate      : %.4f\n", m.CompromiseRate)
	fmt.Printf("Other Accounts Lost  : %d\n", m.NonTargetCompromised)
	fmt.Printf("User Block Rate      : %.2f%%\n", m.BlockRate*100)
	fmt.Printf("Users Impacted       : %.2f%%\n", m.ImpactedUsersPct*100)
	fmt.Printf("Throughput           : %.4f attempts/s\n", m.Throughput)

	counts := OutcomeCounts(records)
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		outcomes := make([]string, 0, len(counts[kind]))
		for o := range counts[kind] {
			outcomes = append(outcomes, o)
		}
		sort.Strings(outcomes)
		for _, o := range outcomes {
			fmt.Printf("  %-8s %-22s: %d\n", kind, o, counts[kind][o])
		}
	}
}
