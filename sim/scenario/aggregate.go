package scenario

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/authdefense-sim/authdefense-sim/sim/actor"
	"github.com/authdefense-sim/authdefense-sim/sim/trace"
)

// Summary files written by AnalyzeSweep.
const (
	SummaryFile           = "summary.csv"
	AggregatedSummaryFile = "summary_aggregated.csv"
)

// TrialSummary joins a trial's metadata with its metrics.
type TrialSummary struct {
	Meta    TrialMeta
	Metrics trace.TrialMetrics
}

// AggregateRow holds mean and sample standard deviation across the seeds of
// one (defense, parameter, attacker model) group.
type AggregateRow struct {
	Defense              string
	ParamName            string
	ParamValue           string
	AttackerModel        AttackerModel
	NTrials              int
	MeanCompromise       float64
	StdCompromise        float64
	MeanBlockRate        float64
	StdBlockRate         float64
	MeanImpactedPct      float64
	StdImpactedPct       float64
	MeanTimeToCompromise float64
}

// AnalyzeSweep reads every trial listed in dir's metadata, computes its metrics,
// aggregates them, and writes summary.csv and summary_aggregated.csv into dir.
// A positive duration overrides the per-trial duration recorded in the metadata.
// Trials whose directory is missing are skipped with a warning.
func AnalyzeSweep(dir string, duration float64) ([]TrialSummary, []AggregateRow, error) {
	metas, err := ReadMetadata(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, nil, err
	}

	summaries := make([]TrialSummary, 0, len(metas))
	for _, meta := range metas {
		trialDir := TrialDir(dir, meta.TrialID)
		if _, err := os.Stat(trialDir); errors.Is(err, os.ErrNotExist) {
			logrus.Warnf("analyze: %s not found, skipping", trialDir)
			continue
		}
		records, err := trace.ReadDetailLog(filepath.Join(trialDir, DetailLogFile))
		if err != nil {
			return nil, nil, err
		}
		span := meta.Duration
		if duration > 0 {
			span = duration
		}
		if span <= 0 {
			logrus.Warnf("analyze: no duration for trial %d; pass --duration", meta.TrialID)
		}
		summaries = append(summaries, TrialSummary{
			Meta:    meta,
			Metrics: trace.Analyze(records, span, actor.VictimUsername),
		})
	}

	rows := Aggregate(summaries)
	if len(summaries) > 0 {
		if err := writeSummaries(filepath.Join(dir, SummaryFile), summaries); err != nil {
			return nil, nil, err
		}
		if err := writeAggregates(filepath.Join(dir, AggregatedSummaryFile), rows); err != nil {
			return nil, nil, err
		}
	}
	return summaries, rows, nil
}

// Aggregate groups trial summaries by (defense, param name, param value,
// attacker model) in first-seen order.
func Aggregate(summaries []TrialSummary) []AggregateRow {
	type groupKey struct {
		defense, paramName, paramValue string
		model                          AttackerModel
	}
	var order []groupKey
	groups := make(map[groupKey][]trace.TrialMetrics)
	for _, s := range summaries {
		k := groupKey{s.Meta.Defense, s.Meta.ParamName, s.Meta.ParamValue, s.Meta.AttackerModel}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], s.Metrics)
	}

	rows := make([]AggregateRow, 0, len(order))
	for _, k := range order {
		ms := groups[k]
		pick := func(f func(trace.TrialMetrics) float64) []float64 {
			vals := make([]float64, len(ms))
			for i, m := range ms {
				vals[i] = f(m)
			}
			return vals
		}
		compromise := pick(func(m trace.TrialMetrics) float64 { return m.CompromiseRate })
		block := pick(func(m trace.TrialMetrics) float64 { return m.BlockRate })
		impacted := pick(func(m trace.TrialMetrics) float64 { return m.ImpactedUsersPct })
		ttc := pick(func(m trace.TrialMetrics) float64 { return m.TimeToCompromise })

		rows = append(rows, AggregateRow{
			Defense:              k.defense,
			ParamName:            k.paramName,
			ParamValue:           k.paramValue,
			AttackerModel:        k.model,
			NTrials:              len(ms),
			MeanCompromise:       mean(compromise),
			StdCompromise:        sampleStdDev(compromise),
			MeanBlockRate:        mean(block),
			StdBlockRate:         sampleStdDev(block),
			MeanImpactedPct:      mean(impacted),
			StdImpactedPct:       sampleStdDev(impacted),
			MeanTimeToCompromise: mean(ttc),
		})
	}
	return rows
}

// Print displays aggregated rows.
func (r AggregateRow) Print() {
	fmt.Printf("\n%s: %s=%s (attacker=%s, n=%d)\n", r.Defense, r.ParamName, r.ParamValue, r.AttackerModel, r.NTrials)
	fmt.Printf("  Compromise: %.2f%% +/- %.2f%%\n", r.MeanCompromise*100, r.StdCompromise*100)
	fmt.Printf("  Block rate: %.2f%% +/- %.2f%%\n", r.MeanBlockRate*100, r.StdBlockRate*100)
	fmt.Printf("  Users hit:  %.2f%% +/- %.2f%%\n", r.MeanImpactedPct*100, r.StdImpactedPct*100)
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// sampleStdDev returns the n-1 standard deviation, or 0 for fewer than two values.
func sampleStdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	ss := 0.0
	for _, v := range vals {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeSummaries(path string, summaries []TrialSummary) error {
	header := []string{
		"trial_id", "defense", "param_name", "param_value", "seed", "attacker_model",
		"compromise_rate", "time_to_compromise", "block_rate", "impacted_users_pct",
		"throughput", "non_victim_compromised",
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			strconv.Itoa(s.Meta.TrialID), s.Meta.Defense, s.Meta.ParamName, s.Meta.ParamValue,
			strconv.Itoa(s.Meta.Seed), string(s.Meta.AttackerModel),
			formatFloat(s.Metrics.CompromiseRate), formatFloat(s.Metrics.TimeToCompromise),
			formatFloat(s.Metrics.BlockRate), formatFloat(s.Metrics.ImpactedUsersPct),
			formatFloat(s.Metrics.Throughput), strconv.Itoa(s.Metrics.NonTargetCompromised),
		})
	}
	return writeCSV(path, header, rows)
}

func writeAggregates(path string, aggs []AggregateRow) error {
	header := []string{
		"defense", "param_name", "param_value", "attacker_model", "n_trials",
		"mean_compromise_rate", "std_compromise_rate", "mean_block_rate", "std_block_rate",
		"mean_impacted_pct", "std_impacted_pct", "mean_time_to_compromise",
	}
	rows := make([][]string, 0, len(aggs))
	for _, a := range aggs {
		rows = append(rows, []string{
			a.Defense, a.ParamName, a.ParamValue, string(a.AttackerModel), strconv.Itoa(a.NTrials),
			formatFloat(a.MeanCompromise), formatFloat(a.StdCompromise),
			formatFloat(a.MeanBlockRate), formatFloat(a.StdBlockRate),
			formatFloat(a.MeanImpactedPct), formatFloat(a.StdImpactedPct),
			formatFloat(a.MeanTimeToCompromise),
		})
	}
	return writeCSV(path, header, rows)
}
