// Package bench measures and reports tokenizer quality and speed: encode
// latency, corpus compression statistics, phrase round trips and
// comparisons against a reference tokenizer.
package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/olekukonko/tablewriter"
)

// Encoder is anything that maps text to token IDs.
type Encoder interface {
	Encode(text string) []int
}

// ---------------------------------------------------------------------------
// Run result and stats
// ---------------------------------------------------------------------------

// RunResult holds the timing and output size for a single encode run.
type RunResult struct {
	Index    int
	Cold     bool // true for the first run (cold-start)
	Duration time.Duration
	Tokens   int
	Runes    int
	// Throughput is input codepoints encoded per second.
	Throughput float64
}

// Stats holds aggregate timing statistics across all runs.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean over a slice of durations.
// An empty slice yields zero Stats.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

// CalcThroughput returns runes / elapsed seconds. Returns 0 if elapsed is
// zero to avoid division by zero.
func CalcThroughput(runes int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(runes) / elapsed.Seconds()
}

// Run encodes text n times and records each run. The first run is marked
// cold.
func Run(enc Encoder, text string, n int) []RunResult {
	runes := utf8.RuneCountInString(text)
	out := make([]RunResult, 0, n)
	for i := 0; i < n; i++ {
		start := time.Now()
		ids := enc.Encode(text)
		d := time.Since(start)
		out = append(out, RunResult{
			Index:      i,
			Cold:       i == 0,
			Duration:   d,
			Tokens:     len(ids),
			Runes:      runes,
			Throughput: CalcThroughput(runes, d),
		})
	}
	return out
}

// Durations extracts run durations, optionally skipping the cold run.
func Durations(runs []RunResult, skipCold bool) []time.Duration {
	out := make([]time.Duration, 0, len(runs))
	for _, r := range runs {
		if skipCold && r.Cold && len(runs) > 1 {
			continue
		}
		out = append(out, r.Duration)
	}
	return out
}

// ---------------------------------------------------------------------------
// Latency threshold gate
// ---------------------------------------------------------------------------

// CheckLatencyThreshold returns an error if mean exceeds threshold.
// A threshold of 0 disables the gate.
func CheckLatencyThreshold(mean, threshold time.Duration) error {
	if threshold <= 0 {
		return nil
	}
	if mean > threshold {
		return fmt.Errorf("mean encode latency %s exceeds threshold %s", mean, threshold)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Output formatters
// ---------------------------------------------------------------------------

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	return table
}

func ms(d time.Duration) string {
	return strconv.FormatFloat(float64(d.Microseconds())/1000, 'f', 3, 64)
}

// FormatTable writes a human-readable table of bench results to w.
func FormatTable(runs []RunResult, stats Stats, w io.Writer) {
	table := newTable(w, "Run", "Cold", "MS", "Tokens", "Runes/s")
	for _, r := range runs {
		cold := ""
		if r.Cold {
			cold = "yes"
		}
		table.Append([]string{
			strconv.Itoa(r.Index + 1),
			cold,
			ms(r.Duration),
			strconv.Itoa(r.Tokens),
			strconv.FormatFloat(r.Throughput, 'f', 0, 64),
		})
	}
	table.Append([]string{"min", "", ms(stats.Min), "", ""})
	table.Append([]string{"mean", "", ms(stats.Mean), "", ""})
	table.Append([]string{"max", "", ms(stats.Max), "", ""})
	table.Render()
}

// jsonReport is the top-level JSON structure emitted by FormatJSON.
type jsonReport struct {
	Runs  []jsonRun `json:"runs"`
	Stats jsonStats `json:"stats"`
}

type jsonRun struct {
	Index      int     `json:"index"`
	Cold       bool    `json:"cold"`
	DurationMS float64 `json:"duration_ms"`
	Tokens     int     `json:"tokens"`
	Runes      int     `json:"runes"`
	Throughput float64 `json:"runes_per_sec"`
}

type jsonStats struct {
	MinMS  float64 `json:"min_ms"`
	MeanMS float64 `json:"mean_ms"`
	MaxMS  float64 `json:"max_ms"`
}

func msFloat(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

// FormatJSON writes a JSON report of bench results to w.
func FormatJSON(runs []RunResult, stats Stats, w io.Writer) {
	jr := jsonReport{
		Runs: make([]jsonRun, len(runs)),
		Stats: jsonStats{
			MinMS:  msFloat(stats.Min),
			MeanMS: msFloat(stats.Mean),
			MaxMS:  msFloat(stats.Max),
		},
	}
	for i, r := range runs {
		jr.Runs[i] = jsonRun{
			Index:      r.Index,
			Cold:       r.Cold,
			DurationMS: msFloat(r.Duration),
			Tokens:     r.Tokens,
			Runes:      r.Runes,
			Throughput: r.Throughput,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(jr)
}
