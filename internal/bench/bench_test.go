package bench_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/example/go-hindi-bpe/internal/bench"
)

// runeCodec emits one id per non-space codepoint and decodes by plain
// concatenation.
type runeCodec struct{ name string }

func (c runeCodec) Name() string { return c.name }

func (runeCodec) Encode(s string) []int {
	var ids []int
	for _, r := range s {
		if r != ' ' {
			ids = append(ids, int(r))
		}
	}
	return ids
}

func (runeCodec) Decode(ids []int) string {
	var b strings.Builder
	for _, id := range ids {
		b.WriteRune(rune(id))
	}
	return b.String()
}

func (runeCodec) Normalize(s string) string { return strings.Join(strings.Fields(s), " ") }

func (runeCodec) Token(id int) string { return string(rune(id)) }

// pairCodec emits one id per two codepoints.
type pairCodec struct{}

func (pairCodec) Name() string { return "pairs" }

func (pairCodec) Encode(s string) []int {
	n := len([]rune(s))
	return make([]int, (n+1)/2)
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// ---------------------------------------------------------------------------
// Aggregation
// ---------------------------------------------------------------------------

func TestStats_MinMaxMean(t *testing.T) {
	durations := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
	}
	s := bench.ComputeStats(durations)

	if s.Min != 100*time.Millisecond {
		t.Errorf("want min=100ms, got %v", s.Min)
	}

	if s.Max != 300*time.Millisecond {
		t.Errorf("want max=300ms, got %v", s.Max)
	}

	if s.Mean != 200*time.Millisecond {
		t.Errorf("want mean=200ms, got %v", s.Mean)
	}
}

func TestStats_SingleRun(t *testing.T) {
	s := bench.ComputeStats([]time.Duration{150 * time.Millisecond})
	if s.Min != s.Max || s.Min != s.Mean {
		t.Errorf("single run: min/max/mean should all be equal, got min=%v max=%v mean=%v", s.Min, s.Max, s.Mean)
	}
}

func TestStats_Empty(t *testing.T) {
	if s := bench.ComputeStats(nil); s != (bench.Stats{}) {
		t.Errorf("want zero stats, got %+v", s)
	}
}

// ---------------------------------------------------------------------------
// Runs and throughput
// ---------------------------------------------------------------------------

func TestCalcThroughput(t *testing.T) {
	if got := bench.CalcThroughput(500, 500*time.Millisecond); !approx(got, 1000) {
		t.Errorf("want 1000 runes/s, got %.4f", got)
	}
	if got := bench.CalcThroughput(500, 0); got != 0 {
		t.Errorf("want 0 for zero duration, got %.4f", got)
	}
}

func TestRun_MarksColdAndCountsTokens(t *testing.T) {
	runs := bench.Run(runeCodec{}, "नमस्ते दुनिया", 3)
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	for i, r := range runs {
		if r.Index != i || r.Cold != (i == 0) {
			t.Errorf("run %d: index=%d cold=%v", i, r.Index, r.Cold)
		}
		if r.Tokens != 12 || r.Runes != 13 {
			t.Errorf("run %d: tokens=%d runes=%d, want 12/13", i, r.Tokens, r.Runes)
		}
	}

	if got := bench.Durations(runs, true); len(got) != 2 {
		t.Errorf("skipping cold run should leave 2 durations, got %d", len(got))
	}
	if got := bench.Durations(runs[:1], true); len(got) != 1 {
		t.Errorf("a single cold run is kept, got %d", len(got))
	}
}

// ---------------------------------------------------------------------------
// Latency threshold gate
// ---------------------------------------------------------------------------

func TestLatencyThreshold(t *testing.T) {
	tests := []struct {
		name      string
		mean      time.Duration
		threshold time.Duration
		wantErr   bool
	}{
		{name: "exceeds", mean: 3 * time.Millisecond, threshold: time.Millisecond, wantErr: true},
		{name: "below", mean: time.Millisecond, threshold: 2 * time.Millisecond},
		{name: "exactly at", mean: time.Millisecond, threshold: time.Millisecond},
		{name: "disabled", mean: time.Hour, threshold: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bench.CheckLatencyThreshold(tt.mean, tt.threshold)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckLatencyThreshold(%v, %v) error = %v, wantErr %v", tt.mean, tt.threshold, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Corpus analysis
// ---------------------------------------------------------------------------

func TestAnalyze(t *testing.T) {
	lines := []string{"ab ab।", "", "c"}
	rep := bench.Analyze(runeCodec{}, lines, 42, int('c'), 2)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"lines", float64(rep.Lines), 2},
		{"sentences", float64(rep.Sentences), 2},
		{"words", float64(rep.Words), 3},
		{"chars", float64(rep.Chars), 7},
		{"total tokens", float64(rep.TotalTokens), 6},
		{"unique tokens", float64(rep.UniqueTokens), 4},
		{"unknown tokens", float64(rep.UnknownTokens), 1},
		{"compression ratio", rep.CompressionRatio, 7.0 / 6.0},
		{"tokens per line", rep.TokensPerLine, 3},
		{"tokens per sentence", rep.TokensPerSentence, 3},
		{"avg word length", rep.AvgWordLength, 2},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	if rep.VocabSize != 42 {
		t.Errorf("VocabSize = %d, want 42", rep.VocabSize)
	}
	if len(rep.TopTokens) != 2 || rep.TopTokens[0].Token != "a" || rep.TopTokens[1].Token != "b" {
		t.Errorf("TopTokens = %+v, want a then b", rep.TopTokens)
	}
}

func TestAnalyze_EmptyCorpus(t *testing.T) {
	rep := bench.Analyze(runeCodec{}, nil, 10, 0, 5)
	if rep.TotalTokens != 0 || rep.CompressionRatio != 0 || len(rep.TopTokens) != 0 {
		t.Errorf("empty corpus report = %+v", rep)
	}
}

// ---------------------------------------------------------------------------
// Phrases and comparison
// ---------------------------------------------------------------------------

func TestCheckPhrases(t *testing.T) {
	results := bench.CheckPhrases(runeCodec{}, []string{"नमस्ते", "आप कैसे"})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !results[0].Exact || results[0].Accuracy != 1 {
		t.Errorf("single word should round trip exactly: %+v", results[0])
	}
	if results[1].Exact {
		t.Errorf("spaces are lost by this codec, result should not be exact: %+v", results[1])
	}
	if results[1].Accuracy != 1 {
		t.Errorf("whitespace must not reduce accuracy, got %v", results[1].Accuracy)
	}
	if got := bench.MeanAccuracy(results); got != 1 {
		t.Errorf("MeanAccuracy = %v, want 1", got)
	}
	if got := bench.MeanAccuracy(nil); got != 0 {
		t.Errorf("MeanAccuracy(nil) = %v, want 0", got)
	}
}

func TestCompare(t *testing.T) {
	lines := []string{"abcd", "", "ef"}
	rows := bench.Compare(lines, runeCodec{name: "runes"}, pairCodec{})
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Name != "runes" || rows[0].Tokens != 6 || !approx(rows[0].CompressionRatio, 1) {
		t.Errorf("runes row = %+v", rows[0])
	}
	if rows[1].Tokens != 3 || !approx(rows[1].CompressionRatio, 2) || !approx(rows[1].TokensPerLine, 1.5) {
		t.Errorf("pairs row = %+v", rows[1])
	}
}

// ---------------------------------------------------------------------------
// Output formatting
// ---------------------------------------------------------------------------

func TestFormatTable_ContainsHeaders(t *testing.T) {
	runs := []bench.RunResult{
		{Index: 0, Cold: true, Duration: 800 * time.Microsecond, Tokens: 10, Runes: 20},
		{Index: 1, Cold: false, Duration: 500 * time.Microsecond, Tokens: 10, Runes: 20},
	}
	stats := bench.ComputeStats([]time.Duration{800 * time.Microsecond, 500 * time.Microsecond})

	var buf strings.Builder
	bench.FormatTable(runs, stats, &buf)
	out := strings.ToLower(buf.String())

	for _, want := range []string{"run", "cold", "ms", "tokens", "mean", "0.800"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatJSON_IsValidJSON(t *testing.T) {
	runs := []bench.RunResult{
		{Index: 0, Cold: true, Duration: 800 * time.Millisecond, Tokens: 3},
	}
	stats := bench.ComputeStats([]time.Duration{800 * time.Millisecond})

	var buf bytes.Buffer
	bench.FormatJSON(runs, stats, &buf)

	var out struct {
		Runs  []map[string]any `json:"runs"`
		Stats map[string]any   `json:"stats"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("FormatJSON produced invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Stats["mean_ms"] != 800.0 {
		t.Errorf("mean_ms = %v, want 800", out.Stats["mean_ms"])
	}
}

func TestFormatReport(t *testing.T) {
	rep := bench.Analyze(runeCodec{}, []string{"नमस्ते दुनिया।"}, 100, -1, 3)

	var table strings.Builder
	bench.FormatReportTable(rep, &table)
	for _, want := range []string{"compression ratio", "tokens per sentence", "न"} {
		if !strings.Contains(strings.ToLower(table.String()), want) {
			t.Errorf("report table missing %q:\n%s", want, table.String())
		}
	}

	var js bytes.Buffer
	if err := bench.FormatReportJSON(rep, &js); err != nil {
		t.Fatalf("FormatReportJSON: %v", err)
	}
	var decoded bench.Report
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid report JSON: %v", err)
	}
	if decoded.TotalTokens != rep.TotalTokens {
		t.Errorf("TotalTokens = %d, want %d", decoded.TotalTokens, rep.TotalTokens)
	}
}

func TestFormatPhrasesAndCompare(t *testing.T) {
	var buf strings.Builder
	bench.FormatPhrasesTable(bench.CheckPhrases(runeCodec{}, bench.DefaultPhrases), &buf)
	if !strings.Contains(buf.String(), "mean accuracy: 100.0%") {
		t.Errorf("phrase table missing summary:\n%s", buf.String())
	}

	buf.Reset()
	bench.FormatCompareTable(bench.Compare([]string{"ab"}, pairCodec{}), &buf)
	if !strings.Contains(strings.ToLower(buf.String()), "pairs") {
		t.Errorf("compare table missing tokenizer name:\n%s", buf.String())
	}
}
