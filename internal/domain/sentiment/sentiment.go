// Package sentiment scores free text on a 0 to 5 scale using a fixed
// weighted lexicon.
package sentiment

import (
	"math"
	"sort"
	"strings"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
	"golang.org/x/text/cases"
)

// Scale constants.
const (
	Neutral  = 2.5
	MaxScore = 5.0

	rawBound          = 2.0
	positiveThreshold = 3.5
	negativeThreshold = 1.5
)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithMarkers replaces the lexicon. Weights are clamped to [-1,1] and
// blank phrases are ignored.
func WithMarkers(markers ...Marker) Option {
	return func(a *Analyzer) {
		a.markers = compile(markers)
	}
}

// Analyzer scores text against a lexicon. It holds no mutable state and is
// safe for concurrent use.
type Analyzer struct {
	markers []Marker
}

// New builds an Analyzer with the default lexicon unless overridden.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	if a.markers == nil {
		all := make([]Marker, 0, len(PositiveMarkers)+len(NegativeMarkers))
		all = append(all, PositiveMarkers...)
		all = append(all, NegativeMarkers...)
		a.markers = compile(all)
	}
	return a
}

// compile folds phrases and fixes the summation order so equal texts always
// produce bit-identical sums.
func compile(markers []Marker) []Marker {
	fold := cases.Fold()
	out := make([]Marker, 0, len(markers))
	for _, m := range markers {
		p := strings.TrimSpace(fold.String(m.Phrase))
		if p == "" {
			continue
		}
		out = append(out, Marker{Phrase: p, Weight: model.Clamp(m.Weight, -1, 1)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Phrase < out[j].Phrase })
	return out
}

// Analyze returns the sentiment of text in [0,5], rounded to one decimal.
// Blank text is neutral. Every marker found in the text fires once.
func (a *Analyzer) Analyze(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return Neutral
	}
	// A Caser keeps state between calls, so each call gets its own.
	folded := cases.Fold().String(text)

	raw := 0.0
	for _, m := range a.markers {
		if strings.Contains(folded, m.Phrase) {
			raw += m.Weight
		}
	}
	normalized := model.Clamp(raw, -rawBound, rawBound) / rawBound
	return math.Round((normalized+1)*Neutral*10) / 10
}

// Average returns the mean sentiment of comments. ok is false when there are
// no comments to average.
func (a *Analyzer) Average(comments []string) (avg float64, ok bool) {
	if len(comments) == 0 {
		return Neutral, false
	}
	sum := 0.0
	for _, c := range comments {
		sum += a.Analyze(c)
	}
	return sum / float64(len(comments)), true
}

// Categorize buckets a sentiment score.
func Categorize(score float64) model.SentimentCategory {
	switch {
	case score > positiveThreshold:
		return model.SentimentPositive
	case score < negativeThreshold:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

var defaultAnalyzer = New()

// Analyze scores text with the default lexicon.
func Analyze(text string) float64 {
	return defaultAnalyzer.Analyze(text)
}

// Default returns the shared default-lexicon analyzer.
func Default() *Analyzer {
	return defaultAnalyzer
}
