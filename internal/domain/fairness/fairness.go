// Package fairness aggregates Nova Scores by demographic group.
package fairness

import (
	"math"
	"sort"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
)

// Unspecified is the group name used for partners with a blank attribute.
const Unspecified = "unspecified"

type dimension struct {
	category model.FairnessCategory
	label    string
	attr     func(model.Partner) string
}

var dimensions = []dimension{
	{model.CategoryAge, "Age Group", func(p model.Partner) string { return p.AgeGroup }},
	{model.CategoryArea, "Area Type", func(p model.Partner) string { return p.AreaType }},
	{model.CategoryGender, "Gender", func(p model.Partner) string { return p.Gender }},
	{model.CategoryEthnicity, "Ethnicity", func(p model.Partner) string { return p.Ethnicity }},
}

// Compute returns one metric per (category, group) pair. Bias is the relative
// deviation of the group average from the overall average, clamped to [-1,1].
// Output is ordered by category, then group name.
func Compute(partners []model.Partner) []model.FairnessMetric {
	if len(partners) == 0 {
		return []model.FairnessMetric{}
	}

	var total float64
	for _, p := range partners {
		total += float64(p.NovaScore)
	}
	overall := total / float64(len(partners))

	out := make([]model.FairnessMetric, 0, len(dimensions)*4)
	for _, d := range dimensions {
		type agg struct {
			sum   float64
			count int
		}
		groups := make(map[string]*agg)
		for _, p := range partners {
			g := d.attr(p)
			if g == "" {
				g = Unspecified
			}
			a, ok := groups[g]
			if !ok {
				a = &agg{}
				groups[g] = a
			}
			a.sum += float64(p.NovaScore)
			a.count++
		}

		names := make([]string, 0, len(groups))
		for g := range groups {
			names = append(names, g)
		}
		sort.Strings(names)

		for _, g := range names {
			a := groups[g]
			avg := a.sum / float64(a.count)
			out = append(out, model.FairnessMetric{
				Demographic:  d.label,
				Category:     d.category,
				Group:        g,
				AverageScore: round(avg, 2),
				Count:        a.count,
				Bias:         round(bias(avg, overall), 3),
			})
		}
	}
	return out
}

func bias(group, overall float64) float64 {
	if overall == 0 {
		return 0
	}
	return model.Clamp((group-overall)/overall, -1, 1)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
