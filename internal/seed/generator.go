package seed

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MidhulKiruthik/Nova-sub000/internal/domain/model"
)

// Performance tiers shape every generated metric together, so a strong
// partner is punctual, busy and well reviewed at the same time.
type tier struct {
	name  string
	base  float64 // quality in [0,1]
	width float64
}

var tiers = []tier{
	{"average", 0.45, 0.3},
	{"average", 0.45, 0.3},
	{"average", 0.45, 0.3},
	{"high", 0.75, 0.15},
	{"high", 0.75, 0.15},
	{"elite", 0.92, 0.08},
	{"low", 0.2, 0.2},
	{"wide", 0.0, 1.0},
}

var (
	firstNames = []string{"Asha", "Bola", "Chen", "Dev", "Elif", "Farah", "Goran", "Hana", "Ivan", "Jaya", "Kofi", "Lina", "Mateo", "Nia", "Omar", "Priya"}
	lastNames  = []string{"Okafor", "Li", "Sharma", "Kowalski", "Haddad", "Mensah", "Silva", "Tanaka", "Novak", "Reyes"}
	ageGroups  = []string{"18-25", "26-35", "36-45", "46-55", "56+"}
	genders    = []string{"female", "male", "non-binary"}
	ethnicity  = []string{"Asian", "Black", "Hispanic", "White", "Mixed"}
	areaTypes  = []string{"urban", "suburban", "rural"}

	praise = []string{
		"Very punctual and friendly driver",
		"Excellent service, clean car",
		"Great conversation and smooth ride",
		"Helpful with my luggage, highly recommend",
	}
	neutral = []string{
		"Ride was okay",
		"Arrived on time",
		"Average experience overall",
	}
	complaints = []string{
		"Driver was late and rude",
		"Car was dirty and smelled bad",
		"Took a longer route, terrible experience",
	}
)

// Generator produces synthetic partners. It is not safe for concurrent use.
type Generator struct {
	rnd *rand.Rand
	now time.Time
}

// NewGenerator creates a generator. Equal seeds produce equal partners apart
// from their ids.
func NewGenerator(seed uint64, now time.Time) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: now.UTC(),
	}
}

// Generate returns n partners with unique ids.
func (g *Generator) Generate(n int) []model.Partner {
	out := make([]model.Partner, n)
	for i := range out {
		out[i] = g.partner()
	}
	return out
}

func (g *Generator) partner() model.Partner {
	t := tiers[g.rnd.IntN(len(tiers))]
	q := func() float64 {
		return model.Clamp(t.base+g.rnd.Float64()*t.width, 0, 1)
	}

	first := pick(g.rnd, firstNames)
	last := pick(g.rnd, lastNames)
	trips := 20 + int(q()*230)
	earnings := make([]float64, model.EarningsWindow)
	level := 800 + q()*2600
	for i := range earnings {
		earnings[i] = round2(level * (0.9 + g.rnd.Float64()*0.2))
	}
	forecast := make([]float64, model.ForecastWindow)
	for i := range forecast {
		forecast[i] = round2(level * (0.95 + g.rnd.Float64()*0.15))
	}

	return model.Partner{
		ID:                 uuid.NewString(),
		Name:               first + " " + last,
		Email:              strings.ToLower(fmt.Sprintf("%s.%s%d@example.com", first, last, g.rnd.IntN(1000))),
		Phone:              fmt.Sprintf("+1-555-%04d", g.rnd.IntN(10000)),
		TripVolume:         trips,
		OnTimePickupRate:   round2(0.5 + q()*0.5),
		LeavesTaken:        int((1 - q()) * 12),
		VehicleCondition:   40 + int(q()*60),
		TotalTrips:         trips * (6 + g.rnd.IntN(30)),
		AvgRating:          round2(2.5 + q()*2.5),
		CancellationRate:   round2((1 - q()) * 0.3),
		EarningsHistory:    earnings,
		ForecastedEarnings: forecast,
		MedicalStability:   g.medical(q()),
		RiskLevel:          g.risk(q()),
		AgeGroup:           pick(g.rnd, ageGroups),
		Gender:             pick(g.rnd, genders),
		Ethnicity:          pick(g.rnd, ethnicity),
		AreaType:           pick(g.rnd, areaTypes),
		RawReviewsText:     g.reviews(q()),
		JoinDate:           g.now.AddDate(0, -1-g.rnd.IntN(48), 0).Truncate(24 * time.Hour),
		LastActive:         g.now.Add(-time.Duration(g.rnd.IntN(72)) * time.Hour).Truncate(time.Hour),
	}
}

func (g *Generator) risk(q float64) model.RiskLevel {
	switch {
	case q > 0.66:
		return model.RiskLow
	case q > 0.33:
		return model.RiskMedium
	}
	return model.RiskHigh
}

func (g *Generator) medical(q float64) model.MedicalStability {
	switch {
	case q > 0.5:
		return model.MedicalStable
	case q > 0.2:
		return model.MedicalModerate
	}
	return model.MedicalConcerning
}

// reviews joins one to four comments whose tone follows q.
func (g *Generator) reviews(q float64) string {
	n := 1 + g.rnd.IntN(4)
	out := make([]string, n)
	for i := range out {
		r := g.rnd.Float64()
		switch {
		case r < q*0.8:
			out[i] = pick(g.rnd, praise)
		case r < q*0.8+0.3:
			out[i] = pick(g.rnd, neutral)
		default:
			out[i] = pick(g.rnd, complaints)
		}
	}
	return strings.Join(out, model.ReviewsDelimiter)
}

func pick(rnd *rand.Rand, xs []string) string {
	return xs[rnd.IntN(len(xs))]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
