package sentiment

// Marker is a phrase that shifts sentiment when it occurs in a text.
// Weight lies in [-1,1]; the sign gives the direction.
type Marker struct {
	Phrase string
	Weight float64
}

// PositiveMarkers is the default positive lexicon.
var PositiveMarkers = []Marker{
	{"fantastic", 0.8},
	{"excellent", 0.8},
	{"amazing", 0.8},
	{"outstanding", 0.8},
	{"great", 0.6},
	{"recommend", 0.6},
	{"punctual", 0.6},
	{"friendly", 0.5},
	{"professional", 0.5},
	{"helpful", 0.5},
	{"on time", 0.5},
	{"safe driver", 0.5},
	{"good", 0.4},
	{"polite", 0.4},
	{"clean", 0.4},
	{"smooth", 0.4},
	{"comfortable", 0.4},
	{"nice", 0.3},
}

// NegativeMarkers is the default negative lexicon.
var NegativeMarkers = []Marker{
	{"terrible", -0.9},
	{"awful", -0.9},
	{"horrible", -0.9},
	{"dangerous", -0.9},
	{"rude", -0.8},
	{"unsafe", -0.8},
	{"never again", -0.8},
	{"unprofessional", -0.7},
	{"dirty", -0.6},
	{"cancelled", -0.6},
	{"bad", -0.5},
	{"poor", -0.5},
	{"late", -0.5},
	{"smelly", -0.4},
	{"slow", -0.3},
	{"lost", -0.3},
}
