package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJaro(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 0},
		{"abc", "", 0},
		{"abc", "xyz", 0},
		{"MARTHA", "MARTHA", 1},
		{"MARTHA", "MARHTA", 0.944444},
		{"DIXON", "DICKSONX", 0.766667},
		{"JELLYFISH", "SMELLYFISH", 0.896296},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, Jaro(tt.a, tt.b), 1e-6)
			assert.InDelta(t, Jaro(tt.a, tt.b), Jaro(tt.b, tt.a), 1e-9, "jaro should be symmetric")
		})
	}
}

func TestJaroWinkler(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"MARTHA", "MARHTA", 0.961111},
		{"DIXON", "DICKSONX", 0.813333},
		{"DWAYNE", "DUANE", 0.84},
		{"JELLYFISH", "SMELLYFISH", 0.896296}, // no common prefix, no bonus
		{"abc", "xyz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, JaroWinkler(tt.a, tt.b), 1e-6)
		})
	}
}

func TestJaroWinkler_CaseSensitive(t *testing.T) {
	assert.Equal(t, 1.0, JaroWinkler("Clinic", "Clinic"))
	assert.Less(t, JaroWinkler("Clinic", "clinic"), 1.0)
}

func TestJaroWinkler_Unicode(t *testing.T) {
	// Runes, not bytes: a single accented letter is one substitution.
	assert.Greater(t, JaroWinkler("Hôpital Central", "Hopital Central"), 0.9)
}

func TestJaroWinklerScore_PrefixCloserScoresHigher(t *testing.T) {
	base := "St. Mary Clinic"
	close := JaroWinklerScore(base, "St Mary Clinic")
	far := JaroWinklerScore(base, "General Hospital")

	assert.Greater(t, close, far)
	assert.GreaterOrEqual(t, close, 0.0)
	assert.LessOrEqual(t, close, 100.0)
}

func TestRoundScore(t *testing.T) {
	assert.Equal(t, 96.11, roundScore(96.1111))
	assert.Equal(t, 80.0, roundScore(79.999))
	assert.Equal(t, 0.0, roundScore(0))
}
