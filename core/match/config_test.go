package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Options(t *testing.T) {
	cfg := Config{DefaultThreshold: 70, PrimaryLabel: "MFL", ReferenceLabel: "DHIS2", Workers: 4}

	opts := cfg.Options(85)
	assert.Equal(t, 85.0, opts.Threshold)
	assert.Equal(t, "MFL", opts.PrimaryLabel)
	assert.Equal(t, "DHIS2", opts.ReferenceLabel)
	assert.Equal(t, 4, opts.Workers)
	assert.Nil(t, opts.Similarity)
}
