package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceConfigValue(t *testing.T) {
	assert.Equal(t, true, coerceConfigValue("true"))
	assert.Equal(t, true, coerceConfigValue("Yes"))
	assert.Equal(t, false, coerceConfigValue("off"))
	assert.Equal(t, 20, coerceConfigValue("20"))
	assert.Equal(t, 0.05, coerceConfigValue("0.05"))
	assert.Equal(t, "Rscript run_enrichment.R", coerceConfigValue("Rscript run_enrichment.R"))
	assert.Equal(t, "annotations.duckdb", coerceConfigValue("annotations.duckdb"))
}
