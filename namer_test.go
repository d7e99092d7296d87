package otelme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamers(t *testing.T) {
	assert.Equal(t, "operation", DefaultNamer{}.Name("operation"))
	assert.Equal(t, "billing.charge", PrefixNamer{Prefix: "billing"}.Name("charge"))
	assert.Equal(t, "charge", PrefixNamer{}.Name("charge"))
}
