package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSharePercent(t *testing.T) {
	assert.Equal(t, 75.0, SharePercent(0.3, 0.4, 2))
	assert.Equal(t, 33.33, SharePercent(1, 3, 3))
	assert.Equal(t, 0.0, SharePercent(0, 0.4, 2))
	assert.Equal(t, 25.0, SharePercent(0, 0, 4))
	assert.Equal(t, 0.0, SharePercent(0, 0, 0))
}
