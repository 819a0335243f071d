package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	assert.Equal(t, "dev", GetVersion())
	assert.NotEmpty(t, GetCommit())
	assert.NotEmpty(t, GetBuildDate())
}
