package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateAndUserAgent(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "v1.2.3"

	assert.Equal(t, "autobuild/v1.2.3", UserAgent())
	assert.Contains(t, Template(), "version v1.2.3")
	assert.Contains(t, String(), "version: v1.2.3")
}
