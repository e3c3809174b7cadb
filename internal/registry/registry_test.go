package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Suleiman700/Watch-Together-v4/internal/domain"
)

func TestRegisterLookupUnregister(t *testing.T) {
	reg := NewSessionRegistry()

	_, ok := reg.Lookup("s1")
	assert.False(t, ok)

	client := domain.NewClient("s1", nil)
	reg.Register(client)

	got, ok := reg.Lookup("s1")
	assert.True(t, ok)
	assert.Same(t, client, got)

	reg.Unregister("s1")
	_, ok = reg.Lookup("s1")
	assert.False(t, ok)

	// Unregistering an unknown session is a no-op.
	reg.Unregister("s1")
}
