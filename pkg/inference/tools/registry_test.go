package tools

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	a := MustNewToolFromFunc("b_tool", "", greet)
	b := MustNewToolFromFunc("a_tool", "", greet)

	r, err := NewRegistryFromTools(a, b)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Count())
	assert.True(t, r.HasTool("a_tool"))

	list := r.ListTools()
	require.Len(t, list, 2)
	assert.Equal(t, "a_tool", list[0].Name)
	assert.Equal(t, "b_tool", list[1].Name)

	_, err = r.GetTool("missing")
	assert.True(t, errors.Is(err, ErrToolNotFound))

	err = r.RegisterTool("other", *a)
	assert.Error(t, err)

	clone := r.Clone()
	require.NoError(t, r.UnregisterTool("a_tool"))
	assert.False(t, r.HasTool("a_tool"))
	assert.True(t, clone.HasTool("a_tool"))
	assert.True(t, errors.Is(r.UnregisterTool("a_tool"), ErrToolNotFound))
}
