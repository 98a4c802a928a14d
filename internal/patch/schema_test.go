package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaDescribesAstPatchShape(t *testing.T) {
	s := Schema()
	require.NotNil(t, s)

	assert.Equal(t, "object", s.Type)
	assert.ElementsMatch(t,
		[]string{"repo_id", "commit_sha", "nodes_add", "edges_add", "nodes_delete", "edges_delete"},
		s.Required)

	nodesAdd, ok := s.Properties["nodes_add"]
	require.True(t, ok)
	assert.Equal(t, "array", nodesAdd.Type)
	require.NotNil(t, nodesAdd.Items)
	assert.ElementsMatch(t,
		[]string{"id", "kind", "name", "language", "file", "span"},
		nodesAdd.Items.Required)

	idSchema, ok := nodesAdd.Items.Properties["id"]
	require.True(t, ok)
	assert.Equal(t, "^[0-9a-f]{32}$", idSchema.Pattern)
}

func TestSchemaMarshalsToJSON(t *testing.T) {
	out, err := json.Marshal(Schema())
	require.NoError(t, err)
	assert.Contains(t, string(out), "nodes_add")
	assert.Contains(t, string(out), "edges_delete")
}
