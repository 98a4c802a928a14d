package patch

import "github.com/google/jsonschema-go/jsonschema"

// Schema describes the AstPatch wire shape (spec.md §6.1) as a JSON Schema.
// A consumer that accepts patches from outside this process (e.g. a future
// RPC transport) validates against it before calling Apply, rather than
// trusting the source to have produced a well-formed patch.
func Schema() *jsonschema.Schema {
	nodeIDString := &jsonschema.Schema{
		Type:        "string",
		Pattern:     "^[0-9a-f]{32}$",
		Description: "32-char lowercase hex NodeId",
	}

	span := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"start_byte":   {Type: "integer"},
			"end_byte":     {Type: "integer"},
			"start_line":   {Type: "integer"},
			"end_line":     {Type: "integer"},
			"start_column": {Type: "integer"},
			"end_column":   {Type: "integer"},
		},
		Required: []string{"start_byte", "end_byte", "start_line", "end_line", "start_column", "end_column"},
	}

	node := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id":        nodeIDString,
			"kind":      {Type: "string"},
			"name":      {Type: "string"},
			"language":  {Type: "string"},
			"file":      {Type: "string"},
			"span":      span,
			"signature": {Type: "string"},
			"metadata":  {Type: "object"},
		},
		Required: []string{"id", "kind", "name", "language", "file", "span"},
	}

	edge := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"source": nodeIDString,
			"target": nodeIDString,
			"kind":   {Type: "string"},
		},
		Required: []string{"source", "target", "kind"},
	}

	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"repo_id":      {Type: "string"},
			"commit_sha":   {Type: "string"},
			"nodes_add":    {Type: "array", Items: node},
			"edges_add":    {Type: "array", Items: edge},
			"nodes_delete": {Type: "array", Items: nodeIDString},
			"edges_delete": {Type: "array", Items: edge},
		},
		Required: []string{"repo_id", "commit_sha", "nodes_add", "edges_add", "nodes_delete", "edges_delete"},
	}
}
