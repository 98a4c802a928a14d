package types

import "strings"

// NodeKind is the closed set of Universal AST node types. Bindings may omit
// kinds that don't apply to their language (spec §3.1).
type NodeKind uint8

const (
	NodeKindUnknown NodeKind = iota
	NodeKindModule
	NodeKindClass
	NodeKindFunction
	NodeKindMethod
	NodeKindParameter
	NodeKindVariable
	NodeKindCall
	NodeKindImport
	NodeKindLiteral
	NodeKindRoute
	NodeKindSqlQuery
	NodeKindEvent
	NodeKindTrait
	NodeKindImpl
	NodeKindStruct
	NodeKindEnum
	NodeKindUse
	NodeKindMod
	NodeKindConst
	NodeKindStatic
)

var nodeKindNames = [...]string{
	NodeKindUnknown:   "Unknown",
	NodeKindModule:    "Module",
	NodeKindClass:     "Class",
	NodeKindFunction:  "Function",
	NodeKindMethod:    "Method",
	NodeKindParameter: "Parameter",
	NodeKindVariable:  "Variable",
	NodeKindCall:      "Call",
	NodeKindImport:    "Import",
	NodeKindLiteral:   "Literal",
	NodeKindRoute:     "Route",
	NodeKindSqlQuery:  "SqlQuery",
	NodeKindEvent:     "Event",
	NodeKindTrait:     "Trait",
	NodeKindImpl:      "Impl",
	NodeKindStruct:    "Struct",
	NodeKindEnum:      "Enum",
	NodeKindUse:       "Use",
	NodeKindMod:       "Mod",
	NodeKindConst:     "Const",
	NodeKindStatic:    "Static",
}

// String returns the Debug-style name used as a hash input by NodeId.New
// (spec §3.3: "kind_debug_string"). Do not change these strings; doing so
// changes every previously computed NodeId.
func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "Unknown"
}

// snakeCase returns the wire tag for this kind (spec §6.1: "kind as
// snake_case tag").
func (k NodeKind) snakeCase() string {
	s := k.String()
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// MarshalJSON encodes the kind as its snake_case wire tag.
func (k NodeKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.snakeCase() + `"`), nil
}

// UnmarshalJSON decodes a snake_case wire tag back into a NodeKind.
func (k *NodeKind) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	*k = NodeKindFromTag(s)
	return nil
}

// NodeKindFromTag parses a snake_case wire tag back into a NodeKind.
func NodeKindFromTag(tag string) NodeKind {
	tag = strings.ToLower(tag)
	for k := range nodeKindNames {
		if NodeKind(k).snakeCase() == tag {
			return NodeKind(k)
		}
	}
	return NodeKindUnknown
}

// EdgeKind is the closed set of Universal AST edge types.
type EdgeKind uint8

const (
	EdgeKindUnknown EdgeKind = iota
	EdgeKindCalls
	EdgeKindReads
	EdgeKindWrites
	EdgeKindImports
	EdgeKindEmits
	EdgeKindRoutesTo
	EdgeKindRaises
	EdgeKindExtends
	EdgeKindImplements
	EdgeKindContains
	EdgeKindUses
)

var edgeKindNames = [...]string{
	EdgeKindUnknown:    "UNKNOWN",
	EdgeKindCalls:      "CALLS",
	EdgeKindReads:      "READS",
	EdgeKindWrites:     "WRITES",
	EdgeKindImports:    "IMPORTS",
	EdgeKindEmits:      "EMITS",
	EdgeKindRoutesTo:   "ROUTES_TO",
	EdgeKindRaises:     "RAISES",
	EdgeKindExtends:    "EXTENDS",
	EdgeKindImplements: "IMPLEMENTS",
	EdgeKindContains:   "CONTAINS",
	EdgeKindUses:       "USES",
}

// String returns the SCREAMING_SNAKE_CASE wire tag for this edge kind
// (spec §6.1: "kind tags for edges are the SCREAMING_SNAKE_CASE forms").
func (k EdgeKind) String() string {
	if int(k) < len(edgeKindNames) {
		return edgeKindNames[k]
	}
	return "UNKNOWN"
}

// MarshalJSON encodes the edge kind as its SCREAMING_SNAKE_CASE wire tag.
func (k EdgeKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON decodes a SCREAMING_SNAKE_CASE wire tag back into an EdgeKind.
func (k *EdgeKind) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	*k = EdgeKindFromTag(s)
	return nil
}

// EdgeKindFromTag parses a SCREAMING_SNAKE_CASE wire tag back into an EdgeKind.
func EdgeKindFromTag(tag string) EdgeKind {
	tag = strings.ToUpper(tag)
	for k, name := range edgeKindNames {
		if name == tag {
			return EdgeKind(k)
		}
	}
	return EdgeKindUnknown
}
