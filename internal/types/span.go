package types

import "fmt"

// Span is an immutable byte range plus the 1-indexed line/column
// coordinates of its endpoints. The end byte is exclusive.
type Span struct {
	StartByte   int `json:"start_byte"`
	EndByte     int `json:"end_byte"`
	StartLine   int `json:"start_line"`
	EndLine     int `json:"end_line"`
	StartColumn int `json:"start_column"`
	EndColumn   int `json:"end_column"`
}

// NewSpan constructs a Span from its six fields.
func NewSpan(startByte, endByte, startLine, endLine, startColumn, endColumn int) Span {
	return Span{
		StartByte:   startByte,
		EndByte:     endByte,
		StartLine:   startLine,
		EndLine:     endLine,
		StartColumn: startColumn,
		EndColumn:   endColumn,
	}
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.EndByte - s.StartByte
}

// IsEmpty reports whether the span covers zero bytes.
func (s Span) IsEmpty() bool {
	return s.StartByte == s.EndByte
}

// String renders the span as "startLine:startCol-endLine:endCol".
func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.StartLine, s.StartColumn, s.EndLine, s.EndColumn)
}
