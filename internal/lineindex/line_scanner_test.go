package lineindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineScannerBasic(t *testing.T) {
	data := []byte("one\ntwo\nthree")
	s := NewLineScanner(data)

	wants := []string{"one", "two", "three"}
	for i, want := range wants {
		ok := s.Scan()
		assert.True(t, ok)
		assert.Equal(t, want, s.Text())
		assert.Equal(t, i+1, s.LineNumber())
	}
	assert.False(t, s.Scan())
}

func TestLineScannerStripsCRLF(t *testing.T) {
	data := []byte("a\r\nb\r\n")
	s := NewLineScanner(data)

	s.Scan()
	assert.Equal(t, "a", s.Text())
	s.Scan()
	assert.Equal(t, "b", s.Text())
}

func TestLineScannerKeepNewlines(t *testing.T) {
	data := []byte("a\r\nb")
	s := NewLineScannerKeepNewlines(data)

	s.Scan()
	assert.Equal(t, "a\r", s.Text())
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, CountLines(nil))
	assert.Equal(t, 1, CountLines([]byte("one line, no trailing newline")))
	assert.Equal(t, 2, CountLines([]byte("a\nb")))
	assert.Equal(t, 2, CountLines([]byte("a\nb\n")))
}

func TestGetLineRange(t *testing.T) {
	data := []byte("l1\nl2\nl3\nl4\nl5")
	got := GetLineRange(data, 2, 4)
	assert.Equal(t, []string{"l2", "l3", "l4"}, got)
}

func TestGetLineRangeClampsStart(t *testing.T) {
	data := []byte("l1\nl2\nl3")
	got := GetLineRange(data, -5, 1)
	assert.Equal(t, []string{"l1"}, got)
}

func TestGetLineAtOffset(t *testing.T) {
	data := []byte("aaa\nbbb\nccc")
	offsets := GetLineOffsets(data)

	assert.Equal(t, 1, GetLineAtOffset(offsets, 0))
	assert.Equal(t, 2, GetLineAtOffset(offsets, 4))
	assert.Equal(t, 3, GetLineAtOffset(offsets, 8))
}

func TestFindLineContaining(t *testing.T) {
	data := []byte("foo\nbar baz\nqux")
	line, num, ok := FindLineContaining(data, []byte("baz"))
	assert.True(t, ok)
	assert.Equal(t, 2, num)
	assert.Equal(t, "bar baz", string(line))

	_, _, ok = FindLineContaining(data, []byte("nope"))
	assert.False(t, ok)
}

func TestSplitLinesWithCapacity(t *testing.T) {
	got := SplitLinesWithCapacity([]byte("x\ny\nz"))
	assert.Equal(t, []string{"x", "y", "z"}, got)
	assert.Nil(t, SplitLinesWithCapacity(nil))
}
