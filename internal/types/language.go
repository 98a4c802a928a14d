package types

import "strings"

// Language identifies the programming language a Node or DiscoveredFile
// belongs to. Derivation from a file path is total: every path maps to
// exactly one Language, falling back to LanguageUnknown.
type Language uint8

const (
	LanguageUnknown Language = iota
	LanguageJavaScript
	LanguageTypeScript
	LanguagePython
	LanguageJava
	LanguageGo
	LanguageRust
	LanguageC
	LanguageCpp
)

// String returns the display name of the language.
func (l Language) String() string {
	switch l {
	case LanguageJavaScript:
		return "JavaScript"
	case LanguageTypeScript:
		return "TypeScript"
	case LanguagePython:
		return "Python"
	case LanguageJava:
		return "Java"
	case LanguageGo:
		return "Go"
	case LanguageRust:
		return "Rust"
	case LanguageC:
		return "C"
	case LanguageCpp:
		return "C++"
	default:
		return "Unknown"
	}
}

// MarshalJSON encodes the language as its lowercase tag, matching the wire
// format in spec §6.1 ("language as lowercase tag").
func (l Language) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strings.ToLower(l.String()) + `"`), nil
}

// UnmarshalJSON decodes a lowercase language tag back into a Language.
func (l *Language) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	*l = LanguageFromTag(s)
	return nil
}

// LanguageFromTag parses a lowercase wire tag (as produced by MarshalJSON)
// back into a Language.
func LanguageFromTag(tag string) Language {
	switch strings.ToLower(tag) {
	case "javascript":
		return LanguageJavaScript
	case "typescript":
		return LanguageTypeScript
	case "python":
		return LanguagePython
	case "java":
		return LanguageJava
	case "go":
		return LanguageGo
	case "rust":
		return LanguageRust
	case "c":
		return LanguageC
	case "c++", "cpp":
		return LanguageCpp
	default:
		return LanguageUnknown
	}
}

// LanguageFromExtension derives a Language from a file extension. The
// extension may optionally include the leading dot. Derivation is total:
// unrecognized extensions yield LanguageUnknown rather than an error.
func LanguageFromExtension(ext string) Language {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	switch ext {
	case "js", "mjs", "cjs", "jsx":
		return LanguageJavaScript
	case "ts", "tsx":
		return LanguageTypeScript
	case "py", "pyw":
		return LanguagePython
	case "java":
		return LanguageJava
	case "go":
		return LanguageGo
	case "rs":
		return LanguageRust
	case "c", "h":
		return LanguageC
	case "cpp", "cc", "cxx", "hpp", "hxx":
		return LanguageCpp
	default:
		return LanguageUnknown
	}
}

// LanguageFromPath derives a Language from a file path's extension.
func LanguageFromPath(path string) Language {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 || idx == len(path)-1 {
		return LanguageUnknown
	}
	return LanguageFromExtension(path[idx+1:])
}
