package fileset

import (
	"path/filepath"
	"slices"
	"strings"
)

// Language identifies a scannable programming language.
type Language string

// Languages recognized by the scanner. C files are folded into the cpp
// family, matching how the rule packs are organized.
const (
	LangCPP        Language = "cpp"
	LangGo         Language = "go"
	LangJava       Language = "java"
	LangJavaScript Language = "javascript"
	LangPHP        Language = "php"
	LangPython     Language = "python"
	LangRuby       Language = "ruby"
	LangRust       Language = "rust"
	LangScala      Language = "scala"
	LangTypeScript Language = "typescript"
)

var extensionLanguages = map[string]Language{
	".c":     LangCPP,
	".h":     LangCPP,
	".cc":    LangCPP,
	".cpp":   LangCPP,
	".cxx":   LangCPP,
	".hpp":   LangCPP,
	".go":    LangGo,
	".java":  LangJava,
	".js":    LangJavaScript,
	".php":   LangPHP,
	".py":    LangPython,
	".rb":    LangRuby,
	".rs":    LangRust,
	".scala": LangScala,
	".ts":    LangTypeScript,
}

// DetectLanguage maps a file path to its language by extension. The second
// return value is false for unrecognized extensions.
func DetectLanguage(path string) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extensionLanguages[ext]
	return lang, ok
}

// SupportedExtensions returns the recognized file extensions, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}
