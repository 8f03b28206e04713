// Package builtin ships the default rule packs. The patterns follow the
// per-language scanners the project started from; user packs loaded from the
// configuration extend or replace them.
package builtin

import (
	"fmt"
	"slices"

	"github.com/codesweep/codesweep/internal/rules"
)

var packs = map[string]func() rules.Pack{
	"cpp":    cppPack,
	"go":     goPack,
	"java":   javaPack,
	"php":    phpPack,
	"python": pythonPack,
	"rust":   rustPack,
	"scala":  scalaPack,
}

// Languages returns the languages with a built-in pack, sorted.
func Languages() []string {
	langs := make([]string, 0, len(packs))
	for lang := range packs {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	return langs
}

// Pack returns the built-in pack for a language.
func Pack(language string) (rules.Pack, error) {
	factory, ok := packs[language]
	if !ok {
		return rules.Pack{}, fmt.Errorf("no built-in rule pack for language %q", language)
	}
	return factory(), nil
}

// Packs returns all built-in packs except those in disabled, in language
// order.
func Packs(disabled []string) []rules.Pack {
	result := make([]rules.Pack, 0, len(packs))
	for _, lang := range Languages() {
		if slices.Contains(disabled, lang) {
			continue
		}
		result = append(result, packs[lang]())
	}
	return result
}
