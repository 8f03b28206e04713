// Package all registers the built-in analyzers. Import it for side effects:
//
//	import _ "github.com/codesweep/codesweep/internal/analyzer/all"
package all

import (
	"github.com/codesweep/codesweep/internal/analyzer"
	"github.com/codesweep/codesweep/internal/analyzer/extern"
	"github.com/codesweep/codesweep/internal/analyzer/goast"
	"github.com/codesweep/codesweep/internal/analyzer/pattern"
)

//nolint:gochecknoinits // Package registration via init is idiomatic for this use case
func init() {
	analyzer.Register(pattern.Name, pattern.New)
	analyzer.Register(goast.Name, goast.New)
	analyzer.Register(extern.Name, extern.New)
}
