package policy

import "testing"

// FuzzParse checks the expression parser never panics on arbitrary input.
func FuzzParse(f *testing.F) {
	f.Add(`severity >= high`)
	f.Add(`rule == "go.sql.concat" or category =~ "crypto"`)
	f.Add(`not (path =~ "_test\.go$") and language == go`)
	f.Add(`cvss >= 7.0 and severity != info`)
	f.Add(`(a == b`)
	f.Add(`severity >=`)
	f.Add(``)
	f.Add(`"unterminated`)

	f.Fuzz(func(t *testing.T, input string) {
		p, err := Parse(input)
		if err != nil {
			return
		}
		// A compiled policy must evaluate without panicking.
		_ = p.Match(sample())
	})
}
