package builtin

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codesweep/codesweep/internal/rules"
)

func TestLanguages(t *testing.T) {
	t.Parallel()

	want := []string{"cpp", "go", "java", "php", "python", "rust", "scala"}
	if diff := cmp.Diff(want, Languages()); diff != "" {
		t.Errorf("Languages() mismatch (-want +got):\n%s", diff)
	}
}

func TestPackUnknownLanguage(t *testing.T) {
	t.Parallel()

	if _, err := Pack("cobol"); err == nil {
		t.Errorf("Pack(cobol) succeeded, want error")
	}
}

// All built-in packs must compile together without pattern, severity, or
// duplicate-ID errors.
func TestAllPacksCompile(t *testing.T) {
	t.Parallel()

	set, err := rules.Compile(Packs(nil)...)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if set.Len() == 0 {
		t.Fatal("built-in set is empty")
	}
	if got, want := len(set.Languages()), len(Languages()); got != want {
		t.Errorf("compiled languages = %d, want %d", got, want)
	}
}

func TestPacksDisabled(t *testing.T) {
	t.Parallel()

	packs := Packs([]string{"rust", "scala"})
	for _, pack := range packs {
		if pack.Language == "rust" || pack.Language == "scala" {
			t.Errorf("disabled pack %q still returned", pack.Language)
		}
	}
	if got, want := len(packs), len(Languages())-2; got != want {
		t.Errorf("len(packs) = %d, want %d", got, want)
	}
}

func TestPackSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		language string
		source   string
		ruleID   string
	}{
		{"cpp", `strcpy(dst, src);`, "cpp.buffer.strcpy"},
		{"go", `import "math/rand"`, "go.crypto.mathrand"},
		{"java", `Runtime.getRuntime().exec("sh -c " + cmd);`, "java.cmd.runtime-exec"},
		{"php", `echo $_GET["name"];`, "php.xss.echo"},
		{"python", `os.system(cmd)`, "python.cmd.os-system"},
		{"rust", `unsafe { ptr.read() }`, "rust.unsafe.block"},
		{"scala", `Runtime.getRuntime().exec(cmd)`, "scala.cmd.runtime"},
	}

	for _, tc := range tests {
		t.Run(tc.language, func(t *testing.T) {
			t.Parallel()
			pack, err := Pack(tc.language)
			if err != nil {
				t.Fatalf("Pack(%s): %v", tc.language, err)
			}
			set, err := rules.Compile(pack)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			rule, ok := set.Lookup(tc.ruleID)
			if !ok {
				t.Fatalf("rule %s not found", tc.ruleID)
			}
			if !rule.Regexp.MatchString(tc.source) {
				t.Errorf("rule %s did not match %q", tc.ruleID, tc.source)
			}
		})
	}
}
