package builtin

import "github.com/codesweep/codesweep/internal/rules"

// goPack holds the regex checks for Go. The AST analyzer supersedes some of
// these with precise versions; both may fire when the source is parseable.
func goPack() rules.Pack {
	return rules.Pack{
		Language: "go",
		Name:     "builtin-go",
		Rules: []rules.Rule{
			{
				ID:         "go.sql.concat",
				Pattern:    `db\.(Query|Exec)\s*\([^)]*\+`,
				Message:    "SQL query built by string concatenation - SQL injection",
				Severity:   "high",
				Category:   "sql-injection",
				CWE:        "CWE-89",
				CVSS:       "9.1",
				Suggestion: "use parameterized queries",
			},
			{
				ID:         "go.cmd.concat",
				Pattern:    `exec\.Command\s*\([^)]*\+`,
				Message:    "command arguments built by concatenation - command injection",
				Severity:   "high",
				Category:   "command-injection",
				CWE:        "CWE-78",
				CVSS:       "8.8",
				Suggestion: "pass arguments as separate strings and validate input",
			},
			{
				ID:         "go.crypto.mathrand",
				Pattern:    `\bmath/rand\b`,
				Message:    "math/rand is not cryptographically secure",
				Severity:   "high",
				Category:   "weak-crypto",
				CWE:        "CWE-338",
				CVSS:       "7.5",
				Suggestion: "use crypto/rand for security-sensitive randomness",
			},
			{
				ID:         "go.crypto.md5",
				Pattern:    `\bcrypto/md5\b|\bmd5\.New\s*\(`,
				Message:    "MD5 is cryptographically broken",
				Severity:   "high",
				Category:   "weak-crypto",
				CWE:        "CWE-328",
				CVSS:       "7.4",
				Suggestion: "use crypto/sha256 or better",
			},
			{
				ID:       "go.errors.discard",
				Pattern:  `\b_\s*=\s*err\b`,
				Message:  "error return discarded",
				Severity: "medium",
				Category: "error-handling",
				CWE:      "CWE-252",
				CVSS:     "4.0",
			},
			{
				ID:       "go.web.cors-wildcard",
				Pattern:  `Header\(\)\.Set\s*\(\s*"Access-Control-Allow-Origin"\s*,\s*"\*"`,
				Message:  "overly permissive CORS policy",
				Severity: "medium",
				Category: "web",
				CWE:      "CWE-942",
				CVSS:     "5.3",
			},
			{
				ID:       "go.web.insecure-cookie",
				Pattern:  `Cookie\{[^}]*(Secure|HttpOnly):\s*false`,
				Message:  "cookie missing Secure or HttpOnly flag",
				Severity: "medium",
				Category: "web",
				CWE:      "CWE-614",
				CVSS:     "5.4",
			},
			{
				ID:         "go.xss.template",
				Pattern:    `template\.(HTML|URL)\s*\(`,
				Message:    "bypassing html/template escaping - potential XSS",
				Severity:   "high",
				Category:   "xss",
				CWE:        "CWE-79",
				CVSS:       "6.1",
				Suggestion: "only wrap trusted, pre-sanitized content",
			},
			{
				ID:       "go.logging.sensitive",
				Pattern:  `log\.Print[^(]*\([^)]*(password|token|secret)`,
				Message:  "sensitive value may be logged",
				Severity: "high",
				Category: "data-exposure",
				CWE:      "CWE-532",
				CVSS:     "6.5",
			},
			{
				ID:       "go.style.panic",
				Pattern:  `\bpanic\s*\(`,
				Message:  "panic in library code - prefer returning an error",
				Severity: "low",
				Category: "error-handling",
				CVSS:     "1.0",
			},
		},
	}
}
