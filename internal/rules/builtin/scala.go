package builtin

import "github.com/codesweep/codesweep/internal/rules"

func scalaPack() rules.Pack {
	return rules.Pack{
		Language: "scala",
		Name:     "builtin-scala",
		Rules: []rules.Rule{
			{
				ID:         "scala.sql.interpolation",
				Pattern:    `sql"`,
				Message:    "raw SQL string interpolation - SQL injection risk",
				Severity:   "critical",
				Category:   "sql-injection",
				CWE:        "CWE-89",
				CVSS:       "9.1",
				Suggestion: "bind values through the query DSL, never interpolate",
			},
			{
				ID:       "scala.sql.execute",
				Pattern:  `\bexecute(Query|Update)\s*\(`,
				Message:  "direct SQL execution",
				Severity: "critical",
				Category: "sql-injection",
				CWE:      "CWE-89",
				CVSS:     "8.2",
			},
			{
				ID:       "scala.cmd.runtime",
				Pattern:  `Runtime\.getRuntime\(\)\.exec`,
				Message:  "runtime command execution - command injection risk",
				Severity: "critical",
				Category: "command-injection",
				CWE:      "CWE-78",
				CVSS:     "9.8",
			},
			{
				ID:       "scala.cmd.processbuilder",
				Pattern:  `\bProcessBuilder\b`,
				Message:  "process builder usage - review spawned commands",
				Severity: "high",
				Category: "command-injection",
				CWE:      "CWE-78",
				CVSS:     "7.3",
			},
			{
				ID:       "scala.reflection.forname",
				Pattern:  `Class\.forName`,
				Message:  "dynamic class loading",
				Severity: "high",
				Category: "reflection",
				CWE:      "CWE-470",
				CVSS:     "6.5",
			},
			{
				ID:       "scala.deserialize.ois",
				Pattern:  `\bObjectInputStream\b`,
				Message:  "native deserialization of untrusted data",
				Severity: "high",
				Category: "deserialization",
				CWE:      "CWE-502",
				CVSS:     "8.1",
			},
			{
				ID:         "scala.crypto.weak",
				Pattern:    `MessageDigest\.getInstance\s*\(\s*"(MD5|SHA-1)"`,
				Message:    "weak hash algorithm",
				Severity:   "high",
				Category:   "weak-crypto",
				CWE:        "CWE-328",
				CVSS:       "7.4",
				Suggestion: "use SHA-256 or better",
			},
			{
				ID:       "scala.secret.hardcoded",
				Pattern:  `(?i)(password|secret|api_key|token)\s*=\s*"[^"]+"`,
				Message:  "hardcoded credential detected",
				Severity: "critical",
				Category: "hardcoded-secrets",
				CWE:      "CWE-798",
				CVSS:     "9.1",
			},
			{
				ID:         "scala.unsafe.option-get",
				Pattern:    `\.get\b(?:\s*$|[^a-zA-Z(])`,
				Message:    "unsafe Option.get - may throw on None",
				Severity:   "medium",
				Category:   "unsafe-access",
				CVSS:       "4.0",
				Suggestion: "use getOrElse, fold, or pattern matching",
			},
			{
				ID:       "scala.unsafe.cast",
				Pattern:  `\.asInstanceOf\[`,
				Message:  "unsafe type cast",
				Severity: "medium",
				Category: "unsafe-access",
				CVSS:     "4.0",
			},
		},
	}
}
