package builtin

import "github.com/codesweep/codesweep/internal/rules"

func javaPack() rules.Pack {
	return rules.Pack{
		Language: "java",
		Name:     "builtin-java",
		Rules: []rules.Rule{
			{
				ID:         "java.sql.concat",
				Pattern:    `\bexecute(Query|Update)?\s*\([^)]*\+`,
				Message:    "SQL built by concatenation - SQL injection",
				Severity:   "high",
				Category:   "sql-injection",
				CWE:        "CWE-89",
				CVSS:       "9.1",
				Suggestion: "use PreparedStatement with bound parameters",
			},
			{
				ID:         "java.cmd.runtime-exec",
				Pattern:    `Runtime\.getRuntime\(\)\.exec\s*\([^)]*\+`,
				Message:    "command built by concatenation - command injection",
				Severity:   "high",
				Category:   "command-injection",
				CWE:        "CWE-78",
				CVSS:       "8.8",
				Suggestion: "use ProcessBuilder with a fixed argument list",
			},
			{
				ID:       "java.xss.writer",
				Pattern:  `response\.getWriter\(\)\.(print|write)\([^)]*request\.getParameter`,
				Message:  "writing request parameters to the response - XSS",
				Severity: "high",
				Category: "xss",
				CWE:      "CWE-79",
				CVSS:     "6.1",
			},
			{
				ID:         "java.crypto.weak",
				Pattern:    `MessageDigest\.getInstance\s*\(\s*"(MD5|SHA-?1)"`,
				Message:    "weak hash algorithm",
				Severity:   "high",
				Category:   "weak-crypto",
				CWE:        "CWE-328",
				CVSS:       "7.4",
				Suggestion: "use SHA-256 or better",
			},
			{
				ID:         "java.crypto.des",
				Pattern:    `Cipher\.getInstance\s*\(\s*"DES`,
				Message:    "DES is cryptographically broken",
				Severity:   "high",
				Category:   "weak-crypto",
				CWE:        "CWE-327",
				CVSS:       "7.4",
				Suggestion: "use AES-GCM",
			},
			{
				ID:         "java.crypto.random",
				Pattern:    `\bnew\s+Random\s*\(`,
				Message:    "java.util.Random is not cryptographically secure",
				Severity:   "medium",
				Category:   "weak-crypto",
				CWE:        "CWE-338",
				CVSS:       "5.3",
				Suggestion: "use SecureRandom",
			},
			{
				ID:       "java.deserialize.ois",
				Pattern:  `\bObjectInputStream\b`,
				Message:  "native deserialization of untrusted data",
				Severity: "medium",
				Category: "deserialization",
				CWE:      "CWE-502",
				CVSS:     "8.1",
			},
			{
				ID:       "java.web.insecure-cookie",
				Pattern:  `setSecure\s*\(\s*false\s*\)`,
				Message:  "session cookie without the secure flag",
				Severity: "high",
				Category: "web",
				CWE:      "CWE-614",
				CVSS:     "6.5",
			},
			{
				ID:       "java.reflection.forname",
				Pattern:  `Class\.forName\s*\([^)]*\+`,
				Message:  "class name built from input - unsafe reflection",
				Severity: "medium",
				Category: "reflection",
				CWE:      "CWE-470",
				CVSS:     "6.5",
			},
			{
				ID:       "java.logging.stacktrace",
				Pattern:  `\.printStackTrace\s*\(`,
				Message:  "printStackTrace instead of structured logging",
				Severity: "low",
				Category: "error-disclosure",
				CWE:      "CWE-209",
				CVSS:     "2.0",
			},
		},
	}
}
