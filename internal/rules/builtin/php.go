package builtin

import "github.com/codesweep/codesweep/internal/rules"

func phpPack() rules.Pack {
	return rules.Pack{
		Language: "php",
		Name:     "builtin-php",
		Rules: []rules.Rule{
			{
				ID:         "php.cmd.exec",
				Pattern:    `\b(exec|system|shell_exec|passthru)\s*\(\s*\$`,
				Message:    "command execution with variable input - command injection",
				Severity:   "critical",
				Category:   "command-injection",
				CWE:        "CWE-78",
				CVSS:       "9.8",
				Suggestion: "use escapeshellarg and an allow-list of commands",
			},
			{
				ID:       "php.cmd.backtick",
				Pattern:  "`[^`]*\\$[^`]*`",
				Message:  "backtick execution with variable input - command injection",
				Severity: "critical",
				Category: "command-injection",
				CWE:      "CWE-78",
				CVSS:     "9.8",
			},
			{
				ID:         "php.sql.query",
				Pattern:    `\b(mysql_query|mysqli_query|query)\s*\(\s*\$`,
				Message:    "SQL query built from a variable - SQL injection",
				Severity:   "high",
				Category:   "sql-injection",
				CWE:        "CWE-89",
				CVSS:       "9.1",
				Suggestion: "use prepared statements with bound parameters",
			},
			{
				ID:       "php.sql.superglobal",
				Pattern:  `\$_(GET|POST|REQUEST)\[['"][^'"]+['"]\]`,
				Message:  "raw superglobal access - taint source for injection",
				Severity: "high",
				Category: "sql-injection",
				CWE:      "CWE-89",
				CVSS:     "7.5",
			},
			{
				ID:         "php.xss.echo",
				Pattern:    `\b(echo|print)\s+\$_(GET|POST|REQUEST)\[`,
				Message:    "echoing user input - cross-site scripting",
				Severity:   "high",
				Category:   "xss",
				CWE:        "CWE-79",
				CVSS:       "6.1",
				Suggestion: "escape output with htmlspecialchars",
			},
			{
				ID:         "php.include.dynamic",
				Pattern:    `\b(include|require)(_once)?\s*\(\s*\$`,
				Message:    "dynamic include path - file inclusion vulnerability",
				Severity:   "high",
				Category:   "file-inclusion",
				CWE:        "CWE-98",
				CVSS:       "8.1",
				Suggestion: "resolve includes from a fixed allow-list",
			},
			{
				ID:         "php.crypto.weak",
				Pattern:    `\b(md5|sha1)\s*\(\s*\$`,
				Message:    "weak hash algorithm",
				Severity:   "medium",
				Category:   "weak-crypto",
				CWE:        "CWE-328",
				CVSS:       "5.3",
				Suggestion: "use password_hash or hash('sha256', ...)",
			},
			{
				ID:       "php.errors.display",
				Pattern:  `ini_set\s*\(\s*['"]display_errors['"]\s*,\s*(true|['"]?1['"]?)\s*\)`,
				Message:  "display_errors enabled - information disclosure",
				Severity: "medium",
				Category: "error-disclosure",
				CWE:      "CWE-209",
				CVSS:     "5.3",
			},
		},
	}
}
