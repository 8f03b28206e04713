package builtin

import "github.com/codesweep/codesweep/internal/rules"

func cppPack() rules.Pack {
	return rules.Pack{
		Language: "cpp",
		Name:     "builtin-cpp",
		Rules: []rules.Rule{
			{
				ID:         "cpp.buffer.strcpy",
				Pattern:    `\bstrcpy\s*\(`,
				Message:    "unsafe strcpy - potential buffer overflow",
				Severity:   "critical",
				Category:   "buffer-overflow",
				CWE:        "CWE-120",
				CVSS:       "9.8",
				Suggestion: "use strlcpy or strncpy with explicit null termination",
			},
			{
				ID:         "cpp.buffer.strcat",
				Pattern:    `\bstrcat\s*\(`,
				Message:    "unsafe strcat - potential buffer overflow",
				Severity:   "critical",
				Category:   "buffer-overflow",
				CWE:        "CWE-120",
				CVSS:       "9.8",
				Suggestion: "use strlcat or strncat with explicit null termination",
			},
			{
				ID:         "cpp.buffer.gets",
				Pattern:    `\bgets\s*\(`,
				Message:    "gets is always vulnerable to buffer overflow",
				Severity:   "critical",
				Category:   "buffer-overflow",
				CWE:        "CWE-242",
				CVSS:       "9.8",
				Suggestion: "use fgets with a bounded buffer",
			},
			{
				ID:         "cpp.buffer.sprintf",
				Pattern:    `\bv?sprintf\s*\(`,
				Message:    "unsafe sprintf - potential buffer overflow",
				Severity:   "critical",
				Category:   "buffer-overflow",
				CWE:        "CWE-120",
				CVSS:       "9.0",
				Suggestion: "use snprintf with an explicit size",
			},
			{
				ID:         "cpp.cmd.system",
				Pattern:    `\b(system|popen|execl|execv)\s*\(`,
				Message:    "command execution - potential command injection",
				Severity:   "critical",
				Category:   "command-injection",
				CWE:        "CWE-78",
				CVSS:       "9.8",
				Suggestion: "avoid shelling out; if unavoidable, pass a fixed argv",
			},
			{
				ID:       "cpp.sql.exec",
				Pattern:  `\b(sqlite3_exec|mysql_query|pg_query)\s*\(`,
				Message:  "direct SQL execution - potential SQL injection",
				Severity: "critical",
				Category: "sql-injection",
				CWE:      "CWE-89",
				CVSS:     "9.1",
			},
			{
				ID:         "cpp.race.toctou",
				Pattern:    `\b(access|stat)\s*\([^)]*\).*\bopen\s*\(`,
				Message:    "TOCTOU race condition between check and open",
				Severity:   "critical",
				Category:   "race-condition",
				CWE:        "CWE-367",
				CVSS:       "7.0",
				Suggestion: "open first, then fstat the descriptor",
			},
			{
				ID:       "cpp.secret.hardcoded",
				Pattern:  `(?i)(password|secret|api_key|token)\s*=\s*["'][^"']+["']`,
				Message:  "hardcoded credential detected",
				Severity: "critical",
				Category: "hardcoded-secrets",
				CWE:      "CWE-798",
				CVSS:     "9.1",
			},
			{
				ID:         "cpp.buffer.strncpy",
				Pattern:    `\bstrncpy\s*\(`,
				Message:    "strncpy may not null-terminate",
				Severity:   "high",
				Category:   "buffer-overflow",
				CWE:        "CWE-170",
				CVSS:       "7.5",
				Suggestion: "use strlcpy or terminate the buffer explicitly",
			},
			{
				ID:         "cpp.input.scanf",
				Pattern:    `\b[fs]?scanf\s*\(`,
				Message:    "scanf without width limits can overflow",
				Severity:   "high",
				Category:   "input-validation",
				CWE:        "CWE-120",
				CVSS:       "7.3",
				Suggestion: "use fgets or add field width limits",
			},
			{
				ID:       "cpp.format.printf",
				Pattern:  `\bf?printf\s*\(\s*[a-zA-Z_]\w*\s*[,)]`,
				Message:  "non-literal format string - potential format string vulnerability",
				Severity: "high",
				Category: "format-string",
				CWE:      "CWE-134",
				CVSS:     "8.1",
			},
			{
				ID:         "cpp.mem.unchecked-malloc",
				Pattern:    `=\s*malloc\s*\([^)]*\)\s*;`,
				Message:    "malloc return not checked before use",
				Severity:   "high",
				Category:   "memory-management",
				CWE:        "CWE-476",
				CVSS:       "6.5",
				Suggestion: "check the returned pointer against NULL",
			},
			{
				ID:         "cpp.deprecated.bzero",
				Pattern:    `\b(bzero|bcopy|rindex)\s*\(`,
				Message:    "deprecated memory or string function",
				Severity:   "medium",
				Category:   "deprecated-functions",
				CVSS:       "3.1",
				Suggestion: "use memset, memcpy, or strrchr",
			},
			{
				ID:       "cpp.style.fixme",
				Pattern:  `//.*\b(FIXME|HACK)\b`,
				Message:  "unresolved FIXME or HACK marker",
				Severity: "low",
				Category: "style",
				CVSS:     "0",
			},
		},
	}
}
