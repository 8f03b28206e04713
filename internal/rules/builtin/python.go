package builtin

import "github.com/codesweep/codesweep/internal/rules"

func pythonPack() rules.Pack {
	return rules.Pack{
		Language: "python",
		Name:     "builtin-python",
		Rules: []rules.Rule{
			{
				ID:         "python.cmd.os-system",
				Pattern:    `\bos\.system\s*\(`,
				Message:    "os.system call - command injection risk",
				Severity:   "high",
				Category:   "command-injection",
				CWE:        "CWE-78",
				CVSS:       "8.8",
				Suggestion: "use subprocess.run with a list argv and shell=False",
			},
			{
				ID:       "python.cmd.subprocess",
				Pattern:  `\bsubprocess\.(call|run|Popen)\s*\([^)]*shell\s*=\s*True`,
				Message:  "subprocess with shell=True - command injection risk",
				Severity: "high",
				Category: "command-injection",
				CWE:      "CWE-78",
				CVSS:     "8.8",
			},
			{
				ID:         "python.eval",
				Pattern:    `\b(eval|exec)\s*\(`,
				Message:    "dynamic code evaluation - code injection risk",
				Severity:   "high",
				Category:   "code-injection",
				CWE:        "CWE-95",
				CVSS:       "9.0",
				Suggestion: "use ast.literal_eval for data, never eval user input",
			},
			{
				ID:         "python.sql.format",
				Pattern:    `\bexecute(many)?\s*\([^)]*(%|\+|format)`,
				Message:    "SQL built by string formatting - SQL injection",
				Severity:   "high",
				Category:   "sql-injection",
				CWE:        "CWE-89",
				CVSS:       "9.1",
				Suggestion: "use parameterized queries",
			},
			{
				ID:         "python.deserialize.pickle",
				Pattern:    `\b(pickle|marshal)\.loads?\s*\(`,
				Message:    "unsafe deserialization of untrusted data",
				Severity:   "high",
				Category:   "deserialization",
				CWE:        "CWE-502",
				CVSS:       "9.8",
				Suggestion: "use JSON for untrusted input",
			},
			{
				ID:         "python.deserialize.yaml",
				Pattern:    `\byaml\.load\s*\((?![^)]*Loader)`,
				Message:    "yaml.load without a safe loader",
				Severity:   "high",
				Category:   "deserialization",
				CWE:        "CWE-502",
				CVSS:       "8.1",
				Suggestion: "use yaml.safe_load",
			},
			{
				ID:         "python.crypto.weak-hash",
				Pattern:    `\bhashlib\.(md5|sha1)\s*\(`,
				Message:    "weak hash algorithm",
				Severity:   "medium",
				Category:   "weak-crypto",
				CWE:        "CWE-328",
				CVSS:       "5.3",
				Suggestion: "use hashlib.sha256 or better",
			},
			{
				ID:       "python.crypto.random",
				Pattern:  `\brandom\.(random|randint|choice)\s*\(`,
				Message:  "random module is not cryptographically secure",
				Severity: "medium",
				Category: "weak-crypto",
				CWE:      "CWE-338",
				CVSS:     "5.3",
			},
			{
				ID:       "python.file.traversal",
				Pattern:  `\bopen\s*\([^)]*\+`,
				Message:  "file path built by concatenation - path traversal risk",
				Severity: "medium",
				Category: "path-traversal",
				CWE:      "CWE-22",
				CVSS:     "6.5",
			},
			{
				ID:       "python.import.dynamic",
				Pattern:  `\b__import__\s*\(`,
				Message:  "dynamic import - code injection risk",
				Severity: "high",
				Category: "code-injection",
				CWE:      "CWE-95",
				CVSS:     "7.3",
			},
		},
	}
}
