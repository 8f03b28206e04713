package builtin

import "github.com/codesweep/codesweep/internal/rules"

func rustPack() rules.Pack {
	return rules.Pack{
		Language: "rust",
		Name:     "builtin-rust",
		Rules: []rules.Rule{
			{
				ID:         "rust.unsafe.block",
				Pattern:    `\bunsafe\s*(\{|fn\b|impl\b)`,
				Message:    "unsafe code bypasses memory safety guarantees",
				Severity:   "critical",
				Category:   "memory-safety",
				CWE:        "CWE-119",
				CVSS:       "8.6",
				Suggestion: "isolate unsafe blocks behind a safe, audited API",
			},
			{
				ID:       "rust.unsafe.static-mut",
				Pattern:  `\bstatic\s+mut\b`,
				Message:  "mutable static - data race risk",
				Severity: "critical",
				Category: "memory-safety",
				CWE:      "CWE-362",
				CVSS:     "8.1",
			},
			{
				ID:       "rust.unsafe.transmute",
				Pattern:  `\bmem::transmute\b|std::mem::transmute`,
				Message:  "transmute reinterprets memory without checks",
				Severity: "critical",
				Category: "memory-safety",
				CWE:      "CWE-843",
				CVSS:     "8.6",
			},
			{
				ID:       "rust.unsafe.forget",
				Pattern:  `\bmem::forget\b|std::mem::forget`,
				Message:  "mem::forget skips the destructor - resource leak",
				Severity: "critical",
				Category: "memory-safety",
				CWE:      "CWE-401",
				CVSS:     "7.1",
			},
			{
				ID:       "rust.unsafe.raw-mut-pointer",
				Pattern:  `\*mut\s+\w`,
				Message:  "raw mutable pointer",
				Severity: "critical",
				Category: "memory-safety",
				CWE:      "CWE-476",
				CVSS:     "7.8",
			},
			{
				ID:       "rust.unsafe.raw-const-pointer",
				Pattern:  `\*const\s+\w`,
				Message:  "raw const pointer",
				Severity: "high",
				Category: "memory-safety",
				CWE:      "CWE-476",
				CVSS:     "6.2",
			},
			{
				ID:       "rust.ffi.extern",
				Pattern:  `extern\s+"C"`,
				Message:  "foreign function interface boundary",
				Severity: "high",
				Category: "ffi",
				CWE:      "CWE-111",
				CVSS:     "6.8",
			},
			{
				ID:         "rust.panic.unwrap",
				Pattern:    `\.(unwrap|expect)\s*\(`,
				Message:    "unwrap/expect panics on error",
				Severity:   "high",
				Category:   "panic",
				CWE:        "CWE-248",
				CVSS:       "5.3",
				Suggestion: "propagate with ? or handle the Err variant",
			},
			{
				ID:       "rust.panic.macro",
				Pattern:  `\b(panic!|unreachable!|todo!|unimplemented!)\s*\(`,
				Message:  "explicit panic in library code",
				Severity: "high",
				Category: "panic",
				CWE:      "CWE-248",
				CVSS:     "5.3",
			},
			{
				ID:       "rust.sql.format",
				Pattern:  `format!\s*\(\s*"[^"]*(SELECT|INSERT|UPDATE|DELETE)[^"]*\{`,
				Message:  "SQL built with format! interpolation - injection risk",
				Severity: "high",
				Category: "sql-injection",
				CWE:      "CWE-89",
				CVSS:     "8.2",
			},
			{
				ID:         "rust.crypto.thread-rng",
				Pattern:    `rand::thread_rng|rand::random`,
				Message:    "non-cryptographic RNG",
				Severity:   "medium",
				Category:   "weak-crypto",
				CWE:        "CWE-338",
				CVSS:       "5.3",
				Suggestion: "use rand::rngs::OsRng or the getrandom crate for secrets",
			},
			{
				ID:       "rust.secret.hardcoded",
				Pattern:  `(?i)(password|secret|api_key|token)\s*[:=]\s*"[^"]+"`,
				Message:  "hardcoded credential detected",
				Severity: "critical",
				Category: "hardcoded-secrets",
				CWE:      "CWE-798",
				CVSS:     "9.1",
			},
		},
	}
}
