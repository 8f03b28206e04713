package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/codesweep/codesweep/internal/finding"
)

func sampleFindings() []finding.Finding {
	return []finding.Finding{
		finding.New(finding.SeverityHigh, "SQL built by string concatenation").
			Rule("go.sql.concat").
			At("internal/store/user.go", 42, 9).
			Build(),
		finding.New(finding.SeverityMedium, "math/rand used in security context").
			Rule("go.crypto.mathrand").
			At("internal/token/token.go", 7, 2).
			Build(),
	}
}

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	findings := sampleFindings()

	t.Run("set and get", func(t *testing.T) {
		c.Set(ctx, "key", findings, time.Hour)

		got, ok := c.Get(ctx, "key")
		if !ok {
			t.Fatal("expected key to exist")
		}
		if len(got) != 2 {
			t.Fatalf("Get() returned %d findings, want 2", len(got))
		}
		if got[0].RuleID != "go.sql.concat" {
			t.Errorf("RuleID = %q, want go.sql.concat", got[0].RuleID)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		_, ok := c.Get(ctx, "missing")
		if ok {
			t.Error("expected key to not exist")
		}
	})

	t.Run("expired entry", func(t *testing.T) {
		c.Set(ctx, "expired", findings, -time.Hour) // already expired

		_, ok := c.Get(ctx, "expired")
		if ok {
			t.Error("expected expired key to not exist")
		}
	})

	t.Run("empty result is a hit", func(t *testing.T) {
		c.Set(ctx, "clean-file", nil, time.Hour)

		got, ok := c.Get(ctx, "clean-file")
		if !ok {
			t.Fatal("expected cached clean result to count as hit")
		}
		if len(got) != 0 {
			t.Errorf("Get() returned %d findings, want 0", len(got))
		}
	})
}

func TestMemoryCache_SetCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	findings := sampleFindings()
	c.Set(ctx, "key", findings, time.Hour)

	findings[0].RuleID = "mutated"

	got, _ := c.Get(ctx, "key")
	if got[0].RuleID != "go.sql.concat" {
		t.Errorf("cached finding mutated through caller slice: RuleID = %q", got[0].RuleID)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	c.Set(ctx, "key", sampleFindings(), time.Hour)
	c.Delete(ctx, "key")

	_, ok := c.Get(ctx, "key")
	if ok {
		t.Error("expected key to be deleted")
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	c.Set(ctx, "key1", sampleFindings(), time.Hour)
	c.Set(ctx, "key2", nil, time.Hour)

	c.Clear(ctx)

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestMemoryCache_Cleanup(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	c.Set(ctx, "valid", sampleFindings(), time.Hour)
	c.Set(ctx, "expired", nil, -time.Second)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	c.Cleanup()

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	_, ok := c.Get(ctx, "valid")
	if !ok {
		t.Error("expected valid key to exist")
	}
}

func TestKey(t *testing.T) {
	key1 := Key("abc123", []byte("content"))
	key2 := Key("abc123", []byte("content"))
	key3 := Key("abc123", []byte("different"))
	key4 := Key("def456", []byte("content"))

	if key1 != key2 {
		t.Error("same fingerprint and content should produce same key")
	}

	if key1 == key3 {
		t.Error("different content should produce different key")
	}

	if key1 == key4 {
		t.Error("different fingerprint should produce different key")
	}

	if !strings.HasPrefix(key1, "abc123:") {
		t.Errorf("key = %q, want prefix 'abc123:'", key1)
	}

	if len(key1) != len("abc123:")+32 { // 16 bytes = 32 hex chars
		t.Errorf("key length = %d, want %d", len(key1), len("abc123:")+32)
	}
}
