package joincode

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"sync"
	"testing"

	"github.com/mmynk/watchtogether/internal/apperr"
	"github.com/mmynk/watchtogether/internal/storage"
)

var codePattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{3}$`)

func TestGenerate_Format(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		code := Generate(rng)
		if !codePattern.MatchString(code) {
			t.Fatalf("Generate() = %q, does not match %s", code, codePattern)
		}
		if !Valid(code) {
			t.Fatalf("Valid(%q) = false", code)
		}
	}

	if code := Generate(nil); !codePattern.MatchString(code) {
		t.Errorf("Generate(nil) = %q", code)
	}
}

func TestGenerate_UsesWholeAlphabet(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	seenLetters := map[byte]bool{}
	seenDigits := map[byte]bool{}
	for i := 0; i < 5000; i++ {
		code := Generate(rng)
		for j := 0; j < 3; j++ {
			seenLetters[code[j]] = true
		}
		for j := 3; j < Length; j++ {
			seenDigits[code[j]] = true
		}
	}
	if len(seenLetters) != 26 || len(seenDigits) != 10 {
		t.Errorf("saw %d letters and %d digits, want 26 and 10", len(seenLetters), len(seenDigits))
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "abc123", want: "ABC123"},
		{raw: "  xyz789\n", want: "XYZ789"},
		{raw: "ABC123", want: "ABC123"},
		{raw: "AB123", wantErr: true},
		{raw: "ABCD1234", wantErr: true},
		{raw: "123ABC", wantErr: true},
		{raw: "AB1234", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "ÄBC123", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, apperr.Validation) {
					t.Errorf("Normalize(%q) error = %v, want validation error", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) failed: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

// memChecker is an in-memory set of taken codes.
type memChecker struct {
	mu    sync.Mutex
	taken map[string]bool
	err   error
	calls int
}

func (c *memChecker) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return false, c.err
	}
	return c.taken[code], nil
}

// sequence returns a generator that yields codes in order, then repeats the last.
func sequence(codes ...string) func() string {
	i := 0
	return func() string {
		code := codes[min(i, len(codes)-1)]
		i++
		return code
	}
}

func TestAllocator_RetriesOnCollision(t *testing.T) {
	checker := &memChecker{taken: map[string]bool{"AAA111": true}}
	alloc := NewAllocator(checker, WithGenerator(sequence("AAA111", "BBB222")))

	code, err := alloc.GenerateUnique(context.Background())
	if err != nil {
		t.Fatalf("GenerateUnique failed: %v", err)
	}
	if code != "BBB222" {
		t.Errorf("code = %q, want BBB222 after the collision", code)
	}
	if checker.calls != 2 {
		t.Errorf("existence checks = %d, want 2", checker.calls)
	}
}

func TestAllocator_Exhausted(t *testing.T) {
	checker := &memChecker{taken: map[string]bool{"AAA111": true}}
	alloc := NewAllocator(checker, WithMaxAttempts(5), WithGenerator(sequence("AAA111")))

	_, err := alloc.GenerateUnique(context.Background())
	if !errors.Is(err, apperr.CodeGenerationExhausted) {
		t.Fatalf("error = %v, want CodeGenerationExhausted", err)
	}
	if checker.calls != 5 {
		t.Errorf("existence checks = %d, want 5", checker.calls)
	}
}

func TestAllocator_CheckFailure(t *testing.T) {
	checker := &memChecker{err: errors.New("database is locked")}
	alloc := NewAllocator(checker)

	_, err := alloc.GenerateUnique(context.Background())
	if !errors.Is(err, apperr.RemoteRead) {
		t.Errorf("error = %v, want RemoteRead", err)
	}
}

func TestAllocator_ClaimConflictRetries(t *testing.T) {
	checker := &memChecker{taken: map[string]bool{}}
	alloc := NewAllocator(checker, WithGenerator(sequence("AAA111", "BBB222")))

	var claimed []string
	code, err := alloc.Allocate(context.Background(), func(code string) error {
		claimed = append(claimed, code)
		if code == "AAA111" {
			// Another writer took it between the check and the insert.
			return fmt.Errorf("insert: %w", storage.ErrConflict)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if code != "BBB222" || len(claimed) != 2 {
		t.Errorf("code = %q, claims = %v; want BBB222 after one conflict", code, claimed)
	}
}

func TestAllocator_ClaimErrorPassesThrough(t *testing.T) {
	checker := &memChecker{taken: map[string]bool{}}
	alloc := NewAllocator(checker)
	boom := errors.New("disk full")

	_, err := alloc.Allocate(context.Background(), func(code string) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want the claim error", err)
	}
	if checker.calls != 1 {
		t.Errorf("existence checks = %d, want 1 (no retry on non-conflict)", checker.calls)
	}
}
