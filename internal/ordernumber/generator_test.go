package ordernumber

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	primaryPattern = regexp.MustCompile(`^SN-\d{6}-\d{6}-[A-Z0-9]{4}$`)
	clientPattern  = regexp.MustCompile(`^SN-[A-Z]{3}-\d{4}-\d{4}$`)
)

func fixedClock() *clock.FakeClock {
	return clock.NewFakeClock(time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC))
}

func TestGenerate_Format(t *testing.T) {
	gen := New(fixedClock())

	number, err := gen.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Regexp(t, primaryPattern, number)
	assert.Equal(t, "SN-250314-", number[:10])
}

func TestGenerate_BoundedRetry(t *testing.T) {
	gen := New(fixedClock())
	calls := 0
	_, err := gen.Generate(context.Background(), func(ctx context.Context, number string) (bool, error) {
		calls++
		return true, nil
	})
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, DefaultMaxAttempts, calls)
}

func TestGenerate_LookupError(t *testing.T) {
	gen := New(fixedClock())
	boom := errors.New("db down")
	_, err := gen.Generate(context.Background(), func(ctx context.Context, number string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestGenerate_RetriesOnCollision(t *testing.T) {
	gen := New(fixedClock())
	seen := 0
	number, err := gen.Generate(context.Background(), func(ctx context.Context, number string) (bool, error) {
		seen++
		return seen < 3, nil
	})
	require.NoError(t, err)
	assert.Regexp(t, primaryPattern, number)
	assert.Equal(t, 3, seen)
}

func TestGenerate_ConcurrentUnique(t *testing.T) {
	gen := New(fixedClock())
	var reserved sync.Map
	exists := func(ctx context.Context, number string) (bool, error) {
		_, loaded := reserved.LoadOrStore(number, struct{}{})
		return loaded, nil
	}

	const n = 200
	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := gen.Generate(context.Background(), exists)
			if err == nil {
				results <- number
			}
		}()
	}
	wg.Wait()
	close(results)

	distinct := map[string]struct{}{}
	for number := range results {
		_, dup := distinct[number]
		assert.False(t, dup, "duplicate %s", number)
		distinct[number] = struct{}{}
	}
	assert.Len(t, distinct, n)
}

func TestGenerateForClient(t *testing.T) {
	gen := New(fixedClock())

	t.Run("Client scheme", func(t *testing.T) {
		number, err := gen.GenerateForClient(context.Background(), "Aïssatou Ndiaye", "+221 77 123 45 67", nil)
		require.NoError(t, err)
		assert.Regexp(t, clientPattern, number)
		assert.Equal(t, "SN-ANX-4567-", number[:12])
	})

	t.Run("Sequential numbers in one batch", func(t *testing.T) {
		taken := map[string]bool{}
		exists := func(ctx context.Context, number string) (bool, error) { return taken[number], nil }
		for i := 0; i < 3; i++ {
			number, err := gen.GenerateForClient(context.Background(), "Moussa Diop", "771234567", exists)
			require.NoError(t, err)
			assert.False(t, taken[number])
			taken[number] = true
		}
		assert.Len(t, taken, 3)
	})

	t.Run("Falls back to primary scheme", func(t *testing.T) {
		exists := func(ctx context.Context, number string) (bool, error) {
			return clientPattern.MatchString(number), nil
		}
		number, err := gen.GenerateForClient(context.Background(), "Moussa Diop", "771234567", exists)
		require.NoError(t, err)
		assert.Regexp(t, primaryPattern, number)
	})
}

func TestInitialsAndPhoneSuffix(t *testing.T) {
	assert.Equal(t, "MDX", Initials("Moussa Diop"))
	assert.Equal(t, "ABC", Initials("awa bintou cissé diallo"))
	assert.Equal(t, "XXX", Initials(""))
	assert.Equal(t, "4567", PhoneSuffix("+221 77 123 45 67"))
	assert.Equal(t, "0012", PhoneSuffix("12"))
	assert.Equal(t, "0000", PhoneSuffix(""))
}
