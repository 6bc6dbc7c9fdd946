package scan

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSplitRangeBatches(t *testing.T) {
	cases := []struct {
		name      string
		from, to  uint64
		batchSize uint64
		want      []BlockRange
	}{
		{"uneven tail", 0, 9, 4, []BlockRange{{0, 3}, {4, 7}, {8, 9}}},
		{"exact multiple", 10, 17, 4, []BlockRange{{10, 13}, {14, 17}}},
		{"whole range in one batch", 7, 9, 100, []BlockRange{{7, 9}}},
		{"single block", 5, 5, 1, []BlockRange{{5, 5}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SplitRange(tc.from, tc.to, tc.batchSize)
			if err != nil {
				t.Fatalf("split: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ranges mismatch: %+v != %+v", got, tc.want)
			}

			var covered uint64
			for _, blockRange := range got {
				covered += blockRange.Len()
			}
			if covered != tc.to-tc.from+1 {
				t.Fatalf("batches cover %d blocks, range has %d", covered, tc.to-tc.from+1)
			}
		})
	}
}

func TestSplitRangeNearMaxBlock(t *testing.T) {
	// start + batchSize would wrap uint64; the last batch must clamp to
	// the end instead of wrapping.
	from := uint64(math.MaxUint64 - 2)
	got, err := SplitRange(from, math.MaxUint64, math.MaxUint64)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	want := []BlockRange{{From: from, To: math.MaxUint64}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranges mismatch: %+v != %+v", got, want)
	}
}

func TestSplitRangeInvalid(t *testing.T) {
	if _, err := SplitRange(10, 9, 1); err == nil {
		t.Fatalf("expected error for inverted range")
	}
	if _, err := SplitRange(1, 10, 0); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
}

func TestWithRetryRecovers(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 5, time.Millisecond, zap.NewNop(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retry should recover: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls: %d", calls)
	}
}

func TestWithRetryExhausts(t *testing.T) {
	wantErr := errors.New("persistent")
	calls := 0
	err := withRetry(context.Background(), 2, time.Millisecond, zap.NewNop(), func(context.Context) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("one initial attempt plus two retries expected, got %d calls", calls)
	}
}

func TestWithRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withRetry(ctx, 5, time.Minute, zap.NewNop(), func(context.Context) error {
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error while backing off, got %v", err)
	}
}
