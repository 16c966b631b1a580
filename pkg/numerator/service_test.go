package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	val int64
	err error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if p, ok := dest[0].(*int64); ok {
			*p = r.val
		}
	}
	return nil
}

type fakeQuerier struct {
	mu   sync.Mutex
	vals map[string]int64
	err  error
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return &fakeRow{err: q.err}
	}
	if q.vals == nil {
		q.vals = make(map[string]int64)
	}
	key, _ := args[0].(string)
	q.vals[key]++
	return &fakeRow{val: q.vals[key]}
}

func TestNext_SequentialPerPrefix(t *testing.T) {
	svc := New(&fakeQuerier{})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	first, err := svc.Next(ctx, "ALC")
	require.NoError(t, err)
	assert.Equal(t, "ALC-2026-00001", first)

	second, err := svc.Next(ctx, "ALC")
	require.NoError(t, err)
	assert.Equal(t, "ALC-2026-00002", second)

	// A different prefix runs its own counter.
	sale, err := svc.Next(ctx, "SAL")
	require.NoError(t, err)
	assert.Equal(t, "SAL-2026-00001", sale)
}

func TestNext_QueryError(t *testing.T) {
	svc := New(&fakeQuerier{err: pgx.ErrTxClosed})

	_, err := svc.Next(context.Background(), "RCL")
	require.Error(t, err)
	assert.ErrorIs(t, err, pgx.ErrTxClosed)
}

func TestFormat_WithoutYear(t *testing.T) {
	svc := New(&fakeQuerier{})
	svc.cfg = Config{IncludeYear: false, PadWidth: 4}

	assert.Equal(t, "DOC-0042", svc.format("DOC", 2026, 42))
}
