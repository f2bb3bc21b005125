package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/procdesk/internal/core/domain"
)

func TestLedger_Empty(t *testing.T) {
	ledger := NewLedger()

	records, err := ledger.ReadAll(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestLedger_AppendPreservesOrder(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	for i := 0; i < 3; i++ {
		require.NoError(t, ledger.Append(ctx, domain.LedgerRecord{
			User:    fmt.Sprintf("user%d", i),
			Process: "A",
			Outcome: domain.OutcomeSuccess,
		}))
	}

	records, err := ledger.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("user%d", i), rec.User)
	}
}

func TestLedger_ReadAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	require.NoError(t, ledger.Append(ctx, domain.LedgerRecord{User: "ana"}))

	records, err := ledger.ReadAll(ctx)
	require.NoError(t, err)
	records[0].User = "changed"

	again, err := ledger.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ana", again[0].User)
}

func TestLedger_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	require.NoError(t, ledger.Append(ctx, domain.LedgerRecord{User: "ana"}))

	require.NoError(t, ledger.Clear(ctx))
	require.NoError(t, ledger.Clear(ctx))

	records, err := ledger.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLedger_Append_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewLedger().Append(ctx, domain.LedgerRecord{User: "ana"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestLedger_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ledger.Append(ctx, domain.LedgerRecord{User: "ana"})
		}()
	}
	wg.Wait()

	records, err := ledger.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 50)
}
