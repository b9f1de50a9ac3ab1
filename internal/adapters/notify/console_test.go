package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/tradescan/internal/adapters/notify"
	"github.com/alejandrodnm/tradescan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRun(n int) domain.Run {
	run := domain.NewRun(domain.Pair{InputSymbol: "GIFF", OutputSymbol: "WPLS"}, time.Now())
	run.Pools = []domain.PoolOutcome{{PoolID: "1", Trades: n}}
	for i := 0; i < n; i++ {
		run.Trades = append(run.Trades, domain.Trade{
			Timestamp:     "2024-07-01T11:59:58.000000Z",
			TxHash:        "0xtx",
			TraderAddress: "0x1234567890abcdef1234567890abcdef12345678",
			InputAmount:   decimal.RequireFromString("1500.25"),
			OutputAmount:  decimal.RequireFromString("32.1"),
			PriceUSD:      decimal.RequireFromString("0.0021"),
			PoolAddress:   "0xpool",
			Chain:         "PulseChain",
		})
	}
	return run
}

func TestConsole_Notify_Compact(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, false, 0)

	require.NoError(t, c.Notify(context.Background(), makeRun(3)))
	out := buf.String()
	assert.Contains(t, out, "GIFF/WPLS")
	assert.Contains(t, out, "3 trades")
	assert.Contains(t, out, "11:59:58")
	assert.NotContains(t, out, "PulseChain", "el modo compacto no imprime tabla")
}

func TestConsole_Notify_Table(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true, 2)

	require.NoError(t, c.Notify(context.Background(), makeRun(3)))
	out := buf.String()
	assert.Contains(t, out, "PulseChain")
	assert.Contains(t, out, "1500.2500")
	assert.Contains(t, out, "0x1234…5678")
	assert.Contains(t, out, "1 more trades")
}

func TestConsole_Notify_Empty(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true, 0)

	require.NoError(t, c.Notify(context.Background(), makeRun(0)))
	assert.Contains(t, buf.String(), "no trades found")
}

func TestJSONFile_Notify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades_with_balances.json")
	run := makeRun(2)
	run.Trades[0].TraderBalance = json.RawMessage(`{"usd": 5}`)

	require.NoError(t, notify.NewJSONFile(path).Notify(context.Background(), run))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "1500.25", got[0]["input_amount"])
	assert.Equal(t, map[string]any{"usd": float64(5)}, got[0]["trader_balance"])
	_, hasBalance := got[1]["trader_balance"]
	assert.False(t, hasBalance)
}

func TestJSONFile_EmptyRunWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, notify.NewJSONFile(path).Notify(context.Background(), makeRun(0)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

type failingNotifier struct{ calls int }

func (f *failingNotifier) Notify(context.Context, domain.Run) error {
	f.calls++
	return errors.New("nope")
}

func TestMulti_ContinuesAfterError(t *testing.T) {
	a, b := &failingNotifier{}, &failingNotifier{}
	err := notify.Multi{a, b}.Notify(context.Background(), makeRun(1))
	assert.EqualError(t, err, "nope")
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}
