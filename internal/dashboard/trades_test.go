package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTrades_NonArray(t *testing.T) {
	for _, in := range []any{nil, 1.5, "trades", map[string]any{"id": "x"}} {
		got := NormalizeTrades(in)
		assert.NotNil(t, got, "input %#v", in)
		assert.Empty(t, got, "input %#v", in)
	}
}

func TestNormalizeTrades_ShortSideAliases(t *testing.T) {
	got := NormalizeTrades(decodeJSON(t, `[{"side": "SHORT", "entry_price": "100", "pnl": -5}]`))
	require.Len(t, got, 1)
	assert.Equal(t, DisplayTrade{
		ID:      "t0",
		Pair:    "UNKNOWN",
		Type:    SideShort,
		Entry:   100,
		Current: 0,
		PnL:     -5,
		Status:  StatusOpen,
		Time:    "",
	}, got[0])
}

func TestNormalizeTrades_Defaults(t *testing.T) {
	got := NormalizeTrades(decodeJSON(t, `[{}, {}]`))
	require.Len(t, got, 2)
	assert.Equal(t, "t0", got[0].ID)
	assert.Equal(t, "t1", got[1].ID)
	for _, tr := range got {
		assert.Equal(t, "UNKNOWN", tr.Pair)
		assert.Equal(t, SideLong, tr.Type)
		assert.Equal(t, StatusOpen, tr.Status)
		assert.Zero(t, tr.Entry)
		assert.Zero(t, tr.Current)
		assert.Zero(t, tr.PnL)
	}
}

func TestNormalizeTrades_PrimaryFieldsWin(t *testing.T) {
	got := NormalizeTrades(decodeJSON(t, `[{
		"id": "abc",
		"pair": "BTC/EUR",
		"symbol": "ETH/EUR",
		"type": "Short",
		"side": "long",
		"entry": 42000.5,
		"entry_price": 1,
		"current": "43000",
		"current_price": 2,
		"pnl": "12.75",
		"status": "CLOSED",
		"time": "10:42",
		"timestamp": "ignored"
	}]`))
	require.Len(t, got, 1)
	assert.Equal(t, DisplayTrade{
		ID:      "abc",
		Pair:    "BTC/EUR",
		Type:    SideShort,
		Entry:   42000.5,
		Current: 43000,
		PnL:     12.75,
		Status:  StatusClosed,
		Time:    "10:42",
	}, got[0])
}

func TestNormalizeTrades_FallbackFields(t *testing.T) {
	got := NormalizeTrades(decodeJSON(t, `[{"symbol": "SOL/USDT", "current_price": 21.5, "timestamp": 1700000000}]`))
	require.Len(t, got, 1)
	assert.Equal(t, "SOL/USDT", got[0].Pair)
	assert.Equal(t, 21.5, got[0].Current)
	assert.Equal(t, "1700000000", got[0].Time)
}

func TestNormalizeTrades_UnparseableNumbersAreZero(t *testing.T) {
	got := NormalizeTrades(decodeJSON(t, `[{"entry": "n/a", "entry_price": 10, "current": "NaN", "pnl": {"v": 1}}]`))
	require.Len(t, got, 1)
	// A present but unparseable primary field does not fall back to its alias.
	assert.Zero(t, got[0].Entry)
	assert.Zero(t, got[0].Current)
	assert.Zero(t, got[0].PnL)
}

func TestNormalizeTrades_StatusAndTypeNormalization(t *testing.T) {
	got := NormalizeTrades(decodeJSON(t, `[
		{"status": "closed"},
		{"status": "Closed "},
		{"status": "pending"},
		{"type": "sell"},
		{"type": "SHORT"}
	]`))
	require.Len(t, got, 5)
	assert.Equal(t, StatusClosed, got[0].Status)
	assert.Equal(t, StatusOpen, got[1].Status)
	assert.Equal(t, StatusOpen, got[2].Status)
	assert.Equal(t, SideLong, got[3].Type)
	assert.Equal(t, SideShort, got[4].Type)
}

func TestNormalizeTrade_Idempotent(t *testing.T) {
	src := NormalizeTrades(decodeJSON(t, `[
		{"side": "SHORT", "entry_price": "100", "pnl": -5},
		{"id": "x", "pair": "BTC/EUR", "entry": 1.25, "current": 1.5, "pnl": 0.25, "status": "closed", "time": "09:00"}
	]`))

	for i, d := range src {
		assert.Equal(t, d, NormalizeTrade(d.Raw(), i))
	}

	b, err := json.Marshal(src)
	require.NoError(t, err)
	assert.Equal(t, src, NormalizeTrades(decodeJSON(t, string(b))))
}
