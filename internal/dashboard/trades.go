package dashboard

import (
	"fmt"
	"strings"

	"github.com/moznion/go-optional"
)

// TradeSide is the direction of a position.
type TradeSide string

const (
	SideLong  TradeSide = "long"
	SideShort TradeSide = "short"
)

// TradeStatus is whether a position is still open.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "open"
	StatusClosed TradeStatus = "closed"
)

// DisplayTrade is a fully populated row of the recent positions list.
type DisplayTrade struct {
	ID      string      `json:"id"`
	Pair    string      `json:"pair"`
	Type    TradeSide   `json:"type"`
	Entry   float64     `json:"entry"`
	Current float64     `json:"current"`
	PnL     float64     `json:"pnl"`
	Status  TradeStatus `json:"status"`
	Time    string      `json:"time"`
}

// NormalizeTrades maps a decoded JSON array of trade-like objects to display
// trades. It never fails: non-array input yields an empty slice.
func NormalizeTrades(v any) []DisplayTrade {
	raw := DecodeTrades(v)
	out := make([]DisplayTrade, len(raw))
	for i, t := range raw {
		out[i] = NormalizeTrade(t, i)
	}
	return out
}

// NormalizeTrade fills the defaults of a single raw trade at position idx.
func NormalizeTrade(t RawTrade, idx int) DisplayTrade {
	side := SideLong
	if strings.ToLower(firstSome(t.Type, t.Side).TakeOr("")) == string(SideShort) {
		side = SideShort
	}
	status := StatusOpen
	if strings.ToLower(t.Status.TakeOr("")) == string(StatusClosed) {
		status = StatusClosed
	}
	return DisplayTrade{
		ID:      t.ID.TakeOr(fmt.Sprintf("t%d", idx)),
		Pair:    firstSome(t.Pair, t.Symbol).TakeOr("UNKNOWN"),
		Type:    side,
		Entry:   firstSome(t.Entry, t.EntryPrice).TakeOr(RawValue{}).Float(),
		Current: firstSome(t.Current, t.CurrentPrice).TakeOr(RawValue{}).Float(),
		PnL:     t.PnL.TakeOr(RawValue{}).Float(),
		Status:  status,
		Time:    firstSome(t.Time, t.Timestamp).TakeOr(""),
	}
}

// Raw converts the display trade back into a raw record using the primary
// field names only.
func (d DisplayTrade) Raw() RawTrade {
	return RawTrade{
		ID:      optional.Some(d.ID),
		Pair:    optional.Some(d.Pair),
		Type:    optional.Some(string(d.Type)),
		Entry:   optional.Some(NumberValue(d.Entry)),
		Current: optional.Some(NumberValue(d.Current)),
		PnL:     optional.Some(NumberValue(d.PnL)),
		Status:  optional.Some(string(d.Status)),
		Time:    optional.Some(d.Time),
	}
}
