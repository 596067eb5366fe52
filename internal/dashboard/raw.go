package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/moznion/go-optional"
)

// RawPayload is the backend response as received. The backend has no schema
// contract, so both lists are kept as arbitrary decoded JSON.
type RawPayload struct {
	Metrics optional.Option[any]
	Trades  optional.Option[any]
}

// RawMetric is one metric-like record with every field optional.
type RawMetric struct {
	ID         optional.Option[string]
	Label      optional.Option[string]
	Value      optional.Option[RawValue]
	Trend      optional.Option[string]
	TrendValue optional.Option[string]
	Subtext    optional.Option[string]
	Icon       optional.Option[IconRef]
}

// RawTrade is one trade-like record with every field optional. Alias fields
// (Symbol, Side, EntryPrice, CurrentPrice, Timestamp) are kept separately and
// only consulted when the primary field is absent.
type RawTrade struct {
	ID           optional.Option[string]
	Pair         optional.Option[string]
	Symbol       optional.Option[string]
	Type         optional.Option[string]
	Side         optional.Option[string]
	Entry        optional.Option[RawValue]
	EntryPrice   optional.Option[RawValue]
	Current      optional.Option[RawValue]
	CurrentPrice optional.Option[RawValue]
	PnL          optional.Option[RawValue]
	Status       optional.Option[string]
	Time         optional.Option[string]
	Timestamp    optional.Option[string]
}

// ParsePayload decodes a response body. Invalid JSON is an error; valid JSON of
// any other shape than an object yields an empty payload.
// Numbers are kept as json.Number so that an out-of-range value only affects
// its own field.
func ParsePayload(data []byte) (RawPayload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return RawPayload{}, fmt.Errorf("decode payload: %w", err)
	}
	if rest := bytes.Trim(data[dec.InputOffset():], " \t\r\n"); len(rest) > 0 {
		return RawPayload{}, fmt.Errorf("decode payload: trailing data after JSON value")
	}
	return PayloadOf(v), nil
}

// PayloadOf extracts the metrics and trades members of a decoded JSON value.
func PayloadOf(v any) RawPayload {
	obj, ok := v.(map[string]any)
	if !ok {
		return RawPayload{}
	}
	var p RawPayload
	if m, ok := obj["metrics"]; ok && m != nil {
		p.Metrics = optional.Some(m)
	}
	if t, ok := obj["trades"]; ok && t != nil {
		p.Trades = optional.Some(t)
	}
	return p
}

// Normalize runs both normalizers on the payload.
func (p RawPayload) Normalize() ([]DisplayMetric, []DisplayTrade) {
	return NormalizeMetrics(p.Metrics.TakeOr(nil)), NormalizeTrades(p.Trades.TakeOr(nil))
}

// DecodeMetrics converts a decoded JSON array into raw metric records. Anything
// that is not an array yields nil. Elements that are not objects become records
// with every field absent.
func DecodeMetrics(v any) []RawMetric {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]RawMetric, len(arr))
	for i, el := range arr {
		obj, _ := el.(map[string]any)
		out[i] = RawMetric{
			ID:         stringField(obj, "id"),
			Label:      stringField(obj, "label"),
			Value:      valueField(obj, "value"),
			Trend:      stringField(obj, "trend"),
			TrendValue: stringField(obj, "trendValue"),
			Subtext:    stringField(obj, "subtext"),
			Icon:       iconField(obj, "icon"),
		}
	}
	return out
}

// DecodeTrades converts a decoded JSON array into raw trade records. Anything
// that is not an array yields nil.
func DecodeTrades(v any) []RawTrade {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]RawTrade, len(arr))
	for i, el := range arr {
		obj, _ := el.(map[string]any)
		out[i] = RawTrade{
			ID:           stringField(obj, "id"),
			Pair:         stringField(obj, "pair"),
			Symbol:       stringField(obj, "symbol"),
			Type:         stringField(obj, "type"),
			Side:         stringField(obj, "side"),
			Entry:        valueField(obj, "entry"),
			EntryPrice:   valueField(obj, "entry_price"),
			Current:      valueField(obj, "current"),
			CurrentPrice: valueField(obj, "current_price"),
			PnL:          valueField(obj, "pnl"),
			Status:       stringField(obj, "status"),
			Time:         stringField(obj, "time"),
			Timestamp:    stringField(obj, "timestamp"),
		}
	}
	return out
}

func stringField(obj map[string]any, key string) optional.Option[string] {
	if s, ok := stringOf(obj[key]); ok {
		return optional.Some(s)
	}
	return optional.None[string]()
}

func valueField(obj map[string]any, key string) optional.Option[RawValue] {
	if v, ok := rawValueOf(obj[key]); ok {
		return optional.Some(v)
	}
	return optional.None[RawValue]()
}

func iconField(obj map[string]any, key string) optional.Option[IconRef] {
	if r, ok := iconRefOf(obj[key]); ok {
		return optional.Some(r)
	}
	return optional.None[IconRef]()
}

// firstSome returns the first option holding a value.
func firstSome[T any](opts ...optional.Option[T]) optional.Option[T] {
	for _, o := range opts {
		if o.IsSome() {
			return o
		}
	}
	return optional.None[T]()
}
