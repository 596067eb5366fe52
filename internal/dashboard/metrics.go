package dashboard

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// Trend is the direction badge of a metric card.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// DisplayMetric is a fully populated metric card.
type DisplayMetric struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Value      string `json:"value"`
	Trend      Trend  `json:"trend"`
	TrendValue string `json:"trendValue"`
	Subtext    string `json:"subtext,omitempty"`
	Icon       Glyph  `json:"icon"`
}

var capitalLabel = regexp.MustCompile(`(?i)capital`)

// NormalizeMetrics maps a decoded JSON array of metric-like objects to display
// metrics. It never fails: non-array input yields an empty slice.
func NormalizeMetrics(v any) []DisplayMetric {
	raw := DecodeMetrics(v)
	out := make([]DisplayMetric, len(raw))
	for i, m := range raw {
		out[i] = NormalizeMetric(m, i)
	}
	return out
}

// NormalizeMetric fills the defaults of a single raw metric at position idx.
func NormalizeMetric(m RawMetric, idx int) DisplayMetric {
	label := m.Label.TakeOr(fmt.Sprintf("Metric %d", idx+1))
	return DisplayMetric{
		ID:         m.ID.TakeOr(strconv.Itoa(idx)),
		Label:      label,
		Value:      metricValue(m.Value, m.Label),
		Trend:      Trend(m.Trend.TakeOr(string(TrendNeutral))),
		TrendValue: m.TrendValue.TakeOr(""),
		Subtext:    m.Subtext.TakeOr(""),
		Icon:       m.Icon.TakeOr(IconName("")).Resolve(),
	}
}

// metricValue formats numbers as euros when the source label mentions capital.
// The synthesized placeholder label never does, so only the source label counts.
func metricValue(v optional.Option[RawValue], label optional.Option[string]) string {
	if v.IsNone() {
		return ""
	}
	val := v.Unwrap()
	if !val.IsNum {
		return val.Text
	}
	if label.IsSome() && capitalLabel.MatchString(label.Unwrap()) {
		return fixed2(val.Num) + " €"
	}
	return FormatNumber(val.Num)
}

// fixed2 rounds the exact binary value of f to two decimals, ties away from
// zero, so 1.005 (stored as 1.00499...) gives "1.00". Magnitudes of 1e21 and
// above keep their exponent form.
func fixed2(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1e21 {
		return FormatNumber(f)
	}
	d, err := decimal.NewFromString(strconv.FormatFloat(f, 'f', exactDigits, 64))
	if err != nil {
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
	return d.Round(2).StringFixed(2)
}

// exactDigits is enough fractional digits to print any float64 exactly.
const exactDigits = 1074

// Raw converts the display metric back into a raw record with every field set.
func (d DisplayMetric) Raw() RawMetric {
	return RawMetric{
		ID:         optional.Some(d.ID),
		Label:      optional.Some(d.Label),
		Value:      optional.Some(TextValue(d.Value)),
		Trend:      optional.Some(string(d.Trend)),
		TrendValue: optional.Some(d.TrendValue),
		Subtext:    optional.Some(d.Subtext),
		Icon:       optional.Some(IconGlyph(d.Icon)),
	}
}
