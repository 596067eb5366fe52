package app

import (
	"botdash/internal/dashboard"
	"fmt"
	"html/template"
	"math"
	"time"
)

// statusStyle is the presentation of one backend status on the status card.
type statusStyle struct {
	Label string
	Class string
	Icon  string
	// Bar is the width in percent of the health bar.
	Bar int
}

func styleFor(s BackendStatus) statusStyle {
	switch s {
	case BackendOperational:
		return statusStyle{Label: "Operational", Class: "operational", Icon: "✓", Bar: 99}
	case BackendDegraded:
		return statusStyle{Label: "Degraded", Class: "degraded", Icon: "!", Bar: 70}
	case BackendDown:
		return statusStyle{Label: "Outage", Class: "down", Icon: "✕", Bar: 10}
	default:
		return statusStyle{Label: "Maintenance", Class: "maintenance", Icon: "◷", Bar: 10}
	}
}

type navLink struct {
	Href   string
	Label  string
	Icon   string
	Active bool
}

type statusCardView struct {
	Name        string
	Style       statusStyle
	Uptime      string
	LatencyMs   int64
	LastUpdated string
}

type pageView struct {
	Title          string
	Version        string
	Nav            []navLink
	RefreshSeconds int
	Notice         string
	Config         string
	Loading        bool
	LastUpdate     string
	Metrics        []dashboard.DisplayMetric
	Trades         []dashboard.DisplayTrade
	Backend        statusCardView
}

func buildPageView(snap Snapshot, activePath, endpoint, version string, refresh time.Duration) pageView {
	nav := []navLink{
		{Href: "/", Label: "Tableau de bord", Icon: "↗"},
		{Href: "/history", Label: "Historique", Icon: "⟲"},
		{Href: "/config", Label: "Configuration", Icon: "⚙"},
	}
	for i := range nav {
		nav[i].Active = nav[i].Href == activePath
	}

	lastUpdate := "En attente..."
	if !snap.LastUpdate.IsZero() {
		lastUpdate = snap.LastUpdate.Local().Format("15:04:05")
	}

	lastAttempt := "never"
	if !snap.Backend.LastAttempt.IsZero() {
		lastAttempt = snap.Backend.LastAttempt.Local().Format("15:04:05")
	}

	secs := int(math.Ceil(refresh.Seconds()))
	if secs < 1 {
		secs = 1
	}

	return pageView{
		Title:          "Performance en Direct",
		Version:        version,
		Nav:            nav,
		RefreshSeconds: secs,
		Loading:        snap.Loading,
		LastUpdate:     lastUpdate,
		Metrics:        snap.Metrics,
		Trades:         snap.Trades,
		Backend: statusCardView{
			Name:        nz(endpoint, "Backend API"),
			Style:       styleFor(snap.Backend.Status),
			Uptime:      uptimeRatio(snap.Backend.Successes, snap.Backend.Failures),
			LatencyMs:   snap.Backend.LatencyMs,
			LastUpdated: lastAttempt,
		},
	}
}

// uptimeRatio is the share of successful cycles.
func uptimeRatio(ok, failed uint64) string {
	total := ok + failed
	if total == 0 {
		return "—"
	}
	return fmt.Sprintf("%.1f%%", float64(ok)*100/float64(total))
}

var templateFuncs = template.FuncMap{
	"num": dashboard.FormatNumber,
	"pnl": func(v float64) string {
		if v >= 0 {
			return fmt.Sprintf("+%.2f", v)
		}
		return fmt.Sprintf("%.2f", v)
	},
}

var pageTemplate = template.Must(template.New("page").Funcs(templateFuncs).Parse(pageHTML))

const pageHTML = `{{define "navbar"}}
<nav class="navbar">
  <div class="nav-inner">
    <a href="/" class="brand">
      <span class="brand-icon">🤖</span>
      <span class="brand-text">
        <span class="brand-name">Trading<span class="accent">Bot</span></span>
        <span class="brand-version">{{.Version}}</span>
      </span>
    </a>
    <input type="checkbox" id="nav-toggle" class="nav-toggle">
    <label for="nav-toggle" class="nav-burger" aria-label="menu">
      <span class="open">☰</span><span class="close">✕</span>
    </label>
    <div class="nav-links">
      {{range .Nav}}<a href="{{.Href}}" class="nav-link{{if .Active}} active{{end}}">{{.Icon}} {{.Label}}</a>{{end}}
      <span class="online"><span class="dot"></span>En Ligne</span>
    </div>
  </div>
</nav>
{{end}}

{{define "metric"}}
<div class="card metric-card">
  <div class="card-header">
    <span class="card-title">{{.Label}}</span>
    <span class="icon icon-{{.Icon}}">{{.Icon.Symbol}}</span>
  </div>
  <div class="metric-value">{{.Value}}</div>
  <div class="metric-foot">
    {{if eq .Trend "up"}}<span class="trend up">↗ {{.TrendValue}}</span>
    {{else if eq .Trend "down"}}<span class="trend down">↘ {{.TrendValue}}</span>
    {{else if eq .Trend "neutral"}}<span class="trend neutral">− {{.TrendValue}}</span>{{end}}
    {{if .Subtext}}<span class="subtext">{{.Subtext}}</span>{{end}}
  </div>
</div>
{{end}}

{{define "status"}}
<div class="card status-card">
  <div class="card-header">
    <span class="card-title">{{.Name}}</span>
    <span class="status-icon {{.Style.Class}}">{{.Style.Icon}}</span>
  </div>
  <div class="status-row">
    <span class="badge {{.Style.Class}}">{{.Style.Label}}</span>
    <span class="mono">{{.Uptime}}</span>
  </div>
  <div class="status-row small">
    <span>Response Time</span>
    <span class="strong">{{.LatencyMs}}ms</span>
  </div>
  <div class="bar"><div class="bar-fill {{.Style.Class}}" style="width: {{.Style.Bar}}%"></div></div>
  <p class="tiny">Last updated: <span class="mono">{{.LastUpdated}}</span></p>
</div>
{{end}}

{{define "trade"}}
<div class="trade-row">
  <div class="trade-left">
    <div class="side-bar {{.Type}}"></div>
    <div>
      <div><span class="pair">{{.Pair}}</span> <span class="side-badge {{.Type}}">{{.Type}}</span></div>
      <div class="tiny mono">Entry: {{num .Entry}}</div>
    </div>
  </div>
  <div class="trade-right">
    <div class="pnl {{if ge .PnL 0.0}}gain{{else}}loss{{end}}">{{pnl .PnL}} {{if ge .PnL 0.0}}↗{{else}}↘{{end}}</div>
    <div class="tiny">{{.Time}}</div>
  </div>
</div>
{{end}}

<!DOCTYPE html>
<html lang="fr">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <meta http-equiv="refresh" content="{{.RefreshSeconds}}">
  <title>TradingBot · {{.Title}}</title>
  <style>
    :root {
      --bg: #f8fafc; --card: #ffffff; --border: #e2e8f0; --text: #0f172a; --muted: #64748b;
      --primary: #2563eb; --green: #059669; --green-bg: #ecfdf5; --red: #e11d48; --red-bg: #fff1f2;
      --amber: #d97706; --blue: #3b82f6; --secondary: #f1f5f9;
    }
    * { box-sizing: border-box; margin: 0; padding: 0; }
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: var(--bg); color: var(--text); padding-bottom: 48px; }
    .mono { font-family: ui-monospace, Menlo, monospace; }
    .navbar { background: rgba(255,255,255,0.85); border-bottom: 1px solid var(--border); position: sticky; top: 0; z-index: 50; }
    .nav-inner { max-width: 1200px; margin: 0 auto; padding: 0 24px; height: 64px; display: flex; align-items: center; justify-content: space-between; position: relative; }
    .brand { display: flex; align-items: center; gap: 8px; text-decoration: none; color: var(--text); }
    .brand-icon { background: #dbeafe; padding: 6px; border-radius: 8px; }
    .brand-text { display: flex; flex-direction: column; }
    .brand-name { font-weight: 700; font-size: 18px; }
    .accent { color: var(--primary); }
    .brand-version { font-size: 10px; color: var(--muted); text-transform: uppercase; letter-spacing: 1px; }
    .nav-links { display: flex; align-items: center; gap: 24px; }
    .nav-link { color: var(--muted); text-decoration: none; font-size: 14px; font-weight: 500; }
    .nav-link.active, .nav-link:hover { color: var(--text); }
    .online { display: flex; align-items: center; gap: 6px; background: var(--green-bg); color: var(--green); padding: 4px 12px; border-radius: 999px; font-size: 12px; }
    .dot { width: 8px; height: 8px; border-radius: 50%; background: var(--green); }
    .nav-toggle, .nav-burger { display: none; }
    .nav-burger .close { display: none; }
    @media (max-width: 768px) {
      .nav-burger { display: block; cursor: pointer; font-size: 22px; }
      .nav-links { display: none; position: absolute; top: 64px; left: 0; right: 0; background: var(--card); flex-direction: column; align-items: flex-start; padding: 16px 24px; border-bottom: 1px solid var(--border); }
      .nav-toggle:checked ~ .nav-links { display: flex; }
      .nav-toggle:checked ~ .nav-burger .open { display: none; }
      .nav-toggle:checked ~ .nav-burger .close { display: inline; }
    }
    main { max-width: 1200px; margin: 0 auto; padding: 32px 24px; }
    .page-head { display: flex; justify-content: space-between; align-items: flex-end; flex-wrap: wrap; gap: 16px; margin-bottom: 32px; }
    h1 { font-size: 30px; font-weight: 700; }
    .lead { color: var(--muted); margin-top: 4px; }
    .updated { font-size: 14px; color: var(--muted); background: var(--secondary); padding: 4px 12px; border-radius: 999px; }
    .notice { background: var(--secondary); border: 1px dashed var(--border); border-radius: 8px; padding: 16px; margin-bottom: 24px; color: var(--muted); }
    .config-card { margin-bottom: 24px; }
    .config-card pre { font-size: 12px; overflow-x: auto; }
    .spinner-wrap { display: flex; justify-content: center; align-items: center; height: 256px; }
    .spinner { width: 40px; height: 40px; border: 4px solid var(--secondary); border-top-color: var(--primary); border-radius: 50%; animation: spin 1s linear infinite; }
    @keyframes spin { to { transform: rotate(360deg); } }
    .grid-metrics { display: grid; grid-template-columns: repeat(auto-fit, minmax(240px, 1fr)); gap: 16px; margin-bottom: 32px; }
    .grid-main { display: grid; grid-template-columns: 2fr 1fr; gap: 32px; }
    @media (max-width: 1024px) { .grid-main { grid-template-columns: 1fr; } }
    .card { background: var(--card); border: 1px solid var(--border); border-radius: 12px; padding: 20px; }
    .card-header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 8px; }
    .card-title { font-size: 14px; color: var(--muted); font-weight: 500; }
    .icon { background: var(--secondary); border-radius: 50%; width: 32px; height: 32px; display: inline-flex; align-items: center; justify-content: center; color: var(--muted); }
    .metric-value { font-size: 24px; font-weight: 700; font-family: ui-monospace, Menlo, monospace; }
    .metric-foot { display: flex; align-items: center; gap: 8px; font-size: 12px; margin-top: 6px; }
    .trend { padding: 2px 6px; border-radius: 4px; }
    .trend.up { color: var(--green); background: var(--green-bg); }
    .trend.down { color: var(--red); background: var(--red-bg); }
    .trend.neutral { color: var(--muted); background: var(--secondary); }
    .subtext { color: var(--muted); }
    .chart { height: 300px; display: flex; align-items: center; justify-content: center; background: var(--secondary); border: 1px dashed var(--border); border-radius: 8px; color: var(--muted); font-size: 14px; }
    h2 { font-size: 18px; font-weight: 500; margin-bottom: 16px; }
    .trade-row { display: flex; justify-content: space-between; align-items: center; padding: 14px 0; border-bottom: 1px solid var(--border); }
    .trade-row:last-child { border-bottom: none; }
    .trade-left { display: flex; align-items: center; gap: 12px; }
    .side-bar { width: 4px; height: 32px; border-radius: 999px; }
    .side-bar.long { background: var(--green); }
    .side-bar.short { background: var(--red); }
    .pair { font-weight: 700; font-size: 14px; }
    .side-badge { font-size: 10px; text-transform: uppercase; padding: 1px 6px; border-radius: 4px; font-family: ui-monospace, Menlo, monospace; }
    .side-badge.long { background: var(--green-bg); color: var(--green); }
    .side-badge.short { background: var(--red-bg); color: var(--red); }
    .trade-right { text-align: right; }
    .pnl { font-weight: 700; font-size: 14px; font-family: ui-monospace, Menlo, monospace; }
    .pnl.gain { color: var(--green); }
    .pnl.loss { color: var(--red); }
    .empty { padding: 16px 0; color: var(--muted); font-size: 14px; }
    .tiny { font-size: 11px; color: var(--muted); margin-top: 2px; }
    .side-col { display: flex; flex-direction: column; gap: 32px; }
    .status-row { display: flex; justify-content: space-between; align-items: center; margin: 12px 0; }
    .status-row.small { font-size: 12px; color: var(--muted); }
    .strong { color: var(--text); font-weight: 500; }
    .badge { font-size: 12px; padding: 2px 10px; border-radius: 999px; }
    .status-icon { border-radius: 50%; width: 32px; height: 32px; display: inline-flex; align-items: center; justify-content: center; }
    .operational { color: var(--green); background: var(--green-bg); }
    .degraded { color: var(--amber); background: #fffbeb; }
    .down { color: var(--red); background: var(--red-bg); }
    .maintenance { color: var(--blue); background: #eff6ff; }
    .bar { width: 100%; height: 6px; background: var(--secondary); border-radius: 999px; overflow: hidden; }
    .bar-fill { height: 100%; border-radius: 999px; }
    .bar-fill.operational { background: var(--green); }
    .bar-fill.degraded { background: var(--amber); }
    .bar-fill.down { background: var(--red); }
    .bar-fill.maintenance { background: var(--blue); }
  </style>
</head>
<body>
{{template "navbar" .}}
<main>
  <div class="page-head">
    <div>
      <h1>{{.Title}}</h1>
      <p class="lead">Suivi temps réel du bot de trading algorithmique.</p>
    </div>
    <div class="updated">Dernière mise à jour: {{.LastUpdate}}</div>
  </div>

  {{if .Notice}}<div class="notice">{{.Notice}}</div>{{end}}
  {{if .Config}}<div class="card config-card" id="config"><h2>Configuration active</h2><pre class="mono">{{.Config}}</pre></div>{{end}}

  {{if .Loading}}
  <div class="spinner-wrap" id="loading"><div class="spinner"></div></div>
  {{else}}
  <div class="grid-metrics" id="metrics">
    {{range .Metrics}}{{template "metric" .}}{{end}}
  </div>
  <div class="grid-main">
    <div class="card">
      <h2>Évolution du Capital (30j)</h2>
      <div class="chart">Graphique non disponible</div>
    </div>
    <div class="side-col">
      <div class="card" id="trades">
        <h2>Positions Récentes</h2>
        {{if not .Trades}}<div class="empty">Aucune position récente</div>
        {{else}}{{range .Trades}}{{template "trade" .}}{{end}}{{end}}
      </div>
      {{template "status" .Backend}}
    </div>
  </div>
  {{end}}
</main>
</body>
</html>
`
