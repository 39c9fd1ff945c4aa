package server

import "html/template"

// Chart documents are embedded through srcdoc so each one keeps its own
// script scope.
var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Stock Price Prediction</title>
<style>
body { font-family: sans-serif; margin: 2rem auto; max-width: 1100px; color: #262730; }
.error { background: #ffe9e9; color: #7d353b; padding: 1rem; border-radius: .5rem; }
.table { height: 210px; overflow: auto; border: 1px solid #e6e6e6; }
table { border-collapse: collapse; width: 100%; font-size: .85rem; }
th, td { padding: .2rem .6rem; text-align: right; border-bottom: 1px solid #f0f0f0; }
th { position: sticky; top: 0; background: #fafafa; }
iframe { width: 100%; height: 560px; border: 0; }
</style>
</head>
<body>
<h1>Stock Price Prediction</h1>
<form method="get" action="/">
<label for="ticker">Choose a stock:</label>
<select id="ticker" name="ticker" onchange="this.form.submit()">
{{- range .Tickers}}
<option value="{{.}}"{{if eq . $.Selected}} selected{{end}}>{{.}}</option>
{{- end}}
</select>
<input type="hidden" name="horizon" value="{{.Horizon}}">
</form>
{{if .Failed}}
<p class="error">{{.Message}}</p>
{{else}}
<h3>Raw Data</h3>
<div class="table">
<table>
<thead><tr><th>Date</th><th>Open</th><th>High</th><th>Low</th><th>Close</th><th>Volume</th><th>Dividends</th><th>Stock Splits</th></tr></thead>
<tbody>
{{- range .Rows}}
<tr><td>{{.Date}}</td><td>{{.Open}}</td><td>{{.High}}</td><td>{{.Low}}</td><td>{{.Close}}</td><td>{{.Volume}}</td><td>{{.Dividends}}</td><td>{{.Splits}}</td></tr>
{{- end}}
</tbody>
</table>
</div>
<p><a href="/api/export?ticker={{.Selected}}&amp;format=csv">Download CSV</a></p>
<iframe title="price chart" srcdoc="{{.PriceChart}}"></iframe>
<h3>Stock Price Prediction</h3>
<iframe title="forecast chart" srcdoc="{{.ForecastChart}}"></iframe>
{{end}}
</body>
</html>
`))
