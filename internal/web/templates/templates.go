// Package templates renders the HTML pages of the web UI as templ components.
//
// The *_templ.go files are generated from the .templ sources with
// `templ generate`.
package templates

import "time"

// Column is one header cell of the stock table.
type Column struct {
	Name  string
	Label string
}

// DashboardData is everything the dashboard shows.
type DashboardData struct {
	Loaded       bool
	Columns      []Column
	Rows         [][]string
	LoadedAt     time.Time
	FromTemplate bool
	Busy         bool
	MaxFiles     int
}

const dashboardScript = `<script>
function headers(){const k=localStorage.getItem('stockbook.apiKey');return k?{'X-API-Key':k}:{}}
function show(r){return r.json().then(j=>{document.getElementById('result').textContent=JSON.stringify(j,null,2);if(r.ok)setTimeout(()=>location.reload(),1500)})}
function post(u){fetch(u,{method:'POST',headers:headers()}).then(show)}
function upload(e){e.preventDefault();fetch('/api/import',{method:'POST',headers:headers(),body:new FormData(e.target)}).then(show);return false}
</script>
`
