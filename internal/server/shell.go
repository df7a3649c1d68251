package server

import (
	"html/template"
	"net/http"
)

// shellTemplate is the preview page. It fetches compiled widgets from
// the API, lays them out with absolute positioning from the computed
// geometry, and reloads itself on SSE reload events.
var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>peter preview</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 0; background: #f5f5f5; }
  #board { position: relative; margin: 24px auto; width: 1200px; }
  .widget { position: absolute; background: #fff; border: 1px solid #ddd;
            border-radius: 6px; padding: 8px; overflow: auto; box-sizing: border-box; }
  .widget h3 { margin: 0 0 4px; font-size: 13px; color: #555; }
  .pending { opacity: 0.5; }
  .errored { border-color: #c33; color: #c33; }
  table { border-collapse: collapse; font-size: 12px; }
  td, th { border: 1px solid #eee; padding: 2px 6px; text-align: left; }
</style>
</head>
<body>
<div id="board"></div>
<script>
async function render() {
  const res = await fetch('/api/v1/preview{{if .Slug}}?slug={{.Slug}}{{end}}');
  if (!res.ok) { document.getElementById('board').textContent = 'preview unavailable'; return; }
  const data = await res.json();
  const board = document.getElementById('board');
  board.innerHTML = '';
  let bottom = 0;
  for (const w of data.widgets) {
    const el = document.createElement('div');
    el.className = 'widget ' + w.state;
    el.style.left = w.geometry.left + 'px';
    el.style.top = w.geometry.top + 'px';
    el.style.width = w.geometry.width + 'px';
    el.style.height = w.geometry.height + 'px';
    el.innerHTML = '<h3>' + w.id + ' · ' + w.kind + '</h3>';
    if (w.state === 'errored') {
      el.innerHTML += '<div>' + (w.error || 'error') + '</div>';
    } else if (w.rows && w.rows.records) {
      el.innerHTML += renderRows(w.rows);
    }
    board.appendChild(el);
    bottom = Math.max(bottom, w.geometry.top + w.geometry.height);
  }
  board.style.height = bottom + 'px';
}
function renderRows(rows) {
  let html = '<table><tr>';
  for (const c of rows.columns || []) html += '<th>' + c + '</th>';
  html += '</tr>';
  for (const rec of rows.records.slice(0, 50)) {
    html += '<tr>';
    for (const c of rows.columns || []) html += '<td>' + rec[c] + '</td>';
    html += '</tr>';
  }
  return html + '</table>';
}
const es = new EventSource('/events');
es.addEventListener('reload', render);
render();
</script>
</body>
</html>
`))

// handleShell serves the preview page.
func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = shellTemplate.Execute(w, struct{ Slug string }{Slug: r.URL.Query().Get("slug")})
}
