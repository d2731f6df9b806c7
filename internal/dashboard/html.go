package dashboard

import "html/template"

var page = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>HeadlineGoat</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: -apple-system, system-ui, sans-serif; background: #0f172a; color: #e2e8f0; min-height: 100vh; }
        .header { background: #1e293b; padding: 1.25rem 2rem; border-bottom: 1px solid #475569; display: flex; justify-content: space-between; align-items: center; }
        .header h1 { font-size: 1.4rem; color: #38bdf8; }
        .controls { padding: 1.5rem 2rem; display: flex; gap: 0.75rem; flex-wrap: wrap; }
        select, input, button { background: #1e293b; color: #e2e8f0; border: 1px solid #475569; border-radius: 8px; padding: 0.5rem 0.75rem; font-size: 0.95rem; }
        button { background: #0369a1; border-color: #0369a1; cursor: pointer; }
        .stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 1rem; padding: 0 2rem; }
        .card { background: #1e293b; border: 1px solid #334155; border-radius: 12px; padding: 1rem; }
        .card .label { font-size: 0.7rem; text-transform: uppercase; color: #94a3b8; }
        .card .value { font-size: 1.6rem; font-weight: 700; }
        #results { padding: 1.5rem 2rem; }
        #results h2 { font-size: 1rem; margin: 1rem 0 0.5rem; color: #94a3b8; }
        #results li { list-style: none; padding: 0.35rem 0; border-bottom: 1px solid #1e293b; }
        #results a { color: #e2e8f0; text-decoration: none; }
        #results a:hover { color: #38bdf8; }
        .error { color: #f87171; }
        .footer { text-align: center; padding: 1rem; color: #475569; font-size: 0.75rem; }
    </style>
</head>
<body>
    <div class="header">
        <h1>HeadlineGoat</h1>
        <span>{{.Version}}</span>
    </div>
    <form class="controls" id="form">
        <select name="site">
            {{range .Sites}}<option value="{{.ID}}">{{.Name}}</option>
            {{end}}
        </select>
        <input name="keyword" placeholder="keyword (optional)">
        <button type="submit">Scrape</button>
    </form>
    <div class="stats">
        <div class="card"><div class="label">Runs</div><div class="value" id="runs">0</div></div>
        <div class="card"><div class="label">Sites scraped</div><div class="value" id="sites_scraped">0</div></div>
        <div class="card"><div class="label">Sites failed</div><div class="value" id="sites_failed">0</div></div>
        <div class="card"><div class="label">Headlines</div><div class="value" id="items_scraped">0</div></div>
    </div>
    <div id="results"></div>
    <div class="footer">Stats refresh every 5s</div>
    <script>
        const el = (tag, text) => { const e = document.createElement(tag); if (text) e.textContent = text; return e; };
        async function refresh() {
            try {
                const d = await (await fetch('/stats')).json();
                ['runs','sites_scraped','sites_failed','items_scraped'].forEach(k => {
                    if (d[k] !== undefined) document.getElementById(k).textContent = Number(d[k]).toLocaleString();
                });
            } catch (e) {}
        }
        document.getElementById('form').addEventListener('submit', async ev => {
            ev.preventDefault();
            const out = document.getElementById('results');
            out.replaceChildren(el('p', 'Scraping...'));
            const r = await fetch('/scrape?' + new URLSearchParams(new FormData(ev.target)));
            const d = await r.json();
            out.replaceChildren();
            if (!r.ok) { const p = el('p', d.error); p.className = 'error'; out.append(p); return; }
            for (const res of d.results) {
                out.append(el('h2', res.site + (res.error ? ' (' + res.error + ')' : '')));
                const ul = el('ul');
                for (const h of res.items) {
                    const a = el('a', h.title); a.href = h.link; a.target = '_blank';
                    const li = el('li'); li.append(a); ul.append(li);
                }
                out.append(ul);
            }
            refresh();
        });
        setInterval(refresh, 5000);
        refresh();
    </script>
</body>
</html>`))
