package report

import (
	"fmt"
	"html"
	"strings"

	"ownmap/internal/engine/extract"
	"ownmap/internal/views"
)

// GenerateHTML produces a self-contained ownership report: a domain summary
// table, the full record listing, and (when usage tracking ran) a usage
// frequency table. The only client-side behavior is show/hide toggles.
func GenerateHTML(title string, buckets []views.DomainBucket, listing []extract.DefinitionRecord, usages []views.UsageEntry) string {
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>`)
	sb.WriteString(html.EscapeString(title))
	sb.WriteString(` — Ownership Report</title>
<style>
  * { box-sizing: border-box; margin: 0; padding: 0; }
  body { font-family: 'Segoe UI', system-ui, sans-serif; background: #1a1a2e; color: #eee; padding-bottom: 40px; }
  h1 { padding: 12px 20px; font-size: 1.1rem; background: #16213e; color: #a9c4f5; }
  h2 { padding: 18px 20px 8px; font-size: 0.95rem; color: #a9c4f5; }
  h2 button { margin-left: 10px; font-size: 0.7rem; background: #2a3a5e; color: #a9c4f5; border: none; border-radius: 4px; padding: 3px 8px; cursor: pointer; }
  table { width: calc(100% - 40px); margin: 0 20px; border-collapse: collapse; font-size: 0.82rem; }
  th { text-align: left; padding: 6px 10px; background: #16213e; color: #a9c4f5; border-bottom: 1px solid #2a3a5e; }
  td { padding: 5px 10px; border-bottom: 1px solid #22304f; }
  tr:hover td { background: #20294a; }
  .num { text-align: right; font-variant-numeric: tabular-nums; }
  .tag { display: inline-block; padding: 1px 7px; border-radius: 9px; background: #2a3a5e; font-size: 0.75rem; }
  .tag.unknown { background: #5e2a2a; }
  .muted { color: #889; }
</style>
</head>
<body>
<h1>`)
	sb.WriteString(html.EscapeString(title))
	sb.WriteString(` — Ownership Report</h1>
`)

	writeDomainSummary(&sb, buckets)
	writeListing(&sb, listing)
	if len(usages) > 0 {
		writeUsages(&sb, usages)
	}

	sb.WriteString(`<script>
function toggle(id, btn) {
  const el = document.getElementById(id);
  const hidden = el.style.display === 'none';
  el.style.display = hidden ? '' : 'none';
  btn.textContent = hidden ? 'hide' : 'show';
}
</script>
</body>
</html>
`)

	return sb.String()
}

func writeDomainSummary(sb *strings.Builder, buckets []views.DomainBucket) {
	sb.WriteString(`<h2>Domains <button onclick="toggle('domains', this)">hide</button></h2>
<table id="domains">
<tr><th>Domain</th><th class="num">Units</th><th class="num">Share</th></tr>
`)
	for _, b := range buckets {
		sb.WriteString("<tr><td>")
		sb.WriteString(domainTag(b.Domain))
		fmt.Fprintf(sb, `</td><td class="num">%d</td><td class="num">%.1f%%</td></tr>`+"\n", b.Count, b.Percent)
	}
	sb.WriteString("</table>\n")
}

func writeListing(sb *strings.Builder, listing []extract.DefinitionRecord) {
	sb.WriteString(`<h2>All units <button onclick="toggle('listing', this)">hide</button></h2>
<table id="listing">
<tr><th>Qualified key</th><th>File</th><th>Domain</th><th>Internal</th><th>Final</th></tr>
`)
	for _, row := range listing {
		fmt.Fprintf(sb, "<tr><td>%s</td><td class=\"muted\">%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			html.EscapeString(row.QualifiedKey),
			html.EscapeString(row.FileName),
			domainTag(row.Domain),
			boolCell(row.IsInternal),
			finalCell(row.IsFinal),
		)
	}
	sb.WriteString("</table>\n")
}

func writeUsages(sb *strings.Builder, usages []views.UsageEntry) {
	sb.WriteString(`<h2>Most referenced types <button onclick="toggle('usages', this)">hide</button></h2>
<table id="usages">
<tr><th>Type</th><th class="num">References</th><th>Domain</th></tr>
`)
	for _, u := range usages {
		domain := ""
		if u.Record != nil {
			domain = u.Record.Domain
		}
		fmt.Fprintf(sb, "<tr><td>%s</td><td class=\"num\">%d</td><td>%s</td></tr>\n",
			html.EscapeString(u.Name), u.Count, domainTag(domain))
	}
	sb.WriteString("</table>\n")
}

func domainTag(domain string) string {
	if domain == "" || domain == views.UnknownDomain {
		return `<span class="tag unknown">` + views.UnknownDomain + `</span>`
	}
	return `<span class="tag">` + html.EscapeString(domain) + `</span>`
}

func boolCell(v bool) string {
	if v {
		return "yes"
	}
	return `<span class="muted">no</span>`
}

func finalCell(v *bool) string {
	if v == nil {
		return `<span class="muted">n/a</span>`
	}
	return boolCell(*v)
}
