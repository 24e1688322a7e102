package presentation

import (
	"html/template"
	"io"
)

var pageTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

// WriteHTML renders v as a self-contained dashboard page. Forms post back to the
// operator surface and are redirected to "/".
func WriteHTML(w io.Writer, v View) error {
	return pageTemplate.Execute(w, v)
}

const dashboardHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Header.Title}}</title>
  <style>
    :root { --line: #e5e7eb; --muted: #6b7280; --text: #111827; --bg: #f9fafb; --paper: #fff; }
    * { box-sizing: border-box; }
    body { margin: 0; font-family: system-ui, -apple-system, "Segoe UI", sans-serif; background: var(--bg); color: var(--text); }
    header { background: #1e3a8a; color: #fff; padding: 20px 32px; }
    header h1 { margin: 0; font-size: 24px; }
    header p { margin: 4px 0 0; opacity: .8; }
    main { max-width: 1200px; margin: 0 auto; padding: 24px 32px; }
    .cards { display: grid; grid-template-columns: repeat(4, minmax(0, 1fr)); gap: 16px; margin-bottom: 24px; }
    .card { background: var(--paper); border: 1px solid var(--line); border-radius: 8px; padding: 16px; }
    .card .label { color: var(--muted); font-size: 13px; }
    .card .value { font-size: 28px; font-weight: 700; margin-top: 4px; }
    .tone-blue .value { color: #2563eb; } .tone-red .value { color: #dc2626; }
    .tone-amber .value { color: #d97706; } .tone-green .value { color: #16a34a; } .tone-gray .value { color: #6b7280; }
    .panel { background: var(--paper); border: 1px solid var(--line); border-radius: 8px; padding: 16px; margin-bottom: 24px; }
    .panel h2 { margin: 0 0 12px; font-size: 18px; }
    .grid { display: grid; grid-template-columns: 1fr 1fr; gap: 24px; }
    .row { border-bottom: 1px solid var(--line); padding: 10px 0; }
    .row:last-child { border-bottom: 0; }
    .meta { color: var(--muted); font-size: 12px; }
    .badge { display: inline-block; font-size: 11px; font-weight: 600; padding: 2px 8px; border-radius: 999px; background: #f3f4f6; }
    .badge.processed { background: #dcfce7; color: #166534; } .badge.pending { background: #fef9c3; color: #854d0e; }
    .risk.elevated { color: #dc2626; font-weight: 700; }
    .empty { text-align: center; color: var(--muted); padding: 24px 0; }
    .notice { padding: 10px 14px; border-radius: 6px; margin-bottom: 12px; display: flex; justify-content: space-between; }
    .notice.success { background: #dcfce7; } .notice.failure { background: #fef2f2; }
    .error { background: #fef2f2; color: #991b1b; padding: 10px 14px; border-radius: 6px; margin-bottom: 12px; }
    footer { text-align: center; color: var(--muted); font-size: 13px; padding: 24px; }
    .safety { background: #fffbeb; color: #92400e; border-radius: 6px; padding: 8px 12px; display: inline-block; margin-top: 8px; }
    button { background: #1e3a8a; color: #fff; border: 0; border-radius: 6px; padding: 8px 14px; cursor: pointer; }
    button:disabled { background: #9ca3af; cursor: not-allowed; }
    .loading { display: flex; flex-direction: column; align-items: center; justify-content: center; height: 100vh; }
    @media (max-width: 900px) { .cards { grid-template-columns: repeat(2, minmax(0, 1fr)); } .grid { grid-template-columns: 1fr; } }
  </style>
</head>
<body>
{{- if .Loading}}
  <div class="loading">
    <h2>{{.LoadingText.Title}}</h2>
    <p class="meta">{{.LoadingText.Subtitle}}</p>
  </div>
{{- else}}
  <header>
    <h1>{{.Header.Title}}</h1>
    <p>{{.Header.Subtitle}}</p>
  </header>
  <main>
    {{- if .FetchError}}
    <div class="error">Last refresh failed: {{.FetchError}}</div>
    {{- end}}
    {{- range .Notices}}
    <div class="notice {{.Level}}">
      <span>{{.Message}}</span>
      <form method="post" action="/v1/notices/{{.ID}}/dismiss?redirect=1"><button type="submit">Dismiss</button></form>
    </div>
    {{- end}}

    <section class="cards">
      {{- range .Cards}}
      <div class="card tone-{{.Tone}}">
        <div class="label">{{.Label}}</div>
        <div class="value">{{.Value}}</div>
        {{- if .Caption}}<div class="meta">{{.Caption}}</div>{{end}}
      </div>
      {{- end}}
    </section>

    <section class="panel">
      <h2>{{.Upload.Title}}</h2>
      <form method="post" action="/v1/selection?redirect=1" enctype="multipart/form-data">
        <input type="file" name="file" accept="{{.Upload.Accept}}" {{if .Upload.Uploading}}disabled{{end}} />
        <button type="submit" {{if .Upload.Uploading}}disabled{{end}}>Select</button>
      </form>
      <p class="meta">{{.Upload.LimitsText}}</p>
      {{- if .Upload.SelectedName}}
      <p>Selected: <strong>{{.Upload.SelectedName}}</strong> <span class="meta">{{.Upload.SelectedSize}}{{if .Upload.SelectedPages}}, {{.Upload.SelectedPages}} pages{{end}}</span></p>
      <form method="post" action="/v1/selection/clear?redirect=1"><button type="submit" {{if .Upload.Uploading}}disabled{{end}}>Clear</button></form>
      {{- end}}
      <form method="post" action="/v1/upload?redirect=1">
        <button type="submit" {{if not .Upload.CanSubmit}}disabled{{end}}>{{.Upload.ButtonLabel}}</button>
      </form>
    </section>

    <div class="grid">
      <section class="panel">
        <h2>{{.Documents.Title}}</h2>
        {{- with .Documents.Empty}}
        <div class="empty"><p>{{.Title}}</p><p class="meta">{{.Hint}}</p></div>
        {{- end}}
        {{- range .Documents.Rows}}
        <div class="row">
          <div><strong>{{.Filename}}</strong> <span class="badge {{.Status}}">{{.Badge}}</span></div>
          <div class="meta">{{.Tag}} • {{.Date}}
            {{- if .Risk.Present}} • Risk: <span class="risk{{if .Risk.Elevated}} elevated{{end}}">{{.Risk.Label}}</span>{{end}}</div>
        </div>
        {{- end}}
      </section>

      <section class="panel">
        <h2>{{.Alerts.Title}}</h2>
        {{- with .Alerts.Empty}}
        <div class="empty"><p>{{.Title}}</p><p class="meta">{{.Hint}}</p></div>
        {{- end}}
        {{- range .Alerts.Rows}}
        <div class="row" style="border-left: 4px solid {{.Style.ColorHex}}; background: {{.Style.BackgroundHex}}; padding-left: 10px;">
          <div><strong>{{.Title}}</strong> <span class="badge" style="color: {{.Style.ColorHex}}">{{.Severity}}</span></div>
          <div>{{.Description}}</div>
          <div class="meta">{{.Date}}</div>
        </div>
        {{- end}}
      </section>
    </div>

    <form method="post" action="/v1/refresh?redirect=1"><button type="submit">Refresh</button></form>
    {{- if .RefreshedAt}}<p class="meta">Last refreshed {{.RefreshedAt}}</p>{{end}}
  </main>
  <footer>
    <div>{{.Footer.Version}}</div>
    <div class="safety">⚠️ {{.Footer.SafetyNotice}}</div>
  </footer>
{{- end}}
</body>
</html>
`
