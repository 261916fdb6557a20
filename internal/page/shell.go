// internal/page/shell.go
//
// Minimal HTML shell for the storefront.  The head builder decides what
// lands in <head>; the bootstrap and provider scripts ride in
// Head.Scripts and therefore parse before anything else the page loads.
package page

import "html/template"

var shellTmpl = template.Must(template.New("shell").Parse(`<!doctype html>
<html lang="{{.Locale}}">
<head>
{{.Head.Title}}
{{.Head.Metas}}
{{.Head.Links}}
{{.Head.Scripts}}
</head>
<body>
<header><h1>{{.Store.Name}}</h1></header>
<main>
{{if .Products}}
<section id="featured">
<ul>
{{range .Products}}<li>{{.Name}} — {{.Price}} {{.Currency}}</li>
{{end}}</ul>
</section>
{{else if .Degraded}}
<section id="featured" data-degraded="true"></section>
{{end}}
{{if .Zones}}
<section id="delivery">
<ul>
{{range .Zones}}<li>{{.Name}}</li>
{{end}}</ul>
</section>
{{else if .Degraded}}
<section id="delivery" data-degraded="true"></section>
{{end}}
</main>
</body>
</html>
`))
