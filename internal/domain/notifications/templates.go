package notifications

import (
	"bytes"
	"html/template"
)

var feedbackTemplate = template.Must(template.New("feedback").Parse(`<h2>Ați primit un feedback nou în aplicația <strong>Kudos</strong></h2>
<p>Bună, <strong>{{.EmployeeName}}</strong>,</p>
<p>Ai primit un feedback nou de la <strong>{{.GrantorName}}</strong>.</p>
<p>Tip feedback: <strong>{{.PointLabel}}</strong><br>
Categorie: <strong>{{.Category}}</strong><br>
Comentariu: {{.Comment}}</p>
{{if .AppURL}}<p>Puteți accesa aplicația aici:<br><a href="{{.AppURL}}">{{.AppURL}}</a></p>{{end}}
<p>Cu stimă,<br>Echipa <strong>Kudos</strong></p>
`))

var resetTemplate = template.Must(template.New("reset").Parse(`<p>Bună, <strong>{{.Name}}</strong>,</p>
<p>Am primit o cerere de resetare a parolei pentru contul tău Kudos.</p>
<p><a href="{{.Link}}">Setează o parolă nouă</a></p>
<p>Dacă nu ai cerut resetarea, ignoră acest mesaj.</p>
`))

type feedbackView struct {
	EmployeeName string
	GrantorName  string
	PointLabel   string
	Category     string
	Comment      string
	AppURL       string
}

type resetView struct {
	Name string
	Link string
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
