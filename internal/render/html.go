package render

import (
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"

	"github.com/ajramos/formsmith/internal/schema"
	"github.com/ajramos/formsmith/internal/style"
)

// SubmitPath is where the widget form posts its values
const SubmitPath = "/api/submit"

const widgetTemplate = `<div class="{{.Root}}" data-site-key="{{.SiteKey}}">
<style>{{.CSS}}</style>
{{- if .Logo}}
<img class="{{.Classes.Logo}}" src="{{.Logo}}" alt="">
{{- end}}
<h2 class="{{.Classes.Header}}">{{.Form.Style.Header.Text}}</h2>
<form method="post" action="{{.Action}}">
<input type="hidden" name="siteKey" value="{{.SiteKey}}">
{{- range .Form.Controls}}
<div class="formsmith-field">
<label class="{{$.Classes.Label}}" for="fs-{{.Name}}">{{.Label}}{{if .Required}}<span class="required">*</span>{{end}}</label>
{{- if eq .Kind "textarea"}}
<textarea class="{{$.Classes.Input}}" id="fs-{{.Name}}" name="{{.Name}}"{{if .Required}} required{{end}}></textarea>
{{- else if eq .Kind "select"}}
<select class="{{$.Classes.Input}}" id="fs-{{.Name}}" name="{{.Name}}"{{if .Required}} required{{end}}>
{{- range .Options}}
<option value="{{.}}">{{.}}</option>
{{- end}}
</select>
{{- else}}
<input class="{{$.Classes.Input}}" id="fs-{{.Name}}" name="{{.Name}}" type="{{.InputType}}"{{if .Required}} required{{end}}>
{{- end}}
</div>
{{- end}}
<button class="{{.Classes.Button}}" type="submit">{{.Form.Style.Button.Text}}</button>
</form>
{{- if .Form.Style.Footer.Show}}
<div class="{{.Classes.Footer}}">{{.Form.Style.Footer.Text}}</div>
{{- end}}
</div>
`

var widget = template.Must(template.New("widget").Parse(widgetTemplate))

type classes struct {
	Header, Label, Input, Button, Footer, Logo string
}

type widgetData struct {
	Root    string
	Classes classes
	SiteKey string
	Action  string
	CSS     template.CSS
	Logo    template.URL
	Form    Form
}

var styleClose = regexp.MustCompile(`(?i)</\s*style`)

// WriteHTML writes the standalone widget markup for theme. The stylesheet
// carries the resolved rules followed by the theme's custom CSS.
func WriteHTML(w io.Writer, theme schema.ThemeConfig, siteKey string) error {
	form := BuildForm(theme)
	data := widgetData{
		Root: style.ClassRoot,
		Classes: classes{
			Header: style.ClassHeader,
			Label:  style.ClassLabel,
			Input:  style.ClassInput,
			Button: style.ClassButton,
			Footer: style.ClassFooter,
			Logo:   style.ClassLogo,
		},
		SiteKey: siteKey,
		Action:  SubmitPath,
		// custom CSS is operator-authored; it only has to stay inside the style element
		CSS:  template.CSS(styleClose.ReplaceAllString(form.Style.CSS(), "")),
		Form: form,
	}
	if strings.HasPrefix(form.Style.Logo, "data:image/") {
		data.Logo = template.URL(form.Style.Logo)
	}
	if err := widget.Execute(w, data); err != nil {
		return fmt.Errorf("render widget: %w", err)
	}
	return nil
}
