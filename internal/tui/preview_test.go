package tui

import (
	"strings"
	"testing"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"

	"github.com/ajramos/formsmith/internal/render"
	"github.com/ajramos/formsmith/internal/schema"
)

func TestPreviewText(t *testing.T) {
	theme := schema.Default()
	theme.Fields = append(theme.Fields,
		schema.FieldDefinition{Name: "topic", Label: "Topic", Type: schema.FieldDropdown, Visible: true, Options: []string{"Sales"}},
		schema.FieldDefinition{Name: "agree", Label: "I agree", Type: schema.FieldCheckbox, Visible: true},
		schema.FieldDefinition{Name: "secret", Label: "Secret", Type: schema.FieldText},
	)
	theme.HeaderText = "お問い合わせ [beta]"

	text := PreviewText(render.BuildForm(theme), 40)
	plain := stripTags(text)

	assert.Contains(t, plain, "お問い合わせ [beta]", "brackets survive tag parsing")
	assert.Contains(t, plain, "Name*")
	assert.Contains(t, plain, "Sales ▾")
	assert.Contains(t, plain, "☐ I agree")
	assert.NotContains(t, plain, "Secret", "hidden fields are not previewed")
	assert.Contains(t, plain, "Send Message")
	assert.Contains(t, plain, "Made with love by Formsmith")

	for _, line := range strings.Split(plain, "\n") {
		assert.LessOrEqual(t, runewidth.StringWidth(line), 40, "line %q", line)
	}

	theme.ShowFooter = false
	assert.NotContains(t, stripTags(PreviewText(render.BuildForm(theme), 40)), "Made with love")
}

func TestPreviewText_ReportsFallbacks(t *testing.T) {
	theme := schema.Default()
	theme.Shape = "blob"
	plain := stripTags(PreviewText(render.BuildForm(theme), 40))
	assert.Contains(t, plain, "defaults used for: shape")
}

func TestCSSColor(t *testing.T) {
	tests := []struct {
		css  string
		want tcell.Color
	}{
		{"#fff", tcell.NewRGBColor(255, 255, 255)},
		{"#FF0000", tcell.NewRGBColor(255, 0, 0)},
		{"rgb(0, 128, 255)", tcell.NewRGBColor(0, 128, 255)},
		{"rgba(34,40,49,0.08)", tcell.NewRGBColor(34, 40, 49)},
		{"#zzz", tcell.ColorDefault},
		{"rgb(300,0,0)", tcell.ColorDefault},
		{"tomato", tcell.ColorDefault},
		{"", tcell.ColorDefault},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cssColor(tt.css), tt.css)
	}
	assert.Equal(t, "#ff0000", tag("#f00"))
	assert.Equal(t, "-", tag("transparent"))
}

// stripTags renders tagged text the way a TextView shows it
func stripTags(text string) string {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetText(text)
	return tv.GetText(true)
}
