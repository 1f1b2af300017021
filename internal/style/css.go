package style

import (
	"fmt"
	"strings"
)

// Class names used by the widget markup
const (
	ClassRoot   = "formsmith-widget"
	ClassHeader = "formsmith-header"
	ClassLabel  = "formsmith-label"
	ClassInput  = "formsmith-input"
	ClassButton = "formsmith-button"
	ClassFooter = "formsmith-footer"
	ClassLogo   = "formsmith-logo"
)

// CSS renders the resolved style as a stylesheet. The custom stylesheet is
// appended verbatim after the computed rules so it can override any of them.
func (s ResolvedStyle) CSS() string {
	var b strings.Builder
	font := fmt.Sprintf("font-family:%q", s.Font)

	rule(&b, "."+ClassRoot,
		"background:"+s.Card.Background,
		"color:"+s.Card.Text,
		fmt.Sprintf("border:1px solid %s", s.Card.BorderColor),
		fmt.Sprintf("border-radius:%dpx", s.Radius),
		"box-shadow:"+s.Shadow,
		fmt.Sprintf("padding:%dpx", s.Card.Padding),
		font,
	)
	rule(&b, "."+ClassHeader,
		"color:"+s.Header.Color,
		fmt.Sprintf("font-size:%dpx", s.Header.FontSize),
		fmt.Sprintf("font-weight:%d", s.Header.FontWeight),
		font,
	)
	rule(&b, "."+ClassLabel,
		"color:"+s.Label.Color,
		fmt.Sprintf("font-size:%dpx", s.Label.FontSize),
		fmt.Sprintf("font-weight:%d", s.Label.FontWeight),
		font,
	)
	rule(&b, "."+ClassLabel+" .required", "color:"+s.Label.RequiredColor)
	rule(&b, "."+ClassInput,
		"background:"+s.Input.Background,
		"color:"+s.Input.Text,
		fmt.Sprintf("border:1px solid %s", s.Input.BorderColor),
		fmt.Sprintf("border-radius:%dpx", s.Radius),
		fmt.Sprintf("font-size:%dpx", s.Input.FontSize),
		"padding:"+s.Input.Padding,
		font,
	)
	rule(&b, "."+ClassButton,
		"background:"+s.Button.Background,
		"color:"+s.Button.TextColor,
		"border:"+s.Button.Border,
		fmt.Sprintf("border-radius:%dpx", s.Radius),
		fmt.Sprintf("font-size:%dpx", s.Button.FontSize),
		fmt.Sprintf("font-weight:%d", s.Button.FontWeight),
		"padding:"+s.Button.Padding,
		"box-shadow:"+s.Button.Shadow,
		font,
	)
	rule(&b, "."+ClassButton+":hover", "box-shadow:"+s.Button.HoverShadow)
	rule(&b, "."+ClassFooter, font)

	if strings.TrimSpace(s.CustomCSS) != "" {
		b.WriteString(s.CustomCSS)
		b.WriteString("\n")
	}
	return b.String()
}

func rule(b *strings.Builder, selector string, decls ...string) {
	b.WriteString(selector)
	b.WriteString("{")
	b.WriteString(strings.Join(decls, ";"))
	b.WriteString("}\n")
}
