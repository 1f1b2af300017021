package render

import "fmt"

const (
	// DefaultMountID is the element id the snippet mounts into
	DefaultMountID = "my-form-widget"
	// DefaultScriptURL is the placeholder shown when no CDN URL is configured
	DefaultScriptURL = "https://your-cdn.com/form-widget.js"
)

// EmbedSnippet returns the markup a site owner pastes into a page to mount
// the widget for siteKey.
func EmbedSnippet(scriptURL, siteKey, mountID string) string {
	if scriptURL == "" {
		scriptURL = DefaultScriptURL
	}
	if mountID == "" {
		mountID = DefaultMountID
	}
	return fmt.Sprintf(`<div id="%[1]s"></div>
<script src="%[2]s"></script>
<script>
  window.renderFormWidget({
    siteKey: '%[3]s',
    mountId: '%[1]s'
  });
</script>`, mountID, scriptURL, siteKey)
}
