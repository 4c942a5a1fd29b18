// Package static embeds the server-rendered pages into the binary.
package static

import "embed"

// Templates holds the html/template sources under templates/.
//
//go:embed templates/*.html
var Templates embed.FS
