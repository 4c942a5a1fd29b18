package i18n

import (
	"embed"
	"io/fs"
)

//go:embed locales/*.json
var EmbeddedLocales embed.FS

// LoadEmbedded loads the translations compiled into the binary.
func LoadEmbedded() (*Catalog, error) {
	sub, err := fs.Sub(EmbeddedLocales, "locales")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}
