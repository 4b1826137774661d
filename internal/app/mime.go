package app

import (
	"log"
	"mime"
)

// The embedded asset handler relies on extension-based content types;
// minimal containers ship without a mime.types database.
func init() {
	for ext, typ := range map[string]string{
		".css": "text/css; charset=utf-8",
		".js":  "text/javascript; charset=utf-8",
	} {
		if mime.TypeByExtension(ext) != "" {
			continue
		}
		if err := mime.AddExtensionType(ext, typ); err != nil {
			log.Printf("app: register MIME type %s: %v", ext, err)
		}
	}
}
