// Package web embeds the static assets served under /static.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static/*.js
var staticFS embed.FS

// Static devuelve los assets con "static/" como raíz.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
