// SPDX-License-Identifier: GPL-3.0-or-later
package migrations

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed sql/*.sql
var files embed.FS

// Dir exposes the embedded migration files as an http.FileSystem rooted at
// the sql directory.
func Dir() http.FileSystem {
	sub, err := fs.Sub(files, "sql")
	if err != nil {
		panic("embedded migrations missing: " + err.Error())
	}
	return http.FS(sub)
}
