// Package migrations embeds the snapshot schema of the project service.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
