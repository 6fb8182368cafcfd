// Package migrations embeds the goose SQL migrations for every supported dialect.
package migrations

import "embed"

// FS holds one directory of migrations per database driver.
//
//go:embed postgres/*.sql sqlite/*.sql mysql/*.sql
var FS embed.FS
