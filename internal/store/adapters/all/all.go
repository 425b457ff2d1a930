// Package all registra todos los adapters de store vía blank imports.
package all

import (
	_ "github.com/dropDatabas3/multilogin/internal/store/adapters/fs"
	_ "github.com/dropDatabas3/multilogin/internal/store/adapters/pg"
	_ "github.com/dropDatabas3/multilogin/internal/store/adapters/sqlite"
)
