// Package all registers every storage backend with the repository factory.
// Blank-import it from binaries that select the backend at runtime.
package all

import (
	_ "datadict/internal/storage/mssql"
	_ "datadict/internal/storage/postgres"
	_ "datadict/internal/storage/sqlite"
)
