// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver specific errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrEntryNotFound is returned when a movie entry cannot be found.
var ErrEntryNotFound = errors.New("movie entry not found")

// ErrDuplicateTMDBID is returned when an insert or update would store a
// second entry for the same TMDB id.  Services translate this into a
// conflict response.
var ErrDuplicateTMDBID = errors.New("entry already exists")

// ErrAPIKeyNotFound is returned when no API key is stored under a name.
var ErrAPIKeyNotFound = errors.New("api key not found")

// mysqlDuplicateKey is the server error number for ER_DUP_ENTRY.
const mysqlDuplicateKey = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateKey
}
