package db

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	// ErrWatchStopped is returned by DiscussionWatcher.Next after Stop.
	ErrWatchStopped = errors.New("watch stopped")
)

func IsDupKeyErr(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == 1062 || strings.Contains(mysqlErr.Error(), "Duplicate")
}
