package repository

import "strings"

// Postgres reports constraint violations through SQLSTATE codes embedded in
// the driver error text. Matching on the code keeps the stores free of a
// driver-specific error type.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "SQLSTATE 23505")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "SQLSTATE 23503")
}
