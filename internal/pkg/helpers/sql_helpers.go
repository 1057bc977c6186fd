package helpers

import "database/sql"

// GetContentNullString converts a string value to sql.NullString.
// An empty string is stored as NULL.
func GetContentNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// StringFromNull returns the string of ns, or "" when it is NULL.
func StringFromNull(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}
