package sqldb

import "strings"

// queryString provides a pretty print version of the query for logging.
func queryString(query string, _ any) string {
	fields := strings.Fields(query)
	return strings.Join(fields, " ")
}
