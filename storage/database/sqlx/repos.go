// Package sqlxrepos implements the domain repositories over postgres.
// Every method takes an optional trailing DBExecutor so services can run
// several calls in one transaction.
package sqlxrepos

import "strconv"

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
