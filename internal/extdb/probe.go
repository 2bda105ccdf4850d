package extdb

import "context"

// Test opens a connection with the supplied parameters, issues a trivial
// SELECT 1 and reports whether everything succeeded. It never returns an
// error and never leaves a connection open: any failure anywhere in the
// path, including a panic-free driver error, yields false.
func Test(ctx context.Context, p ConnParams) bool {
	session, err := Open(ctx, p)
	if err != nil {
		return false
	}
	defer session.Close()

	result, err := session.Execute(ctx, "SELECT 1 AS ok")
	if err != nil {
		return false
	}
	return result.RowCount == 1
}
