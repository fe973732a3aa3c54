package sql

import "database/sql"

// ProductOrder exposes the ORDER BY builder for product listings.
var ProductOrder = productOrder

// EscapeLike exposes the ILIKE pattern escaper.
var EscapeLike = escapeLike

// GetTxFromGateway is a test helper to extract the transaction bound to a Gateway.
func GetTxFromGateway(g *Gateway) *sql.Tx {
	return g.txn
}
