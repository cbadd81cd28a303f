package election

import "math/big"

// mulDiv computes floor(decimal(s) * mul / div) as a decimal string.
// Amount has no native scaling operation (it only needs ring
// add/sub for ledger bookkeeping), so quorum percentage math borrows
// math/big for this one non-ring computation.
func mulDiv(s string, mul, div int) string {
	n := new(big.Int)
	n.SetString(s, 10)
	n.Mul(n, big.NewInt(int64(mul)))
	n.Div(n, big.NewInt(int64(div)))
	return n.String()
}
