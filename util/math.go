package util

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
)

var Pow256 = math.BigPow(2, 256)

// Hash2big converts a bare 64-character hex digest into a big integer.
func Hash2big(hash string) *big.Int {
	hashBytes, err := hexutil.Decode("0x" + hash)
	if err != nil {
		panic(err)
	}
	return new(big.Int).SetBytes(hashBytes)
}
