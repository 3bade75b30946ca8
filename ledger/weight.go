package ledger

import (
	"sync/atomic"

	"github.com/holiman/uint256"

	"github.com/strandnet/strandd/dbaccess"
	"github.com/strandnet/strandd/util"
)

// Weight returns the voting weight of the given account. While the local
// block count is below the configured bootstrap threshold the compiled-in
// weight snapshot is authoritative for the accounts it lists; the first
// call past the threshold clears the latch and every later call goes
// straight to the representation table.
func (l *Ledger) Weight(context dbaccess.Context, account *util.Account) (*uint256.Int, error) {
	if atomic.LoadUint32(&l.checkBootstrapWeights) != 0 {
		counts, err := dbaccess.BlockCount(context)
		if err != nil {
			return nil, err
		}
		if counts.Sum() < l.params.BootstrapWeightMaxBlocks {
			if weight, ok := l.params.BootstrapWeights[*account]; ok {
				return new(uint256.Int).Set(weight), nil
			}
		} else {
			atomic.StoreUint32(&l.checkBootstrapWeights, 0)
		}
	}

	hash := account.AsHash()
	return dbaccess.FetchRepresentation(context, &hash)
}
