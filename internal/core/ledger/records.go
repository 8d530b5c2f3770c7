package ledger

import (
	"github.com/hbkwon/voucherd/internal/core/state"
	"github.com/hbkwon/voucherd/internal/core/types"
)

// amountRecord is the persisted form of balance and supply counters.
type amountRecord struct {
	Value uint64 `codec:"v"`
}

func getUint64(r state.Reader, key []byte) (uint64, error) {
	data, err := r.Get(key)
	if err != nil {
		return 0, err
	}
	if data == nil {
		return 0, nil
	}
	var rec amountRecord
	if err := state.Unmarshal(data, &rec); err != nil {
		return 0, err
	}
	return rec.Value, nil
}

func putUint64(v state.View, key []byte, value uint64) error {
	data, err := state.Marshal(amountRecord{Value: value})
	if err != nil {
		return err
	}
	return v.Put(key, data)
}

// putBalance writes a balance, erasing the record when it reaches zero so
// balance scans only visit live holders.
func putBalance(v state.View, tokenID types.TokenID, account types.AccountID, value uint64) error {
	key := state.BalanceKey(tokenID, account)
	if value == 0 {
		return v.Delete(key)
	}
	return putUint64(v, key, value)
}
