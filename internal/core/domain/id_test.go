package domain_test

import (
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestRecordIDsAreUnique(t *testing.T) {
	const n = 1000

	var mtx sync.Mutex
	ids := make(map[string]struct{}, n)
	wg := &sync.WaitGroup{}
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			id := domain.NewDepositID()
			mtx.Lock()
			ids[id] = struct{}{}
			mtx.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, ids, n)
}

func TestRecordIDsSortByCreation(t *testing.T) {
	ids := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		ids = append(ids, domain.NewWithdrawalID())
	}

	require.True(t, sort.StringsAreSorted(ids))
	require.True(t, strings.HasPrefix(ids[0], domain.WithdrawalIDPrefix+"-"))
}
