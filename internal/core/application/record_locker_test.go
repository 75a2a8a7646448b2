package application

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordLocker(t *testing.T) {
	locker := newRecordLocker()

	counter := 0
	wg := &sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.lock("DEP-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	require.Equal(t, 50, counter)
	require.Empty(t, locker.locks)

	unlockA := locker.lock("DEP-1")
	unlockB := locker.lock("DEP-2")
	require.Len(t, locker.locks, 2)
	unlockA()
	unlockB()
	require.Empty(t, locker.locks)
}
