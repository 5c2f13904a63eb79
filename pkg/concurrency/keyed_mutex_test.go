package concurrency

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestKeyedMutex_Lock 동일 키의 직렬화와 서로 다른 키의 병렬 처리를 검증합니다.
func TestKeyedMutex_Lock(t *testing.T) {
	t.Parallel()

	km := NewKeyedMutex()

	var mu sync.Mutex
	counter := map[string]int{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			km.Lock("source-a")
			defer km.Unlock("source-a")

			mu.Lock()
			counter["source-a"]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter["source-a"])
	assert.Equal(t, 0, km.Len(), "모든 락 해제 후에는 키가 정리되어야 함")
}

// TestKeyedMutex_TryLock 락 점유 중 TryLock이 대기 없이 실패하는지 검증합니다.
func TestKeyedMutex_TryLock(t *testing.T) {
	t.Parallel()

	km := NewKeyedMutex()

	require.True(t, km.TryLock("source-a"), "첫 TryLock은 성공해야 함")

	// 동일 키는 실패, 다른 키는 성공
	assert.False(t, km.TryLock("source-a"))
	require.True(t, km.TryLock("source-b"))

	km.Unlock("source-a")
	km.Unlock("source-b")

	// 해제 후에는 다시 성공
	require.True(t, km.TryLock("source-a"))
	km.Unlock("source-a")

	assert.Equal(t, 0, km.Len())
}

// TestKeyedMutex_TryLockConcurrent 동시 TryLock 경쟁에서 정확히 하나만 성공하는지 검증합니다.
func TestKeyedMutex_TryLockConcurrent(t *testing.T) {
	t.Parallel()

	km := NewKeyedMutex()

	const goroutines = 20

	var acquired sync.Map
	var successCount int
	var mu sync.Mutex

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start

			if km.TryLock("key") {
				mu.Lock()
				successCount++
				mu.Unlock()

				acquired.Store(n, true)
				time.Sleep(50 * time.Millisecond) // 락 점유 유지
				km.Unlock("key")
			}
		}(i)
	}

	close(start)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, successCount, "동시 경쟁에서는 단 하나의 고루틴만 락을 획득해야 함")
}

// TestKeyedMutex_UnlockPanic 잠기지 않은 키의 Unlock 시 패닉을 검증합니다.
func TestKeyedMutex_UnlockPanic(t *testing.T) {
	t.Parallel()

	km := NewKeyedMutex()
	assert.Panics(t, func() {
		km.Unlock("never-locked")
	})
}
