package fetcher

import (
	"io"
	"sync"
)

const (
	// maxDrainBytes 커넥션 재사용을 위해 응답 객체의 Body를 비울 때 읽을 최대 바이트 수 (64KB)
	// 이 범위를 초과하는 바디를 가진 커넥션은 재사용되지 않고 닫힙니다.
	maxDrainBytes = 64 * 1024
)

// drainBufPool drainAndCloseBody에서 재사용하는 바이트 버퍼 풀
var drainBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 32*1024)
		return &b
	},
}

// drainAndCloseBody HTTP 커넥션 재사용을 위해 응답 객체의 Body를 안전하게 비우고 닫습니다.
//
// HTTP Keep-Alive 커넥션 풀링을 위해서는 응답 객체의 Body를 완전히 읽어야 합니다.
// Body를 읽지 않고 닫으면 커넥션이 재사용되지 않아 매번 새 TCP 연결이 필요하므로,
// 일정량(maxDrainBytes)을 읽어서 버린 후 닫아 커넥션 풀에 반환합니다.
func drainAndCloseBody(body io.ReadCloser) {
	if body == nil {
		return
	}
	defer body.Close()

	bufPtr := drainBufPool.Get().(*[]byte)
	defer drainBufPool.Put(bufPtr)

	_, _ = io.CopyBuffer(io.Discard, io.LimitReader(body, maxDrainBytes), *bufPtr)
}
