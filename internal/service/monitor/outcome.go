package monitor

import (
	"time"

	"github.com/darkkaiser/catalog-notifier/internal/service/monitor/catalog"
)

// FetchOutcome 단일 수집 시도의 결과입니다.
type FetchOutcome struct {
	// Succeeded 카탈로그 수집 및 파싱 성공 여부
	Succeeded bool

	// ProductCount 수집된 상품 수 (실패 시 0)
	ProductCount int

	// Elapsed 수집에 소요된 시간
	Elapsed time.Duration

	// Err 실패 원인 (성공 시 nil)
	Err error

	// snapshot 수집에 성공한 경우의 카탈로그 스냅샷
	snapshot catalog.Snapshot
}

// NotifyOutcome 변경 알림 발송 시도의 집계 결과입니다.
type NotifyOutcome struct {
	// Requested 발송을 시도한 알림 메시지 수
	Requested int

	// Failed 발송 요청이 실패한 알림 메시지 수
	Failed int
}

// CycleOutcome 소스 한 번의 수집 사이클 전체 결과입니다.
type CycleOutcome struct {
	SourceID string

	// Skipped 동일 소스의 이전 사이클이 아직 실행 중이어서 건너뛴 경우 true
	Skipped bool

	// Baselined 첫 사이클로 기준 스냅샷만 저장하고 알림을 발송하지 않은 경우 true
	Baselined bool

	Fetch FetchOutcome

	// Added / Removed 감지된 신규/종료 상품 수
	Added   int
	Removed int

	Notify NotifyOutcome
}
