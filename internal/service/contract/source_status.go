package contract

import "time"

// 소스 수집 상태 이름
const (
	// SourceStateUnseen 아직 기준 스냅샷이 저장되지 않은 초기 상태
	SourceStateUnseen = "unseen"

	// SourceStateBaselined 기준 스냅샷이 저장되어 변경 감지가 수행되는 상태
	SourceStateBaselined = "baselined"
)

// SourceStatus 감시 대상 소스 하나의 현재 수집 상태 요약입니다.
type SourceStatus struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	// State 소스의 수집 상태 (unseen 또는 baselined)
	State string `json:"state"`

	// ProductCount 현재 저장된 스냅샷의 상품 수
	ProductCount int `json:"product_count"`

	// FetchSucceeded 마지막 사이클의 수집 성공 여부
	FetchSucceeded bool `json:"fetch_succeeded"`

	// Added / Removed 마지막 사이클에서 감지된 신규/종료 상품 수
	Added   int `json:"added"`
	Removed int `json:"removed"`

	// LastCycleAt 마지막 사이클이 완료된 시각 (사이클 수행 전이면 Zero 값)
	LastCycleAt time.Time `json:"last_cycle_at,omitzero"`

	// NextRunAt 다음 수집 예정 시각 (Cron 기반 소스는 Zero 값)
	NextRunAt time.Time `json:"next_run_at,omitzero"`
}

// SourceStatusProvider 감시 대상 소스들의 수집 상태를 조회하는 인터페이스입니다.
type SourceStatusProvider interface {
	SourceStatuses() []SourceStatus
}
