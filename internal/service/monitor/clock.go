package monitor

import "time"

// Clock 현재 시각 조회를 추상화하는 인터페이스입니다.
// 테스트에서 가상 시계를 주입하여 수집 주기 관련 로직을 검증할 수 있습니다.
type Clock interface {
	// Now 현재 시각을 반환합니다.
	Now() time.Time
}

// systemClock 시스템 시각을 그대로 반환하는 기본 Clock 구현체입니다.
type systemClock struct{}

var _ Clock = systemClock{}

func (systemClock) Now() time.Time {
	return time.Now()
}
