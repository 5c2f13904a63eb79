// Package notifier 개별 알림 채널(웹훅, 텔레그램 등) 구현의 공통 기반을 제공합니다.
package notifier

import (
	"context"
	"time"

	"github.com/darkkaiser/catalog-notifier/internal/service/contract"
)

const component = "notification.notifier"

// 알림 발송 큐 기본값
const (
	// DefaultQueueSize 발송 대기열(채널 버퍼)의 기본 크기
	DefaultQueueSize = 500

	// DefaultEnqueueTimeout 대기열이 가득 찼을 때 빈 공간을 기다려줄 최대 시간
	DefaultEnqueueTimeout = 2 * time.Second
)

// Notifier 개별 알림 채널 구현을 위한 인터페이스입니다.
// Notification 서비스는 이 인터페이스를 통해 다양한 알림 수단을 일관된 방식으로 관리합니다.
type Notifier interface {
	// ID Notifier 인스턴스의 고유 식별자를 반환합니다.
	ID() contract.NotifierID

	// Run Notifier의 발송 루프를 실행합니다. 큐에 등록된 알림을 순차적으로
	// 발송하며, 종료 신호를 받으면 큐에 남은 알림을 최대한 처리한 후 반환합니다.
	Run(serviceStopCtx context.Context)

	// Send 알림 발송 요청을 내부 큐에 등록합니다.
	// 실제 발송 결과와 무관하게 큐 등록 성공 여부만 반환합니다.
	Send(ctx context.Context, notification contract.Notification) error

	// SupportsHTML 알림 채널이 HTML 스타일의 메시지 포맷팅을 지원하는지 여부를 반환합니다.
	SupportsHTML() bool

	// Close Notifier의 운영을 중단하고 새로운 알림 요청을 거부합니다.
	Close()
}
