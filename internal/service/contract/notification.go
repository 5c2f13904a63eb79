// Package contract 서비스 간의 의존성을 끊기 위한 공용 타입과 인터페이스를 정의합니다.
package contract

import (
	"strings"

	apperrors "github.com/darkkaiser/catalog-notifier/internal/pkg/errors"
)

var (
	// ErrMessageRequired 알림의 본문 내용이 비어있거나 공백 문자로만 구성되어 있을 때 반환하는 에러입니다.
	ErrMessageRequired = apperrors.New(apperrors.InvalidInput, "알림 메시지 본문은 비워둘 수 없습니다")
)

// NotifierID Notifier 인스턴스의 고유 식별자입니다.
type NotifierID string

// Notification 알림 채널로 전달되는 단일 알림 메시지입니다.
type Notification struct {
	// NotifierID 알림을 발송할 대상 Notifier의 식별자 (빈 값이면 기본 Notifier 사용)
	NotifierID NotifierID

	// Title 알림 메시지의 제목 (빈 값 가능)
	Title string

	// Message 전송할 메시지 본문
	Message string

	// ErrorOccurred 오류 상황에 대한 알림인지 여부
	ErrorOccurred bool
}

// NewNotification 일반 알림 메시지를 생성합니다.
func NewNotification(message string) Notification {
	return Notification{Message: message}
}

// NewErrorNotification 오류 성격의 알림 메시지를 생성합니다.
func NewErrorNotification(message string) Notification {
	return Notification{Message: message, ErrorOccurred: true}
}

// Validate 알림 메시지의 필수 항목을 검증합니다.
func (n Notification) Validate() error {
	if strings.TrimSpace(n.Message) == "" {
		return ErrMessageRequired
	}
	return nil
}

// NotificationSender 알림 발송 기능을 제공하는 인터페이스입니다.
// Monitor, API와 같은 클라이언트는 이 인터페이스를 통해 알림 서비스를 사용합니다.
type NotificationSender interface {
	// Notify 지정된 Notifier를 통해 알림 메시지를 발송합니다.
	//
	// 반환값:
	//   - error: 발송 요청이 정상적으로 큐에 등록(실제 전송 결과와는 무관)되면 nil, 실패 시 에러 반환
	Notify(notifierID NotifierID, message string) error

	// NotifyWithTitle 지정된 Notifier를 통해 제목을 포함한 알림 메시지를 발송합니다.
	// errorOccurred 플래그를 통해 해당 알림이 오류 상황에 대한 것인지 명시할 수 있습니다.
	NotifyWithTitle(notifierID NotifierID, title string, message string, errorOccurred bool) error

	// NotifyDefault 시스템에 설정된 기본 Notifier를 통해 알림 메시지를 발송합니다.
	NotifyDefault(message string) error

	// NotifyDefaultWithError 기본 Notifier를 통해 "오류" 성격의 알림 메시지를 발송합니다.
	// 시스템 내부 에러, 작업 실패 등 관리자의 주의가 필요한 상황 알림에 적합합니다.
	NotifyDefaultWithError(message string) error
}

// NotificationHealthChecker Notification 서비스의 상태를 확인하는 인터페이스입니다.
type NotificationHealthChecker interface {
	// Health 서비스가 정상적으로 실행 중인지 확인합니다.
	Health() error
}
