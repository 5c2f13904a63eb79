package notification

import (
	"fmt"

	apperrors "github.com/darkkaiser/catalog-notifier/internal/pkg/errors"
)

var (
	// ErrServiceNotRunning 서비스가 실행 중이 아니어서 알림 요청을 처리할 수 없을 때 반환하는 에러입니다.
	ErrServiceNotRunning = apperrors.New(apperrors.Unavailable, "Notification 서비스가 실행 중이 아니어서 알림을 보낼 수 없습니다")

	// ErrNotifierNotFound 등록되지 않은 알림 채널 ID가 요청되었을 때 반환하는 에러입니다.
	ErrNotifierNotFound = apperrors.New(apperrors.NotFound, "등록되지 않은 알림 채널입니다. 설정 파일을 확인해 주세요")
)

// NewErrDefaultNotifierNotFound 기본 Notifier ID가 등록된 Notifier 목록에 없을 때 반환하는 에러를 생성합니다.
func NewErrDefaultNotifierNotFound(id string) error {
	return apperrors.New(apperrors.NotFound, fmt.Sprintf("기본 Notifier('%s')를 찾을 수 없습니다", id))
}

// NewErrNotifierInitFailed Notifier 생성 또는 연결 설정 중 에러가 발생했을 때 반환하는 에러를 생성합니다.
func NewErrNotifierInitFailed(err error) error {
	return apperrors.Wrap(err, apperrors.Internal, "Notifier 초기화 중 에러가 발생했습니다")
}
