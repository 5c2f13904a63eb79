package fetcher

import (
	"fmt"

	apperrors "github.com/darkkaiser/catalog-notifier/internal/pkg/errors"
)

var (
	// ErrMaxRetriesExceeded 최대 재시도 횟수를 모두 소진했을 때 반환되는 기저 에러입니다.
	ErrMaxRetriesExceeded = apperrors.New(apperrors.Unavailable, "최대 재시도 횟수를 초과하였습니다")
)

// newErrMaxRetriesExceeded 최대 재시도 횟수 초과 에러를 마지막 발생 에러와 함께 생성합니다.
func newErrMaxRetriesExceeded(lastErr error) error {
	if lastErr == nil {
		return ErrMaxRetriesExceeded
	}
	return apperrors.Wrap(lastErr, apperrors.Unavailable, "최대 재시도 횟수를 초과하였습니다")
}

// newErrRetryAfterExceeded 서버가 요구한 재시도 대기 시간(Retry-After)이
// 허용된 최대 재시도 대기 시간을 초과했을 때 반환되는 에러를 생성합니다.
func newErrRetryAfterExceeded(retryAfter, maxRetryDelay string) error {
	return apperrors.New(apperrors.Unavailable,
		fmt.Sprintf("서버가 요구한 재시도 대기 시간(%s)이 최대 재시도 대기 시간(%s)을 초과하여 재시도를 중단합니다", retryAfter, maxRetryDelay))
}

// newErrGetBodyFailed 재시도를 위한 요청 본문 재생성(GetBody)에 실패했을 때 반환되는 에러를 생성합니다.
func newErrGetBodyFailed(err error) error {
	return apperrors.Wrap(err, apperrors.Internal, "재시도를 위한 요청 본문 재생성에 실패하였습니다")
}

// NewErrResponseBodyTooLarge 응답 본문이 허용된 최대 크기를 초과하여 읽기가 중단되었을 때 반환되는 에러를 생성합니다.
func NewErrResponseBodyTooLarge(limit int64) error {
	return apperrors.New(apperrors.ExecutionFailed, fmt.Sprintf("응답 본문이 허용된 최대 크기(%d바이트)를 초과하였습니다", limit))
}

// NewErrResponseBodyTooLargeByContentLength Content-Length 헤더가 허용된 최대 크기를 초과했을 때 반환되는 에러를 생성합니다.
func NewErrResponseBodyTooLargeByContentLength(contentLength, limit int64) error {
	return apperrors.New(apperrors.ExecutionFailed,
		fmt.Sprintf("응답 본문의 크기(%d바이트)가 허용된 최대 크기(%d바이트)를 초과하였습니다", contentLength, limit))
}
