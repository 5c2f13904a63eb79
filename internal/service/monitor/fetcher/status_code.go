package fetcher

import (
	"fmt"
	"io"
	"net/http"
	"slices"

	apperrors "github.com/darkkaiser/catalog-notifier/internal/pkg/errors"
)

// maxBodySnippetBytes 에러 객체에 포함시킬 응답 본문의 최대 크기 (4KB)
const maxBodySnippetBytes = 4096

// StatusCodeFetcher HTTP 응답의 상태 코드를 검증하는 미들웨어입니다.
//
// 허용되지 않은 상태 코드는 상세 정보(상태 코드, 헤더, 본문 일부)를 포함한
// HTTPStatusError로 변환되며, 응답 객체의 Body는 내부에서 안전하게 정리됩니다.
type StatusCodeFetcher struct {
	delegate Fetcher

	// allowedStatusCodes 허용할 HTTP 상태 코드 목록입니다.
	// nil 또는 빈 슬라이스인 경우 모든 2xx 성공 응답을 허용합니다.
	allowedStatusCodes []int
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*StatusCodeFetcher)(nil)

// NewStatusCodeFetcher 모든 2xx 성공 응답을 허용하는 StatusCodeFetcher 인스턴스를 생성합니다.
func NewStatusCodeFetcher(delegate Fetcher) *StatusCodeFetcher {
	return &StatusCodeFetcher{
		delegate: delegate,
	}
}

// NewStatusCodeFetcherWithOptions 특정 HTTP 상태 코드들을 허용하는 StatusCodeFetcher 인스턴스를 생성합니다.
func NewStatusCodeFetcherWithOptions(delegate Fetcher, allowedStatusCodes ...int) *StatusCodeFetcher {
	return &StatusCodeFetcher{
		delegate:           delegate,
		allowedStatusCodes: allowedStatusCodes,
	}
}

// Do HTTP 요청을 수행하고 응답 상태 코드를 검증합니다.
//
// 상태 코드 검증 실패 시 nil Response와 HTTPStatusError를 반환하며,
// 응답 객체의 Body는 내부에서 정리되므로 호출자가 별도로 닫을 필요가 없습니다.
func (f *StatusCodeFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil {
		if resp != nil {
			// 커넥션 재사용을 위해 응답 객체의 Body를 안전하게 비우고 닫음
			drainAndCloseBody(resp.Body)
		}

		return nil, err
	}

	if f.isAllowed(resp.StatusCode) {
		return resp, nil
	}

	// 디버깅 편의를 위해 응답 본문의 앞부분만 읽어서 에러 객체에 포함
	var bodySnippet string
	if resp.Body != nil {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippetBytes))
		bodySnippet = string(bodyBytes)
	}

	// 커넥션 재사용을 위해 응답 객체의 Body를 안전하게 비우고 닫음
	drainAndCloseBody(resp.Body)

	return nil, &HTTPStatusError{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		URL:         redactURL(req.URL),
		Header:      redactHeaders(resp.Header),
		BodySnippet: bodySnippet,
		Cause:       statusCodeCause(resp.StatusCode, resp.Status),
	}
}

// isAllowed 주어진 상태 코드가 허용 목록에 포함되는지 확인합니다.
func (f *StatusCodeFetcher) isAllowed(statusCode int) bool {
	if len(f.allowedStatusCodes) == 0 {
		return statusCode >= 200 && statusCode <= 299
	}
	return slices.Contains(f.allowedStatusCodes, statusCode)
}

// statusCodeCause HTTP 상태 코드를 도메인 에러 타입으로 분류합니다.
func statusCodeCause(statusCode int, status string) error {
	errType := apperrors.ExecutionFailed

	switch {
	case statusCode >= 500 || statusCode == http.StatusTooManyRequests:
		// 서버 측 일시적 오류이거나 요청 제한에 걸린 경우 (재시도 대상)
		errType = apperrors.Unavailable
	case statusCode == http.StatusBadRequest:
		errType = apperrors.InvalidInput
	case statusCode == http.StatusUnauthorized:
		errType = apperrors.Unauthorized
	case statusCode == http.StatusForbidden:
		errType = apperrors.Forbidden
	case statusCode == http.StatusNotFound:
		errType = apperrors.NotFound
	}

	return apperrors.New(errType, fmt.Sprintf("HTTP 요청이 실패했습니다. 상태 코드: %s", status))
}
