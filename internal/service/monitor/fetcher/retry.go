package fetcher

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/catalog-notifier/internal/pkg/errors"
	applog "github.com/darkkaiser/catalog-notifier/pkg/log"
)

const (
	// minAllowedRetries 허용 가능한 최소 재시도 횟수입니다. (0: 재시도 안 함)
	minAllowedRetries = 0

	// maxAllowedRetries 허용 가능한 최대 재시도 횟수입니다.
	maxAllowedRetries = 10

	// defaultMaxRetryDelay 재시도 대기 시간의 최대값을 지정하지 않았을 때 사용되는 기본값(30초)입니다.
	defaultMaxRetryDelay = 30 * time.Second
)

// retriableStatusCodes 재시도 대상으로 판단하는 HTTP 상태 코드 목록입니다.
//
// 일시적인 과부하(429, 503)나 게이트웨이 장애(502, 504), 서버 내부 오류(500)만 재시도하며,
// 그 외의 상태 코드는 재시도해도 결과가 달라지지 않는 것으로 간주합니다.
var retriableStatusCodes = map[int]struct{}{
	http.StatusTooManyRequests:     {}, // 429
	http.StatusInternalServerError: {}, // 500
	http.StatusBadGateway:          {}, // 502
	http.StatusServiceUnavailable:  {}, // 503
	http.StatusGatewayTimeout:      {}, // 504
}

// RetryFetcher HTTP 요청 실패 시 자동으로 재시도를 수행하는 미들웨어입니다.
//
// 주요 특징:
//   - 지수 백오프(Exponential Backoff): 재시도 간격을 지수적으로 증가시켜 서버 부하를 분산
//   - Jitter: 무작위 지연을 추가하여 동시 다발적인 재시도로 인한 "Thundering Herd" 문제 방지
//   - Retry-After 헤더 지원: 서버가 명시한 재시도 시간을 우선적으로 준수
//   - 멱등성 검증: 비멱등 메서드(POST, PATCH)는 재시도에서 제외
//   - 컨텍스트 취소 감지: 요청 취소 시 즉시 재시도 중단
type RetryFetcher struct {
	delegate Fetcher

	// maxRetries 최대 재시도 횟수입니다. (minAllowedRetries ~ maxAllowedRetries 범위로 정규화됨)
	maxRetries int

	// minRetryDelay 재시도 대기 시간의 최소값입니다. (지수 백오프의 시작점, 1초 이상으로 보정됨)
	minRetryDelay time.Duration

	// maxRetryDelay 재시도 대기 시간의 최대값입니다. (지수 백오프 증가 시 상한선)
	maxRetryDelay time.Duration
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*RetryFetcher)(nil)

// NewRetryFetcher 새로운 RetryFetcher 인스턴스를 생성합니다.
func NewRetryFetcher(delegate Fetcher, maxRetries int, minRetryDelay time.Duration, maxRetryDelay time.Duration) *RetryFetcher {
	maxRetries = normalizeMaxRetries(maxRetries)
	minRetryDelay, maxRetryDelay = normalizeRetryDelays(minRetryDelay, maxRetryDelay)

	return &RetryFetcher{
		delegate:      delegate,
		maxRetries:    maxRetries,
		minRetryDelay: minRetryDelay,
		maxRetryDelay: maxRetryDelay,
	}
}

// Do HTTP 요청을 수행하며, 실패 시 설정된 정책에 따라 자동으로 재시도합니다.
//
// 재시도 전략:
//  1. 지수 백오프: delay = minRetryDelay * 2^(retry-1), maxRetryDelay 초과 금지
//  2. Full Jitter: 계산된 대기 시간 범위 내에서 무작위 값 선택 (0 ~ delay)
//  3. Retry-After 헤더 우선 처리: 서버가 명시한 값이 maxRetryDelay를 초과하면 재시도 포기
//  4. 멱등성 검증: GET, HEAD, PUT, DELETE, OPTIONS, TRACE만 재시도 허용
//
// 재시도 대상:
//   - 네트워크 오류 (타임아웃, 연결 실패 등)
//   - 429, 500, 502, 503, 504 상태 코드
//
// 재시도 제외:
//   - 컨텍스트 취소 (context.Canceled)
//   - 4xx 클라이언트 에러 (429 제외), 재시도 대상이 아닌 5xx 에러
//   - SSL/TLS 인증서 오류, URL 형식 오류 등 영구적인 문제
func (f *RetryFetcher) Do(req *http.Request) (*http.Response, error) {
	effectiveMaxRetries := f.maxRetries

	// 비멱등 메서드(POST, PATCH)는 재시도 시 데이터 중복 생성/수정 위험이 있으므로 재시도 비활성화!!
	if !isIdempotentMethod(req.Method) {
		effectiveMaxRetries = 0
	}

	// 재시도 시 요청 객체의 Body를 다시 읽어야 하므로, GetBody가 없으면 재시도만 비활성화하고 요청은 계속 진행합니다.
	if req.Body != nil && req.GetBody == nil && effectiveMaxRetries > 0 {
		applog.WithComponent(component).WithContext(req.Context()).WithFields(applog.Fields{
			"url":         redactURL(req.URL),
			"method":      req.Method,
			"max_retries": f.maxRetries,
		}).Warn("재시도 비활성화: 요청 본문 재생성 불가 (GetBody nil)")

		effectiveMaxRetries = 0
	}

	var lastErr error
	var lastResp *http.Response

	// 첫 번째 시도와 재시도를 포함하여 최대 `effectiveMaxRetries + 1`회 반복합니다.
	for i := 0; i <= effectiveMaxRetries; i++ {
		if i > 0 {
			delay, abortErr := f.nextRetryDelay(i, lastResp, lastErr)
			if abortErr != nil {
				if lastResp != nil {
					// 커넥션 재사용을 위해 응답 객체의 Body를 안전하게 비우고 닫음
					drainAndCloseBody(lastResp.Body)
				}

				return nil, abortErr
			}

			f.logRetryWait(req, i, effectiveMaxRetries, delay, lastResp, lastErr)

			timer := time.NewTimer(delay)
			select {
			case <-req.Context().Done():
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}

				if lastResp != nil && lastResp.Body != nil {
					// 컨텍스트가 취소된 경우, 빠른 반환을 위해 drain 과정을 생략하고 즉시 닫습니다.
					lastResp.Body.Close()
				}

				return nil, req.Context().Err()

			case <-timer.C:
			}

			// 이전 시도에서 소진된 요청 본문을 GetBody를 통해 복구
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					if lastResp != nil {
						drainAndCloseBody(lastResp.Body)
					}

					return nil, newErrGetBodyFailed(err)
				}

				// 원본 요청 객체를 변경하지 않기 위해 복제본 생성
				req = req.Clone(req.Context())
				req.Body = body
			}
		}

		resp, err := f.delegate.Do(req)
		lastResp = resp

		// 재시도 여부 판단
		shouldRetry := false

		// 응답 객체의 상태 코드 검사 (StatusCodeFetcher가 체인에 없는 환경에서의 독립적 사용 대비)
		if resp != nil {
			_, shouldRetry = retriableStatusCodes[resp.StatusCode]
		}

		if err != nil {
			// 전체 요청 제한 시간(Deadline)이 초과된 경우, 재시도를 해도 성공할 수 없으므로 즉시 중단합니다.
			if errors.Is(err, context.DeadlineExceeded) && req.Context().Err() != nil {
				if resp != nil && resp.Body != nil {
					resp.Body.Close()
				}

				return nil, err
			}

			if !isRetriable(err) {
				if resp != nil && resp.Body != nil {
					if errors.Is(err, context.Canceled) {
						// 컨텍스트가 취소된 경우, 빠른 반환을 위해 drain 과정을 생략하고 즉시 닫습니다.
						resp.Body.Close()
					} else {
						drainAndCloseBody(resp.Body)
					}
				}

				return nil, err
			}
		} else if !shouldRetry {
			// 요청이 성공했거나 재시도 대상이 아닌 응답이므로 결과를 반환하고 종료합니다.
			return resp, nil
		}

		lastErr = err
		if resp != nil {
			if i == effectiveMaxRetries {
				// 모든 재시도 횟수를 소진하였으므로 상세 정보를 포함한 최종 에러를 반환합니다.
				finalErr := newFinalRetryError(req, resp, lastErr)

				// 커넥션 재사용을 위해 응답 객체의 Body를 안전하게 비우고 닫음
				drainAndCloseBody(resp.Body)

				return nil, finalErr
			}

			drainAndCloseBody(resp.Body)
		}
	}

	// 모든 재시도 횟수를 소진했으나 서버로부터 응답을 받지 못한 경우(예: 타임아웃, 연결 거부)입니다.
	return nil, newErrMaxRetriesExceeded(lastErr)
}

// nextRetryDelay i번째 재시도 전에 대기할 시간을 계산합니다.
//
// 지수 백오프와 Full Jitter를 적용한 뒤, 서버가 Retry-After 헤더를 명시한 경우
// 해당 값을 우선 적용합니다. Retry-After 값이 최대 재시도 대기 시간을 초과하면
// 재시도를 포기해야 함을 나타내는 에러를 반환합니다.
func (f *RetryFetcher) nextRetryDelay(i int, lastResp *http.Response, lastErr error) (time.Duration, error) {
	// 지수 백오프: 재시도 횟수가 늘어날수록 대기 시간을 2배씩 증가 (예: 1초 -> 2초 -> 4초 -> 8초)
	delay := f.minRetryDelay * time.Duration(1<<(i-1))
	if delay > f.maxRetryDelay {
		delay = f.maxRetryDelay
	}

	// Full Jitter: 0 ~ 계산된 delay 사이의 값을 무작위로 선택
	if delay > 0 {
		delay = time.Duration(rand.Int64N(int64(delay) + 1))
	}

	// Retry-After 헤더 우선 적용
	retryAfter := retryAfterHeader(lastResp, lastErr)
	if retryAfter != "" {
		if retryAfterDelay, ok := parseRetryAfter(retryAfter); ok {
			if retryAfterDelay > f.maxRetryDelay {
				// 과도한 지연을 방지하기 위해 재시도를 포기하고 즉시 에러를 반환합니다.
				return 0, newErrRetryAfterExceeded(retryAfterDelay.String(), f.maxRetryDelay.String())
			}

			// 서버가 명시한 값을 최종 대기 시간으로 적용합니다. (0초 가능)
			return retryAfterDelay, nil
		}
	}

	// 계산된 대기 시간(지터 포함)이 너무 짧으면 서버에 부담이 될 수 있으므로 최소 대기 시간을 보장합니다.
	if delay < time.Millisecond {
		delay = f.minRetryDelay
	}

	return delay, nil
}

// retryAfterHeader 마지막 응답 또는 에러에 포함된 Retry-After 헤더 값을 추출합니다.
func retryAfterHeader(lastResp *http.Response, lastErr error) string {
	if lastResp != nil {
		return lastResp.Header.Get("Retry-After")
	}

	if lastErr != nil {
		var statusErr *HTTPStatusError
		if errors.As(lastErr, &statusErr) {
			return statusErr.Header.Get("Retry-After")
		}
	}

	return ""
}

// logRetryWait 재시도 대기 시작을 알리는 경고 로그를 출력합니다.
func (f *RetryFetcher) logRetryWait(req *http.Request, i, effectiveMaxRetries int, delay time.Duration, lastResp *http.Response, lastErr error) {
	fields := applog.Fields{
		"url":               redactURL(req.URL),
		"retry":             i,
		"max_retries":       f.maxRetries,
		"remaining_retries": effectiveMaxRetries - i,
		"delay":             delay.String(),
	}

	var retryReason string
	if lastErr != nil {
		fields["error"] = lastErr.Error()
		retryReason = "network_error"
	}
	if lastResp != nil {
		fields["status_code"] = lastResp.StatusCode
		if retryReason == "" {
			retryReason = fmt.Sprintf("status_code_%d", lastResp.StatusCode)
		}
	}
	if retryReason != "" {
		fields["retry_reason"] = retryReason
	}

	applog.WithComponent(component).
		WithContext(req.Context()).
		WithFields(fields).
		Warn("재시도 대기 중: 일시적 오류로 인해 요청 재시도를 준비합니다")
}

// newFinalRetryError 모든 재시도가 실패했을 때 반환할 최종 에러를 생성합니다.
func newFinalRetryError(req *http.Request, resp *http.Response, lastErr error) error {
	if lastErr != nil {
		return newErrMaxRetriesExceeded(lastErr)
	}

	// 네트워크 오류는 없었으나, 서버가 재시도 대상 상태 코드(예: 429, 5xx)를 지속적으로 반환하여 실패한 경우입니다.
	var bodySnippet string
	if resp.Body != nil {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippetBytes))
		if len(bodyBytes) > 0 {
			bodySnippet = string(bodyBytes)
		}
	}

	return &HTTPStatusError{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		URL:         redactURL(req.URL),
		Header:      redactHeaders(resp.Header),
		BodySnippet: bodySnippet,
		Cause:       ErrMaxRetriesExceeded,
	}
}

// normalizeMaxRetries 최대 재시도 횟수를 허용 범위(0~10) 내로 정규화합니다.
func normalizeMaxRetries(maxRetries int) int {
	if maxRetries < minAllowedRetries {
		return minAllowedRetries
	}
	if maxRetries > maxAllowedRetries {
		// 과도한 재시도로 인한 지연 방지
		return maxAllowedRetries
	}
	return maxRetries
}

// normalizeRetryDelays 재시도 대기 시간의 최소값과 최대값을 정규화합니다.
//
// 정규화 규칙:
//   - minRetryDelay 1초 미만: 1초로 보정 (너무 짧은 대기 시간은 서버에 부담)
//   - maxRetryDelay 0: 기본값(30초)으로 보정
//   - maxRetryDelay < minRetryDelay: minRetryDelay로 보정
func normalizeRetryDelays(minRetryDelay, maxRetryDelay time.Duration) (time.Duration, time.Duration) {
	if minRetryDelay < time.Second {
		minRetryDelay = 1 * time.Second
	}

	if maxRetryDelay == 0 {
		maxRetryDelay = defaultMaxRetryDelay
	}

	if maxRetryDelay < minRetryDelay {
		maxRetryDelay = minRetryDelay
	}

	return minRetryDelay, maxRetryDelay
}

// isRetriable 발생한 에러가 재시도 가능한 일시적인 오류인지 판단합니다.
//
// 재시도 대상:
//   - 네트워크 타임아웃 및 일시적인 연결 오류
//   - 서버 일시적 오류 (apperrors.Unavailable, 단 재시도 대상 상태 코드에 한함)
//
// 재시도 제외:
//   - 컨텍스트 취소 (context.Canceled): 사용자의 명시적 취소 의도
//   - SSL/TLS 인증서 오류, URL 형식 오류, 리다이렉트 제한 초과 등 영구적인 문제
//   - 비즈니스 로직 에러 (ExecutionFailed, InvalidInput, Forbidden, NotFound 등)
func isRetriable(err error) bool {
	if err == nil {
		return false
	}

	// context.Canceled는 사용자가 명시적으로 요청을 취소한 것이므로 재시도 제외!
	// 주의: context.DeadlineExceeded는 HTTP 클라이언트 타임아웃 시에도 발생하므로 net.Error 검사 단계에서 확인합니다.
	if errors.Is(err, context.Canceled) {
		return false
	}

	// 재시도해도 해결되지 않는 URL 관련 오류는 즉시 중단합니다.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		switch urlErr.Err.Error() {
		case "stopped after 10 redirects", // http.Client의 기본 리다이렉트 정책(최대 10회) 초과
			"invalid control character in URL":
			return false
		}

		if strings.Contains(urlErr.Error(), "unsupported protocol scheme") {
			return false
		}
	}

	// 인증서 에러(유효기간 만료, 신뢰할 수 없는 CA 등)는 재시도해도 해결되지 않는 문제로 간주!
	var x509HostnameErr x509.HostnameError
	var x509UnknownAuthorityErr x509.UnknownAuthorityError
	var x509CertificateInvalidErr x509.CertificateInvalidError
	if errors.As(err, &x509HostnameErr) || errors.As(err, &x509UnknownAuthorityErr) || errors.As(err, &x509CertificateInvalidErr) {
		return false
	}

	// 타임아웃은 일시적인 네트워크 지연으로 간주하여 재시도
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// 서버 측 일시적 오류 확인
	if apperrors.Is(err, apperrors.Unavailable) {
		// HTTPStatusError에 상태 코드가 포함된 경우, 재시도 대상 상태 코드인지 확인합니다.
		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) {
			_, ok := retriableStatusCodes[statusErr.StatusCode]
			return ok
		}

		return true
	}

	// 명확한 비즈니스 로직 에러는 재시도해도 동일한 결과가 나오므로 재시도 제외!
	if apperrors.Is(err, apperrors.ExecutionFailed) ||
		apperrors.Is(err, apperrors.InvalidInput) ||
		apperrors.Is(err, apperrors.Unauthorized) ||
		apperrors.Is(err, apperrors.Forbidden) ||
		apperrors.Is(err, apperrors.NotFound) {
		return false
	}

	// 명확한 실패 사유가 없다면 일시적 오류(DNS 조회 실패, 연결 거부 등)로 간주하고 재시도합니다.
	return true
}

// isIdempotentMethod 지정된 HTTP 메서드가 멱등한지(재시도가 안전한지) 여부를 반환합니다.
//
// 멱등한 메서드는 재시도해도 데이터 중복 생성/수정 위험이 없으므로 안전하게 재시도할 수 있습니다.
// POST, PATCH는 중복 생성/적용 위험이 있어 재시도에서 제외됩니다.
//
// 참고: RFC 7231 Section 4.2.2 (Idempotent Methods)
func isIdempotentMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace, http.MethodPut, http.MethodDelete:
		return true

	default:
		return false
	}
}

// parseRetryAfter Retry-After 헤더 값을 파싱하여 대기해야 할 시간을 반환합니다.
//
// 지원 형식 (RFC 7231 Section 7.1.3):
//  1. 초 단위 정수: "120" → 120초 후 재시도
//  2. HTTP-date 형식: "Wed, 21 Oct 2015 07:28:00 GMT" → 해당 시각까지 대기
func parseRetryAfter(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}

	var seconds int
	if _, err := fmt.Sscanf(value, "%d", &seconds); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}

	if date, err := http.ParseTime(value); err == nil {
		duration := time.Until(date)
		if duration < 0 {
			// 서버 시간과 클라이언트 시간 차이로 과거 시간이 올 수 있으므로 즉시 재시도 (0초 대기)
			duration = 0
		}

		return duration, true
	}

	return 0, false
}
