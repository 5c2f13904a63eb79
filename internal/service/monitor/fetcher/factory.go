package fetcher

import (
	"time"
)

// Config Fetcher 체인을 구성하기 위한 설정 옵션을 정의하는 구조체입니다.
type Config struct {
	// MaxRetries 최대 재시도 횟수 (0: 재시도 안 함)
	MaxRetries int

	// MinRetryDelay 재시도 대기 시간의 최소값 (지수 백오프의 시작점)
	MinRetryDelay time.Duration

	// MaxRetryDelay 재시도 대기 시간의 최대값 (0이면 기본값 30초 적용)
	MaxRetryDelay time.Duration

	// RequestTimeout HTTP 요청 제한 시간 (0 이하이면 기본값 10초 적용)
	RequestTimeout time.Duration

	// MaxBytes 응답 본문의 최대 허용 바이트 수 (0: 기본값 10MB, NoLimit: 제한 없음)
	MaxBytes int64

	// AllowedStatusCodes 성공으로 처리할 HTTP 상태 코드 목록 (비어있으면 모든 2xx 허용)
	AllowedStatusCodes []int

	// UserAgents 랜덤으로 선택할 User-Agent 목록 (비어있으면 기본 목록 사용)
	UserAgents []string

	// DisableLogging 로깅 미들웨어 비활성화 여부
	DisableLogging bool
}

// NewFromConfig 설정값을 기반으로 Fetcher 실행 체인을 생성합니다.
//
// Fetcher 체인은 책임 연쇄 패턴을 따르며, 다음 순서로 구성됩니다 (바깥쪽 -> 안쪽):
//
//	Logging -> UserAgent -> Retry -> StatusCode -> MaxBytes -> HTTP
//
// UserAgent 미들웨어가 Retry보다 바깥쪽에 위치하므로 재시도 시에도 동일한 User-Agent가 유지됩니다.
func NewFromConfig(cfg Config) Fetcher {
	var f Fetcher = NewHTTPFetcher(cfg.RequestTimeout)

	f = NewMaxBytesFetcher(f, cfg.MaxBytes)

	if len(cfg.AllowedStatusCodes) > 0 {
		f = NewStatusCodeFetcherWithOptions(f, cfg.AllowedStatusCodes...)
	} else {
		f = NewStatusCodeFetcher(f)
	}

	f = NewRetryFetcher(f, cfg.MaxRetries, cfg.MinRetryDelay, cfg.MaxRetryDelay)

	f = NewUserAgentFetcher(f, cfg.UserAgents)

	if !cfg.DisableLogging {
		f = NewLoggingFetcher(f)
	}

	return f
}
