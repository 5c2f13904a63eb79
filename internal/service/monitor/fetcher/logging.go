package fetcher

import (
	"net/http"
	"time"

	applog "github.com/darkkaiser/catalog-notifier/pkg/log"
)

// LoggingFetcher HTTP 요청의 상세 정보(메서드, URL, 상태 코드, 소요 시간)를 로그로 남기는 미들웨어입니다.
// URL은 redactURL()을 통해 민감 정보가 마스킹된 상태로 기록됩니다.
type LoggingFetcher struct {
	delegate Fetcher
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*LoggingFetcher)(nil)

// NewLoggingFetcher 새로운 LoggingFetcher 인스턴스를 생성합니다.
func NewLoggingFetcher(delegate Fetcher) *LoggingFetcher {
	return &LoggingFetcher{
		delegate: delegate,
	}
}

// Do HTTP 요청을 수행하고 상세 로그를 기록합니다.
func (f *LoggingFetcher) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := f.delegate.Do(req)

	fields := applog.Fields{
		"method":   req.Method,
		"url":      redactURL(req.URL),
		"duration": time.Since(start).String(),
	}

	if err != nil {
		fields["error"] = err.Error()

		// 에러가 발생했더라도 응답 객체가 있을 수 있음 (예: 상태 코드 에러)
		if resp != nil {
			fields["status"] = resp.Status
			fields["status_code"] = resp.StatusCode
		}

		applog.WithComponent(component).
			WithContext(req.Context()).
			WithFields(fields).
			Error("HTTP 요청 실패: 요청 처리 중 에러 발생")

		return resp, err
	}

	if resp != nil {
		fields["status"] = resp.Status
		fields["status_code"] = resp.StatusCode
	}

	applog.WithComponent(component).
		WithContext(req.Context()).
		WithFields(fields).
		Debug("HTTP 요청 성공: 정상 처리 완료")

	return resp, nil
}
