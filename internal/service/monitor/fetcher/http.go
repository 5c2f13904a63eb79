package fetcher

import (
	"net/http"
	"time"
)

// defaultRequestTimeout 요청 제한 시간이 지정되지 않았을 때 적용되는 기본값입니다.
const defaultRequestTimeout = 10 * time.Second

// HTTPFetcher http.Client를 감싸는 가장 안쪽의 Fetcher 구현체입니다.
type HTTPFetcher struct {
	client *http.Client
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher 지정된 요청 제한 시간을 가지는 HTTPFetcher 인스턴스를 생성합니다.
// timeout이 0 이하이면 기본값(10초)이 적용됩니다.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Do HTTP 요청을 실행합니다.
func (f *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	return f.client.Do(req)
}
