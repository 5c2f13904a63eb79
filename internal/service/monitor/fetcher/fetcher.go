package fetcher

import (
	"context"
	"net/http"
)

// component Monitor 서비스의 Fetcher 로깅용 컴포넌트 이름
const component = "monitor.fetcher"

// Fetcher HTTP 요청을 수행하는 핵심 인터페이스입니다.
//
// 재시도, 로깅, User-Agent 설정 등의 기능을 데코레이터 패턴으로 조합할 수 있도록 설계되었습니다.
//
// 구현 시 주의사항:
//   - 반환된 응답 객체의 Body는 반드시 호출자가 닫아야 합니다.
//   - Context 취소 시 즉시 요청을 중단하고 적절한 에러를 반환해야 합니다.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// Get 지정된 URL로 HTTP GET 요청을 전송하는 헬퍼 함수입니다.
//
// 요청 실패 시 커넥션 재사용을 위해 응답 객체의 Body를 자동으로 비우고 닫습니다.
// 성공 시 반환된 응답 객체의 Body는 호출자가 반드시 닫아야 합니다.
func Get(ctx context.Context, f Fetcher, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Do(req)
	if err != nil {
		if resp != nil {
			// 커넥션 재사용을 위해 응답 객체의 Body를 안전하게 비우고 닫음
			drainAndCloseBody(resp.Body)
		}

		return nil, err
	}

	return resp, nil
}
