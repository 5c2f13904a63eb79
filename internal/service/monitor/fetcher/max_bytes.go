package fetcher

import (
	"errors"
	"io"
	"net/http"
)

const (
	// defaultMaxBytes 응답 본문의 기본 크기 제한값입니다 (10MB).
	defaultMaxBytes = 10 * 1024 * 1024

	// NoLimit 응답 본문에 대한 크기 제한을 적용하지 않음을 나타내는 특수 상수입니다.
	NoLimit = -1
)

// maxBytesReader http.MaxBytesReader를 래핑하여 도메인 에러를 반환하는 내부 헬퍼 구조체입니다.
type maxBytesReader struct {
	rc io.ReadCloser

	// 바이트 수 제한값 (에러 메시지에 포함하기 위해 저장)
	limit int64
}

// Read 데이터를 읽으며, 크기 제한 초과 시 도메인 에러로 변환합니다.
func (r *maxBytesReader) Read(p []byte) (n int, err error) {
	n, err = r.rc.Read(p)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return n, NewErrResponseBodyTooLarge(r.limit)
		}
	}

	return n, err
}

// Close 래핑된 ReadCloser를 닫습니다.
func (r *maxBytesReader) Close() error {
	return r.rc.Close()
}

// MaxBytesFetcher HTTP 응답 본문의 크기를 제한하는 미들웨어입니다.
//
// Content-Length 헤더 기반의 조기 차단과 실제 읽기 시점의 바이트 수 제한을
// 함께 적용하여, 조작된 Content-Length나 거대한 응답으로 인한 메모리 고갈을 방지합니다.
type MaxBytesFetcher struct {
	delegate Fetcher

	// 응답 본문의 최대 허용 바이트 수
	limit int64
}

// NewMaxBytesFetcher 새로운 MaxBytesFetcher 인스턴스를 생성합니다.
// limit이 NoLimit(-1)이면 크기 제한 없이 delegate를 그대로 반환합니다.
func NewMaxBytesFetcher(delegate Fetcher, limit int64) Fetcher {
	if limit == NoLimit {
		return delegate
	}
	if limit <= 0 {
		limit = defaultMaxBytes
	}

	return &MaxBytesFetcher{
		delegate: delegate,
		limit:    limit,
	}
}

// Do HTTP 요청을 수행하고, 응답 본문에 크기 제한을 적용합니다.
// 반환된 응답의 Body는 반드시 호출자가 닫아야 하며, 읽는 도중 제한 초과 시 에러가 발생할 수 있습니다.
func (f *MaxBytesFetcher) Do(req *http.Request) (*http.Response, error) {
	resp, err := f.delegate.Do(req)
	if err != nil {
		if resp != nil {
			// 커넥션 재사용을 위해 응답 객체의 Body를 안전하게 비우고 닫음
			drainAndCloseBody(resp.Body)
		}

		return nil, err
	}

	// 1차 방어: Content-Length 헤더 기반 조기 차단
	if resp.ContentLength > f.limit {
		drainAndCloseBody(resp.Body)

		return nil, NewErrResponseBodyTooLargeByContentLength(resp.ContentLength, f.limit)
	}

	// 2차 방어: 실제 읽기 시점의 바이트 수 제한
	// Content-Length 헤더가 없거나 실제 크기보다 작게 조작된 응답도 여기서 차단됩니다.
	resp.Body = &maxBytesReader{
		rc:    http.MaxBytesReader(nil, resp.Body, f.limit),
		limit: f.limit,
	}

	return resp, nil
}
