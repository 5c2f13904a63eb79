package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	apperrors "github.com/darkkaiser/catalog-notifier/internal/pkg/errors"
	"github.com/darkkaiser/catalog-notifier/internal/service/monitor/fetcher"
	"github.com/darkkaiser/catalog-notifier/pkg/strutil"
	"golang.org/x/net/html/charset"
)

// HTMLSettings HTML 소스에서 상품 목록을 추출하기 위한 CSS 셀렉터 설정입니다.
type HTMLSettings struct {
	// ProductSelector 개별 상품 노드를 선택하는 CSS 셀렉터 (필수)
	ProductSelector string `json:"product_selector"`

	// TitleSelector 상품 노드 내에서 상품명을 선택하는 CSS 셀렉터 (비어있으면 상품 노드의 텍스트 사용)
	TitleSelector string `json:"title_selector"`

	// LinkSelector 상품 노드 내에서 상품 페이지 링크(a 태그)를 선택하는 CSS 셀렉터
	// (비어있으면 상품 노드 자신 또는 내부의 첫 번째 a 태그 사용)
	LinkSelector string `json:"link_selector"`
}

// Validate 셀렉터 설정의 유효성을 검증합니다.
func (s *HTMLSettings) Validate() error {
	s.ProductSelector = strings.TrimSpace(s.ProductSelector)
	if s.ProductSelector == "" {
		return apperrors.New(apperrors.InvalidInput, "product_selector가 입력되지 않았거나 공백입니다")
	}
	return nil
}

// FetchHTMLSnapshot 지정된 URL의 HTML 페이지에서 상품 목록을 추출하여 스냅샷을 생성합니다.
//
// 응답 헤더의 Content-Type을 분석하여, 비 UTF-8 인코딩(예: EUC-KR) 페이지도
// 자동으로 UTF-8로 변환하여 처리합니다. 상품 페이지 링크의 마지막 경로 조각을
// Handle로 사용하며, 링크가 없는 상품은 Handle 없이 수집됩니다.
func FetchHTMLSnapshot(ctx context.Context, f fetcher.Fetcher, url string, settings *HTMLSettings) (Snapshot, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	resp, err := fetcher.Get(ctx, f, url)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, fmt.Sprintf("카탈로그 페이지(%s) 요청 중 에러가 발생했습니다", url))
	}
	defer resp.Body.Close()

	// Content-Type 헤더를 기반으로 인코딩을 UTF-8로 변환
	utf8Reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ExecutionFailed, fmt.Sprintf("카탈로그 페이지(%s)의 인코딩 변환이 실패하였습니다", url))
	}

	doc, err := goquery.NewDocumentFromReader(utf8Reader)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, fmt.Sprintf("카탈로그 페이지(%s)의 데이터 파싱이 실패하였습니다", url))
	}

	sel := doc.Find(settings.ProductSelector)
	if sel.Length() == 0 {
		// 셀렉터에 해당하는 요소가 없으면 페이지 구조 변경을 조기에 감지할 수 있도록 에러를 반환합니다.
		return nil, apperrors.New(apperrors.ExecutionFailed,
			fmt.Sprintf("카탈로그 페이지(%s)의 문서구조가 변경되었습니다. CSS셀렉터(%s)를 확인하세요", url, settings.ProductSelector))
	}

	snapshot := make(Snapshot, sel.Length())

	sel.Each(func(_ int, node *goquery.Selection) {
		// 상품명 추출
		titleNode := node
		if settings.TitleSelector != "" {
			titleNode = node.Find(settings.TitleSelector)
		}
		title := strutil.NormalizeSpaces(titleNode.Text())
		if title == "" {
			return
		}

		// 상품 페이지 링크에서 Handle 추출
		linkNode := node
		if settings.LinkSelector != "" {
			linkNode = node.Find(settings.LinkSelector)
		} else if !node.Is("a") {
			linkNode = node.Find("a").First()
		}

		var handle string
		if href, exists := linkNode.Attr("href"); exists {
			handle = extractHandle(href)
		}

		snapshot[title] = Product{
			Title:  title,
			Handle: handle,
		}
	})

	return snapshot, nil
}

// extractHandle 상품 페이지 링크에서 마지막 경로 조각(슬러그)을 추출합니다.
func extractHandle(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	// 쿼리 스트링과 프래그먼트 제거
	if idx := strings.IndexAny(href, "?#"); idx != -1 {
		href = href[:idx]
	}

	href = strings.TrimSuffix(href, "/")
	if idx := strings.LastIndex(href, "/"); idx != -1 {
		return href[idx+1:]
	}

	return href
}
