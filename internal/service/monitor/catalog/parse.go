package catalog

import (
	"context"
	"fmt"
	"io"

	apperrors "github.com/darkkaiser/catalog-notifier/internal/pkg/errors"
	"github.com/darkkaiser/catalog-notifier/internal/service/monitor/fetcher"
	"github.com/darkkaiser/catalog-notifier/pkg/strutil"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html/charset"
)

// ParseJSON JSON 형식의 카탈로그 문서를 파싱하여 스냅샷을 생성합니다.
//
// 문서는 `{"products": [{title, handle, variants: [{id, option1, price}]}]}` 형태이며,
// 상품명(title)을 키로 사용합니다. 상품명이 비어있는 항목은 식별이 불가능하므로 건너뛰고,
// variants가 누락된 상품은 옵션이 없는 것으로 처리합니다.
func ParseJSON(data []byte) (Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, apperrors.New(apperrors.ParsingFailed, "카탈로그 응답이 유효한 JSON 형식이 아닙니다")
	}

	products := gjson.GetBytes(data, "products")
	if !products.Exists() {
		return nil, apperrors.New(apperrors.ParsingFailed, "카탈로그 응답에 products 항목이 존재하지 않습니다")
	}
	if !products.IsArray() {
		return nil, apperrors.New(apperrors.ParsingFailed, "카탈로그 응답의 products 항목이 배열이 아닙니다")
	}

	snapshot := make(Snapshot, len(products.Array()))

	products.ForEach(func(_, p gjson.Result) bool {
		title := strutil.NormalizeSpaces(p.Get("title").String())
		if title == "" {
			// 상품명이 없는 항목은 키 생성이 불가능하므로 무시
			return true
		}

		product := Product{
			Title:  title,
			Handle: p.Get("handle").String(),
		}

		variants := p.Get("variants")
		if variants.IsArray() {
			product.Variants = make([]Variant, 0, len(variants.Array()))
			variants.ForEach(func(_, v gjson.Result) bool {
				product.Variants = append(product.Variants, Variant{
					ID:      v.Get("id").String(),
					Option1: v.Get("option1").String(),
					Price:   v.Get("price").String(),
				})
				return true
			})
		}

		snapshot[product.Title] = product

		return true
	})

	return snapshot, nil
}

// FetchJSONSnapshot 지정된 URL에서 JSON 카탈로그를 수집하여 스냅샷을 생성합니다.
//
// 응답 헤더의 Content-Type을 분석하여, 비 UTF-8 인코딩(예: EUC-KR) 응답도
// 자동으로 UTF-8로 변환하여 처리합니다.
func FetchJSONSnapshot(ctx context.Context, f fetcher.Fetcher, url string) (Snapshot, error) {
	resp, err := fetcher.Get(ctx, f, url)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, fmt.Sprintf("카탈로그(%s) 요청 중 에러가 발생했습니다", url))
	}
	defer resp.Body.Close()

	// Content-Type 헤더를 기반으로 인코딩을 UTF-8로 변환
	utf8Reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ExecutionFailed, fmt.Sprintf("카탈로그(%s) 응답의 인코딩 변환이 실패하였습니다", url))
	}

	data, err := io.ReadAll(utf8Reader)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ExecutionFailed, fmt.Sprintf("카탈로그(%s) 응답 읽기가 실패하였습니다", url))
	}

	return ParseJSON(data)
}
