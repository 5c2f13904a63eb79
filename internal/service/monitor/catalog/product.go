// Package catalog 상품 카탈로그의 수집, 비교, 알림 메시지 렌더링을 담당합니다.
//
// 카탈로그는 상품명(Title)을 고유 키로 하는 스냅샷으로 표현되며,
// 이전 스냅샷과의 집합 비교를 통해 신규 등록/판매 종료 상품을 감지합니다.
package catalog

import (
	"sort"
)

// Variant 상품의 개별 옵션(사이즈, 색상 등) 단위를 나타냅니다.
type Variant struct {
	// ID 장바구니 링크 생성에 사용되는 옵션 고유 식별자
	ID string `json:"id"`

	// Option1 옵션의 표시 이름 (주로 사이즈 라벨)
	Option1 string `json:"option1"`

	// Price 옵션의 가격 (소스에 따라 없을 수 있음)
	Price string `json:"price"`
}

// Product 카탈로그의 단일 상품 정보를 나타냅니다.
type Product struct {
	// Title 소스 내에서 상품을 식별하는 고유 키
	Title string `json:"title"`

	// Handle 상품 페이지 URL 생성에 사용되는 슬러그
	Handle string `json:"handle"`

	// Variants 상품의 옵션 목록 (비어있을 수 있음)
	Variants []Variant `json:"variants"`
}

// Snapshot 특정 시점에 하나의 소스에서 관측된 전체 상품 집합입니다.
// 상품명(Title)을 키로 사용하며, 키의 유일성이 보장됩니다.
type Snapshot map[string]Product

// Titles 스냅샷에 포함된 상품명들을 정렬된 순서로 반환합니다.
func (s Snapshot) Titles() []string {
	titles := make([]string, 0, len(s))
	for title := range s {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}
