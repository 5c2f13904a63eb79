package catalog

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/darkkaiser/catalog-notifier/internal/pkg/mark"
)

const (
	// allocSizePerVariant 옵션 한 줄을 렌더링할 때 필요한 예상 메모리 크기(Byte)입니다.
	allocSizePerVariant = 120

	// fallbackOptionName 옵션 이름이 비어있을 경우 표시할 대체 텍스트입니다.
	fallbackOptionName = "기본 옵션"
)

// ProductURL 상품 페이지 URL을 생성합니다.
func ProductURL(domain string, p Product) string {
	return fmt.Sprintf("https://%s/products/%s", domain, p.Handle)
}

// CartURL 해당 옵션을 1개 담은 상태로 이동하는 장바구니 URL을 생성합니다.
func CartURL(domain string, v Variant) string {
	return fmt.Sprintf("https://%s/cart/%s:1", domain, v.ID)
}

// RenderAdded 신규 등록 상품의 알림 메시지를 생성합니다.
//
// 상품명과 상품 페이지 링크를 담은 헤더 한 줄 뒤에,
// 옵션별로 옵션 이름과 장바구니 링크를 담은 줄이 이어집니다.
func RenderAdded(domain string, p Product, supportsHTML bool) string {
	var sb strings.Builder
	sb.Grow(len(p.Variants)*allocSizePerVariant + 100)

	sb.WriteString(renderHeader(mark.New, "신규 상품", domain, p, supportsHTML))

	for _, v := range p.Variants {
		option := v.Option1
		if option == "" {
			option = fallbackOptionName
		}

		sb.WriteString("\n      • ")
		if supportsHTML {
			sb.WriteString(fmt.Sprintf("<a href=\"%s\">%s</a>", CartURL(domain, v), template.HTMLEscapeString(option)))
		} else {
			sb.WriteString(fmt.Sprintf("%s - %s", option, CartURL(domain, v)))
		}
		if v.Price != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", v.Price))
		}
	}

	return sb.String()
}

// RenderRemoved 판매 종료 상품의 알림 메시지를 생성합니다.
//
// 상품이 더 이상 존재하지 않아 옵션 정보가 의미를 갖지 않으므로 헤더 한 줄만 렌더링합니다.
func RenderRemoved(domain string, p Product, supportsHTML bool) string {
	return renderHeader(mark.Unavailable, "판매 종료", domain, p, supportsHTML)
}

// renderHeader 상품명과 상품 페이지 링크를 담은 헤더 줄을 생성합니다.
func renderHeader(m mark.Mark, label, domain string, p Product, supportsHTML bool) string {
	if supportsHTML {
		return fmt.Sprintf("%s [%s] <a href=\"%s\"><b>%s</b></a>",
			m, label, ProductURL(domain, p), template.HTMLEscapeString(p.Title))
	}
	return fmt.Sprintf("%s [%s] %s - %s", m, label, p.Title, ProductURL(domain, p))
}
