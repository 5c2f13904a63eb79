package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAdded(t *testing.T) {
	t.Parallel()

	p := Product{
		Title:  "베이직 티셔츠",
		Handle: "basic-tee",
		Variants: []Variant{
			{ID: "1001", Option1: "S", Price: "19000"},
			{ID: "1002", Option1: ""},
		},
	}

	t.Run("일반 텍스트", func(t *testing.T) {
		t.Parallel()

		msg := RenderAdded("shop.example.com", p, false)

		lines := strings.Split(msg, "\n")
		require.Len(t, lines, 3, "헤더 1줄 + 옵션 2줄")

		assert.Contains(t, lines[0], "베이직 티셔츠")
		assert.Contains(t, lines[0], "https://shop.example.com/products/basic-tee")

		assert.Contains(t, lines[1], "S")
		assert.Contains(t, lines[1], "https://shop.example.com/cart/1001:1")
		assert.Contains(t, lines[1], "19000")

		assert.Contains(t, lines[2], fallbackOptionName, "옵션 이름이 없으면 대체 텍스트 사용")
		assert.Contains(t, lines[2], "https://shop.example.com/cart/1002:1")
	})

	t.Run("HTML 형식", func(t *testing.T) {
		t.Parallel()

		msg := RenderAdded("shop.example.com", p, true)

		assert.Contains(t, msg, `<a href="https://shop.example.com/products/basic-tee">`)
		assert.Contains(t, msg, `<a href="https://shop.example.com/cart/1001:1">`)
	})

	t.Run("HTML 이스케이프", func(t *testing.T) {
		t.Parallel()

		risky := Product{Title: "A<b>&B", Handle: "a-b"}
		msg := RenderAdded("shop.example.com", risky, true)

		assert.Contains(t, msg, "A&lt;b&gt;&amp;B")
		assert.NotContains(t, msg, "<b>&B")
	})
}

func TestRenderRemoved(t *testing.T) {
	t.Parallel()

	p := Product{
		Title:    "후드 집업",
		Handle:   "hood-zipup",
		Variants: []Variant{{ID: "2001", Option1: "L"}},
	}

	msg := RenderRemoved("shop.example.com", p, false)

	assert.NotContains(t, msg, "\n", "판매 종료 상품은 헤더 한 줄만 렌더링되어야 함")
	assert.Contains(t, msg, "후드 집업")
	assert.Contains(t, msg, "https://shop.example.com/products/hood-zipup")
	assert.NotContains(t, msg, "cart/2001", "옵션 정보는 렌더링하지 않아야 함")
}

func TestProductAndCartURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://shop.example.com/products/basic-tee",
		ProductURL("shop.example.com", Product{Handle: "basic-tee"}))
	assert.Equal(t, "https://shop.example.com/cart/1001:1",
		CartURL("shop.example.com", Variant{ID: "1001"}))
}
