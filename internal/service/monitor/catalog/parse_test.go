package catalog

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/darkkaiser/catalog-notifier/internal/service/monitor/fetcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

const sampleCatalogJSON = `{
  "products": [
    {
      "title": "베이직 티셔츠",
      "handle": "basic-tee",
      "variants": [
        {"id": 1001, "option1": "S", "price": "19000"},
        {"id": 1002, "option1": "M", "price": "19000"}
      ]
    },
    {
      "title": "후드 집업",
      "handle": "hood-zipup",
      "variants": []
    },
    {
      "title": "옵션 누락 상품",
      "handle": "no-variants"
    }
  ]
}`

func TestParseJSON(t *testing.T) {
	t.Parallel()

	t.Run("정상 카탈로그 파싱", func(t *testing.T) {
		t.Parallel()

		snapshot, err := ParseJSON([]byte(sampleCatalogJSON))
		require.NoError(t, err)
		require.Len(t, snapshot, 3)

		p, exists := snapshot["베이직 티셔츠"]
		require.True(t, exists)
		assert.Equal(t, "basic-tee", p.Handle)
		require.Len(t, p.Variants, 2)
		assert.Equal(t, "1001", p.Variants[0].ID)
		assert.Equal(t, "S", p.Variants[0].Option1)
		assert.Equal(t, "19000", p.Variants[0].Price)

		// variants 누락은 옵션 없음으로 처리
		assert.Empty(t, snapshot["옵션 누락 상품"].Variants)
	})

	t.Run("잘못된 JSON 거부", func(t *testing.T) {
		t.Parallel()

		_, err := ParseJSON([]byte(`{"products": [`))
		assert.Error(t, err)
	})

	t.Run("products 항목 누락 거부", func(t *testing.T) {
		t.Parallel()

		_, err := ParseJSON([]byte(`{"items": []}`))
		assert.Error(t, err)
	})

	t.Run("products가 배열이 아니면 거부", func(t *testing.T) {
		t.Parallel()

		_, err := ParseJSON([]byte(`{"products": {"title": "x"}}`))
		assert.Error(t, err)
	})

	t.Run("상품명이 없는 항목은 무시", func(t *testing.T) {
		t.Parallel()

		snapshot, err := ParseJSON([]byte(`{"products": [{"handle": "nameless"}, {"title": "  "}]}`))
		require.NoError(t, err)
		assert.Empty(t, snapshot)
	})

	t.Run("빈 products 배열은 빈 스냅샷", func(t *testing.T) {
		t.Parallel()

		snapshot, err := ParseJSON([]byte(`{"products": []}`))
		require.NoError(t, err)
		assert.Empty(t, snapshot)
	})
}

func TestFetchJSONSnapshot(t *testing.T) {
	t.Parallel()

	newFetcher := func() fetcher.Fetcher {
		return fetcher.NewFromConfig(fetcher.Config{DisableLogging: true})
	}

	t.Run("UTF-8 응답 수집", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			_, _ = w.Write([]byte(sampleCatalogJSON))
		}))
		defer server.Close()

		snapshot, err := FetchJSONSnapshot(context.Background(), newFetcher(), server.URL)
		require.NoError(t, err)
		assert.Len(t, snapshot, 3)
	})

	t.Run("EUC-KR 응답 자동 변환", func(t *testing.T) {
		t.Parallel()

		// 한글 상품명을 EUC-KR로 인코딩한 응답을 생성
		var encoded bytes.Buffer
		writer := transform.NewWriter(&encoded, korean.EUCKR.NewEncoder())
		_, err := writer.Write([]byte(`{"products": [{"title": "한정판 스니커즈", "handle": "limited-sneakers", "variants": [{"id": 77, "option1": "270"}]}]}`))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=euc-kr")
			_, _ = io.Copy(w, bytes.NewReader(encoded.Bytes()))
		}))
		defer server.Close()

		snapshot, err := FetchJSONSnapshot(context.Background(), newFetcher(), server.URL)
		require.NoError(t, err)
		require.Len(t, snapshot, 1)

		p, exists := snapshot["한정판 스니커즈"]
		require.True(t, exists, "EUC-KR 상품명이 UTF-8로 변환되어야 함")
		assert.Equal(t, "limited-sneakers", p.Handle)
		require.Len(t, p.Variants, 1)
		assert.Equal(t, "77", p.Variants[0].ID)
	})

	t.Run("200 이외의 2xx 응답도 성공으로 처리", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusNonAuthoritativeInfo)
			_, _ = w.Write([]byte(`{"products": [{"title": "상품 A", "handle": "product-a", "variants": [{"id": 1, "option1": "S"}]}]}`))
		}))
		defer server.Close()

		snapshot, err := FetchJSONSnapshot(context.Background(), newFetcher(), server.URL)
		require.NoError(t, err, "203 응답의 카탈로그도 수집되어야 함")
		require.Len(t, snapshot, 1)
		assert.Contains(t, snapshot, "상품 A")
	})

	t.Run("서버 에러 시 에러 반환", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := FetchJSONSnapshot(context.Background(), newFetcher(), server.URL)
		assert.Error(t, err)
	})
}

func TestFetchHTMLSnapshot(t *testing.T) {
	t.Parallel()

	newFetcher := func() fetcher.Fetcher {
		return fetcher.NewFromConfig(fetcher.Config{DisableLogging: true})
	}

	const listPage = `<html><body>
      <ul class="goods">
        <li class="item"><a href="/products/basic-tee?ref=list"><span class="name">베이직 티셔츠</span></a></li>
        <li class="item"><a href="/products/hood-zipup"><span class="name">후드 집업</span></a></li>
      </ul>
    </body></html>`

	t.Run("상품 목록 추출", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(listPage))
		}))
		defer server.Close()

		settings := &HTMLSettings{
			ProductSelector: "ul.goods > li.item",
			TitleSelector:   "span.name",
		}

		snapshot, err := FetchHTMLSnapshot(context.Background(), newFetcher(), server.URL, settings)
		require.NoError(t, err)
		require.Len(t, snapshot, 2)

		assert.Equal(t, "basic-tee", snapshot["베이직 티셔츠"].Handle, "쿼리 스트링은 Handle에서 제거되어야 함")
		assert.Equal(t, "hood-zipup", snapshot["후드 집업"].Handle)
	})

	t.Run("셀렉터 불일치 시 구조 변경 에러", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html><body><p>empty</p></body></html>`))
		}))
		defer server.Close()

		settings := &HTMLSettings{ProductSelector: "ul.goods > li.item"}

		_, err := FetchHTMLSnapshot(context.Background(), newFetcher(), server.URL, settings)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "문서구조")
	})

	t.Run("필수 셀렉터 누락 거부", func(t *testing.T) {
		t.Parallel()

		settings := &HTMLSettings{}
		_, err := FetchHTMLSnapshot(context.Background(), newFetcher(), "http://localhost", settings)
		assert.Error(t, err)
	})
}

func TestExtractHandle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		href     string
		expected string
	}{
		{"/products/basic-tee", "basic-tee"},
		{"/products/basic-tee/", "basic-tee"},
		{"/products/basic-tee?variant=1#top", "basic-tee"},
		{"https://shop.example.com/products/hood-zipup", "hood-zipup"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, extractHandle(tt.href), tt.href)
	}
}
