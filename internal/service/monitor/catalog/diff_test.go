package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotOf(titles ...string) Snapshot {
	s := make(Snapshot, len(titles))
	for _, title := range titles {
		s[title] = Product{Title: title, Handle: title}
	}
	return s
}

func addedTitles(cs ChangeSet) []string {
	titles := make([]string, 0, len(cs.Added))
	for _, p := range cs.Added {
		titles = append(titles, p.Title)
	}
	return titles
}

func removedTitles(cs ChangeSet) []string {
	titles := make([]string, 0, len(cs.Removed))
	for _, p := range cs.Removed {
		titles = append(titles, p.Title)
	}
	return titles
}

func TestDiff(t *testing.T) {
	t.Parallel()

	t.Run("동일 스냅샷 비교는 변경 없음", func(t *testing.T) {
		t.Parallel()

		a := snapshotOf("A", "B", "C")
		cs := Diff(a, a)
		assert.True(t, cs.Empty())
	})

	t.Run("신규/종료 상품 감지", func(t *testing.T) {
		t.Parallel()

		prev := snapshotOf("A", "B")
		current := snapshotOf("A", "C")

		cs := Diff(prev, current)
		assert.Equal(t, []string{"C"}, addedTitles(cs))
		assert.Equal(t, []string{"B"}, removedTitles(cs))
	})

	t.Run("내용 변경은 감지하지 않음", func(t *testing.T) {
		t.Parallel()

		prev := Snapshot{"A": {Title: "A", Handle: "old-handle"}}
		current := Snapshot{"A": {Title: "A", Handle: "new-handle", Variants: []Variant{{ID: "1"}}}}

		cs := Diff(prev, current)
		assert.True(t, cs.Empty(), "상품명이 동일하면 내용 변경은 무시되어야 함")
	})

	t.Run("빈 스냅샷으로의 전환은 전체 종료", func(t *testing.T) {
		t.Parallel()

		prev := snapshotOf("A", "B")

		cs := Diff(prev, Snapshot{})
		assert.Empty(t, cs.Added)
		assert.Equal(t, []string{"A", "B"}, removedTitles(cs))
	})

	t.Run("결과는 상품명 기준으로 정렬", func(t *testing.T) {
		t.Parallel()

		cs := Diff(Snapshot{}, snapshotOf("나", "가", "다"))
		assert.Equal(t, []string{"가", "나", "다"}, addedTitles(cs))
	})

	t.Run("분할 속성: 추가/유지/제거는 겹치지 않음", func(t *testing.T) {
		t.Parallel()

		prev := snapshotOf("A", "B", "C")
		current := snapshotOf("B", "C", "D", "E")

		cs := Diff(prev, current)
		assert.Equal(t, []string{"D", "E"}, addedTitles(cs))
		assert.Equal(t, []string{"A"}, removedTitles(cs))

		// 유지된 키 + 추가된 키 == 새 스냅샷의 키 전체
		reconstructed := make(map[string]struct{})
		for title := range prev {
			if _, removed := map[string]struct{}{"A": {}}[title]; !removed {
				reconstructed[title] = struct{}{}
			}
		}
		for _, p := range cs.Added {
			_, dup := reconstructed[p.Title]
			require.False(t, dup, "추가된 키가 유지된 키와 겹치면 안 됨")
			reconstructed[p.Title] = struct{}{}
		}

		assert.Len(t, reconstructed, len(current))
		for title := range current {
			assert.Contains(t, reconstructed, title)
		}
	})
}
