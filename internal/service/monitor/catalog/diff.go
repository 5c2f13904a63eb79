package catalog

import (
	"sort"
)

// ChangeSet 두 스냅샷 간의 집합 비교 결과입니다.
//
// Added는 새 스냅샷에만 존재하는 상품, Removed는 이전 스냅샷에만 존재하는 상품이며,
// 각각 상품명 기준으로 정렬되어 있어 결과 순서가 항상 결정적입니다.
// 양쪽에 모두 존재하는 상품은 내용(가격, 옵션 등)이 변경되었더라도 비교 대상이 아닙니다.
type ChangeSet struct {
	Added   []Product
	Removed []Product
}

// Empty 변경 사항이 없는지 여부를 반환합니다.
func (c ChangeSet) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0
}

// Diff 이전 스냅샷과 새 스냅샷을 비교하여 신규 등록/판매 종료 상품을 찾아냅니다.
//
// 순수 함수로 동작하며 입력 스냅샷을 변경하지 않습니다.
// 상품명(Title)의 존재 여부만으로 판단하므로, 동일한 상품명의 내용 변경은 감지되지 않습니다.
func Diff(prev, current Snapshot) ChangeSet {
	var cs ChangeSet

	for title, product := range current {
		if _, exists := prev[title]; !exists {
			cs.Added = append(cs.Added, product)
		}
	}

	for title, product := range prev {
		if _, exists := current[title]; !exists {
			cs.Removed = append(cs.Removed, product)
		}
	}

	// 결과의 재현성을 위해 상품명 기준으로 정렬
	sort.Slice(cs.Added, func(i, j int) bool { return cs.Added[i].Title < cs.Added[j].Title })
	sort.Slice(cs.Removed, func(i, j int) bool { return cs.Removed[i].Title < cs.Removed[j].Title })

	return cs
}
