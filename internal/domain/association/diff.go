// 多対多の関連を、送られた選択リストに合わせるための差分
package association

import "sort"

// 追加（選択にあって現在にない）と削除（現在にあって選択にない）を返す。
// 重複や送信順は無視し、どちらも昇順。
func Diff(current, selected []int64) (toAdd, toRemove []int64) {
	cur := toSet(current)
	sel := toSet(selected)

	toAdd = []int64{}
	for id := range sel {
		if _, ok := cur[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}

	toRemove = []int64{}
	for id := range cur {
		if _, ok := sel[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}

	sort.Slice(toAdd, func(i, j int) bool { return toAdd[i] < toAdd[j] })
	sort.Slice(toRemove, func(i, j int) bool { return toRemove[i] < toRemove[j] })
	return toAdd, toRemove
}

// Unique は重複を除いた昇順のIDを返す
func Unique(ids []int64) []int64 {
	set := toSet(ids)
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
