// Package ordernumber は画面に出す連番の注文番号を決める。
// 同時作成の直列化は呼び出し側（採番ロック）で行う。
package ordernumber

// これ以下の番号は発行しない
const Start = 1000

// 既存番号の最大＋1。空、または最大が Start 未満なら Start を基準にする。
func Next(existing []int) int {
	baseline := Start
	if len(existing) > 0 {
		baseline = existing[0]
		for _, n := range existing[1:] {
			if n > baseline {
				baseline = n
			}
		}
	}
	if baseline < Start {
		baseline = Start
	}
	return baseline + 1
}
