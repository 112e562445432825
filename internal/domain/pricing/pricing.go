// Package pricing は注文金額（小計・税・合計）を明細から計算する。
// 値は保存せず、読むたびに明細から導出する。
package pricing

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"orderapp/internal/domain/model"
)

// 消費税率 8.25%（実行時に変更しない）
var taxRate = decimal.RequireFromString("0.0825")

func TaxRate() decimal.Decimal {
	return taxRate
}

// 表示時の小数桁
const CurrencyPlaces = 2

// 金額列 numeric(12,2) に入る最大値
var maxAmount = decimal.RequireFromString("9999999999.99")

func MaxAmount() decimal.Decimal {
	return maxAmount
}

// 最大数量を掛けても金額列に収まる単価の上限
func MaxUnitPrice() decimal.Decimal {
	return maxAmount.Div(decimal.NewFromInt(model.MaxLineQuantity)).Truncate(CurrencyPlaces)
}

// 金額列に保存できるか
func FitsAmount(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(maxAmount)
}

// 画面に渡す丸め済みの金額
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// JSONでは常に小数2桁の文字列（"25.00"）で出す
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subtotal string `json:"subtotal"`
		Tax      string `json:"tax"`
		Total    string `json:"total"`
	}{
		Subtotal: FormatCurrency(s.Subtotal),
		Tax:      FormatCurrency(s.Tax),
		Total:    FormatCurrency(s.Total),
	})
}

// ExtendedPrice は数量×単価
func ExtendedPrice(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// 明細の保存済み ExtendedPrice の合計。明細なしは 0。
func Subtotal(lines []model.OrderLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.ExtendedPrice)
	}
	return sum
}

// Tax は丸める前の値を返す
func Tax(lines []model.OrderLine) decimal.Decimal {
	return Subtotal(lines).Mul(taxRate)
}

func Total(lines []model.OrderLine) decimal.Decimal {
	sub := Subtotal(lines)
	return sub.Add(sub.Mul(taxRate))
}

// Summarize は表示用に2桁へ丸める。丸めはここだけで行う。
func Summarize(lines []model.OrderLine) Summary {
	sub := Subtotal(lines)
	tax := sub.Mul(taxRate)
	return Summary{
		Subtotal: RoundCurrency(sub),
		Tax:      RoundCurrency(tax),
		Total:    RoundCurrency(sub.Add(tax)),
	}
}

// 通貨表示と同じ丸め（0.5 は0から遠い方へ）
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// 表示用の文字列。末尾の0も残す（0.8 → "0.80"）。
func FormatCurrency(d decimal.Decimal) string {
	return d.StringFixed(CurrencyPlaces)
}
