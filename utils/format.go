package utils

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NotAvailable 没有数据时展示的占位
const NotAvailable = "N/A"

// LocalePrinter 按语言区域创建格式化器，无法识别时回退到英文
func LocalePrinter(locale string) *message.Printer {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// FormatCurrency 金额格式化：前缀 + 按区域分组的两位小数
func FormatCurrency(amount decimal.Decimal, prefix, locale string) string {
	value := amount.Round(2).InexactFloat64()
	return prefix + LocalePrinter(locale).Sprintf("%v", number.Decimal(value, number.Scale(2)))
}

// FormatRounded 保留 places 位小数
func FormatRounded(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}

// FormatCount 整数计数
func FormatCount(n int) string {
	return strconv.Itoa(n)
}
