package common

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// PrintTable はテーブル形式でデータを表示する
// 列幅は表示幅基準で計算する（日本語ヘッダー対応）
func PrintTable(title string, columns []TableColumn, data [][]string) {
	if title != "" {
		fmt.Printf("\n%s:\n", title)
	}

	// 各列の最大表示幅を計算（ヘッダーとデータの中で最大値を取得）
	colWidths := make([]int, len(columns))
	for i, col := range columns {
		colWidths[i] = runewidth.StringWidth(col.Header)
	}
	for _, row := range data {
		for i, cell := range row {
			if i < len(colWidths) {
				if w := runewidth.StringWidth(cell); w > colWidths[i] {
					colWidths[i] = w
				}
			}
		}
	}

	// ヘッダー表示
	for i, col := range columns {
		fmt.Printf("%s ", padCell(col.Header, colWidths[i]))
	}
	fmt.Println()

	// 区切り線
	for i := range columns {
		fmt.Printf("%s ", strings.Repeat("-", colWidths[i]))
	}
	fmt.Println()

	// データ行
	for _, row := range data {
		for i, cell := range row {
			if i < len(columns) {
				fmt.Printf("%s ", padCell(cell, colWidths[i]))
			}
		}
		fmt.Println()
	}
}

func padCell(s string, width int) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}

// DisplayList は汎用的なリスト表示関数
func DisplayList[T any](
	items []T,
	title string,
	toTableData func([]T) ([]TableColumn, [][]string),
	opts *DisplayOptions,
) error {
	// デフォルトオプション
	if opts == nil {
		opts = &DisplayOptions{}
	}
	if opts.EmptyMessage == "" {
		opts.EmptyMessage = "リソースが見つかりませんでした"
	}

	// フィルタ条件がある場合はタイトルに追加
	if len(opts.FilterMessages) > 0 {
		title = GenerateFilteredTitle(title, opts.FilterMessages...)
	}

	// 空の場合の処理
	if len(items) == 0 {
		fmt.Println(opts.EmptyMessage)
		return nil
	}

	// テーブル表示
	columns, data := toTableData(items)
	PrintTable(title, columns, data)

	// 件数表示
	if opts.ShowCount {
		fmt.Printf("\n合計: %d件\n", len(items))
	}

	return nil
}

// DisplaySimpleList はシンプルなリスト表示（1列のみ）
func DisplaySimpleList[T any](
	items []T,
	title string,
	getName func(T) string,
	opts *DisplayOptions,
) error {
	toTableData := func(items []T) ([]TableColumn, [][]string) {
		columns := []TableColumn{{Header: "名前"}}
		data := make([][]string, len(items))
		for i, item := range items {
			data[i] = []string{getName(item)}
		}
		return columns, data
	}

	return DisplayList(items, title, toTableData, opts)
}
