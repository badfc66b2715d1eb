package docx

import (
	"sort"
	"strings"
)

// Fill 在每个 run 内替换占位符。一个 run 含多个不同占位符时
// 一次遍历全部替换；映射中不存在的占位符原样保留。
// 按字面值排序后依次替换，值里恰好含占位符时输出也是确定的。
// 返回发生替换的 run 数量。
func (d *Document) Fill(values map[string]string) int {
	tokens := make([]string, 0, len(values))
	for token := range values {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	replaced := 0
	for _, p := range d.paragraphs {
		for _, r := range p.Runs {
			if !r.hasText {
				continue
			}
			text := r.Text
			for _, token := range tokens {
				if strings.Contains(text, token) {
					text = strings.ReplaceAll(text, token, values[token])
				}
			}
			if text != r.Text {
				r.SetText(text)
				replaced++
			}
		}
	}
	return replaced
}

// SetText 破坏性地替换 run 文本：先捕获样式描述，
// 替换后重放，序列化时按该描述重建 run。
func (r *Run) SetText(text string) {
	style := r.Style
	r.Text = text
	r.Style = style
	r.dirty = true
}
