package docx

import "regexp"

// 占位符形如 $fieldName$，只允许字母和数字
var tokenPattern = regexp.MustCompile(`\$[a-zA-Z0-9]+\$`)

// ExtractTokens 返回文档中出现的全部占位符（含定界符），
// 按首次出现顺序去重。段落文本先跨 run 拼接再匹配，
// 因此被编辑器拆散到多个 run 的占位符也能被发现。
// 没有占位符时返回空切片，不算错误。
func (d *Document) ExtractTokens() []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, p := range d.paragraphs {
		for _, match := range tokenPattern.FindAllString(p.Text(), -1) {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			tokens = append(tokens, match)
		}
	}
	return tokens
}

// TokensIn 提取一段文本中的占位符，不去重
func TokensIn(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}
