package docx

import (
	"bytes"
	"encoding/xml"
)

// RunStyle run 级样式描述，独立于底层 XML 表示，
// 覆盖替换流程需要保留的六个属性。
type RunStyle struct {
	FontFamily string // w:rFonts w:ascii
	Size       string // w:sz w:val，半磅
	Bold       bool
	Italic     bool
	Color      string // w:color w:val
	Underline  string // w:u w:val
}

// IsZero 没有任何显式样式
func (s RunStyle) IsZero() bool {
	return s == RunStyle{}
}

// marshal 按 OOXML 子元素顺序序列化为 <w:rPr> 片段
func (s RunStyle) marshal() []byte {
	if s.IsZero() {
		return nil
	}
	var buf bytes.Buffer
	buf.WriteString("<w:rPr>")
	if s.FontFamily != "" {
		buf.WriteString(`<w:rFonts w:ascii="`)
		xml.EscapeText(&buf, []byte(s.FontFamily))
		buf.WriteString(`" w:hAnsi="`)
		xml.EscapeText(&buf, []byte(s.FontFamily))
		buf.WriteString(`"/>`)
	}
	if s.Bold {
		buf.WriteString("<w:b/>")
	}
	if s.Italic {
		buf.WriteString("<w:i/>")
	}
	if s.Color != "" {
		buf.WriteString(`<w:color w:val="`)
		xml.EscapeText(&buf, []byte(s.Color))
		buf.WriteString(`"/>`)
	}
	if s.Size != "" {
		buf.WriteString(`<w:sz w:val="`)
		xml.EscapeText(&buf, []byte(s.Size))
		buf.WriteString(`"/><w:szCs w:val="`)
		xml.EscapeText(&buf, []byte(s.Size))
		buf.WriteString(`"/>`)
	}
	if s.Underline != "" {
		buf.WriteString(`<w:u w:val="`)
		xml.EscapeText(&buf, []byte(s.Underline))
		buf.WriteString(`"/>`)
	}
	buf.WriteString("</w:rPr>")
	return buf.Bytes()
}

// renderRun 以捕获的样式描述重建整个 <w:r> 片段
func renderRun(r *Run) []byte {
	var buf bytes.Buffer
	buf.WriteString("<w:r>")
	buf.Write(r.Style.marshal())
	buf.WriteString(`<w:t xml:space="preserve">`)
	xml.EscapeText(&buf, []byte(r.Text))
	buf.WriteString("</w:t></w:r>")
	return buf.Bytes()
}
