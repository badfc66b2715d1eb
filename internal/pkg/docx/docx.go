// Package docx 实现对 OOXML 文档的最小化读写：
// 解析 word/document.xml 中的段落与表格单元格文本，
// 支持占位符提取与保留样式的文本替换。
// 未被改写的部分按原始字节保留，只有文本被替换过的 run 会按
// 捕获的样式描述重建。
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/contractgen/backend/internal/apperrors"
)

const documentPart = "word/document.xml"

// Run 一段连续的同样式文本
type Run struct {
	Text  string
	Style RunStyle

	start   int64 // <w:r> 在 document.xml 中的起始偏移
	end     int64 // </w:r> 之后的偏移
	hasText bool
	dirty   bool
}

// Paragraph 一个段落，表格单元格内的段落 InTable 为 true
type Paragraph struct {
	Runs    []*Run
	InTable bool
}

// Text 段落内所有 run 文本拼接
func (p *Paragraph) Text() string {
	var buf bytes.Buffer
	for _, r := range p.Runs {
		buf.WriteString(r.Text)
	}
	return buf.String()
}

type Document struct {
	names      []string // zip 条目顺序
	parts      map[string][]byte
	docXML     []byte
	paragraphs []*Paragraph
}

// Open 读取一个 docx 文件。容器损坏、缺少 document.xml 或
// XML 无法解析时返回 DocumentReadError。
func Open(path string) (*Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &apperrors.DocumentReadError{Path: path, Err: err}
	}
	defer zr.Close()

	doc := &Document{parts: make(map[string][]byte)}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, &apperrors.DocumentReadError{Path: path, Err: err}
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, &apperrors.DocumentReadError{Path: path, Err: err}
		}
		doc.names = append(doc.names, f.Name)
		doc.parts[f.Name] = data
	}

	docXML, ok := doc.parts[documentPart]
	if !ok {
		return nil, &apperrors.DocumentReadError{Path: path, Err: fmt.Errorf("missing %s", documentPart)}
	}
	doc.docXML = docXML

	paragraphs, err := parseBody(docXML)
	if err != nil {
		return nil, &apperrors.DocumentReadError{Path: path, Err: err}
	}
	doc.paragraphs = paragraphs
	return doc, nil
}

func (d *Document) Paragraphs() []*Paragraph {
	return d.paragraphs
}

// parseBody 流式扫描 document.xml，记录每个 run 的字节区间、
// 文本内容与样式属性。偏移量用于后续原位改写。
func parseBody(docXML []byte) ([]*Paragraph, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))

	var paragraphs []*Paragraph
	var current *Paragraph
	var run *Run
	tblDepth := 0
	inText := false

	for {
		prevOffset := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "p":
				current = &Paragraph{InTable: tblDepth > 0}
				paragraphs = append(paragraphs, current)
			case "r":
				// w:pPr 中的 rPr 不在 run 内，由 run==nil 保护
				if current != nil && run == nil {
					run = &Run{start: prevOffset}
				}
			case "t":
				if run != nil {
					inText = true
					run.hasText = true
				}
			case "rFonts":
				if run != nil {
					run.Style.FontFamily = attrValue(t, "ascii")
				}
			case "sz":
				if run != nil {
					run.Style.Size = attrValue(t, "val")
				}
			case "b":
				if run != nil {
					run.Style.Bold = flagValue(t)
				}
			case "i":
				if run != nil {
					run.Style.Italic = flagValue(t)
				}
			case "color":
				if run != nil {
					run.Style.Color = attrValue(t, "val")
				}
			case "u":
				if run != nil {
					run.Style.Underline = attrValue(t, "val")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tblDepth > 0 {
					tblDepth--
				}
			case "p":
				current = nil
			case "r":
				if run != nil {
					run.end = dec.InputOffset()
					if current != nil {
						current.Runs = append(current.Runs, run)
					}
					run = nil
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if run != nil && inText {
				run.Text += string(t)
			}
		}
	}

	return paragraphs, nil
}

func attrValue(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// flagValue 布尔型 run 属性：元素出现即为真，除非 val 显式关闭
func flagValue(el xml.StartElement) bool {
	v := attrValue(el, "val")
	switch v {
	case "false", "0", "none":
		return false
	}
	return true
}

// Save 将文档写到新路径，原文件不做任何修改。
func (d *Document) Save(outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, name := range d.names {
		data := d.parts[name]
		if name == documentPart {
			data = d.renderDocumentXML()
		}
		w, err := zw.Create(name)
		if err != nil {
			zw.Close()
			return fmt.Errorf("create zip entry %s: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			zw.Close()
			return fmt.Errorf("write zip entry %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

// renderDocumentXML 把被改写的 run 原位替换为按样式描述重建的片段，
// 其余字节原样保留。
func (d *Document) renderDocumentXML() []byte {
	var dirty []*Run
	for _, p := range d.paragraphs {
		for _, r := range p.Runs {
			if r.dirty {
				dirty = append(dirty, r)
			}
		}
	}
	if len(dirty) == 0 {
		return d.docXML
	}

	var buf bytes.Buffer
	last := int64(0)
	for _, r := range dirty {
		buf.Write(d.docXML[last:r.start])
		buf.Write(renderRun(r))
		last = r.end
	}
	buf.Write(d.docXML[last:])
	return buf.Bytes()
}
