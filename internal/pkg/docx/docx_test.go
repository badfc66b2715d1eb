package docx

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/contractgen/backend/internal/apperrors"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

// writeDocx 组装一个最小的 docx 文件供测试使用
func writeDocx(t *testing.T, dir, name, documentXML string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create docx error: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	entries := map[string]string{
		"[Content_Types].xml": contentTypesXML,
		"_rels/.rels":         relsXML,
		"word/document.xml":   documentXML,
	}
	for _, entry := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml"} {
		w, err := zw.Create(entry)
		if err != nil {
			t.Fatalf("create zip entry error: %v", err)
		}
		if _, err := w.Write([]byte(entries[entry])); err != nil {
			t.Fatalf("write zip entry error: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip error: %v", err)
	}
	return path
}

func wrapBody(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`
}

func TestOpenInvalidContainer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.docx")
	if err := os.WriteFile(path, []byte("this is not a zip archive"), 0644); err != nil {
		t.Fatalf("write file error: %v", err)
	}

	_, err := Open(path)
	var readErr *apperrors.DocumentReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected DocumentReadError, got %v", err)
	}
}

func TestOpenMissingDocumentPart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create file error: %v", err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("[Content_Types].xml")
	w.Write([]byte(contentTypesXML))
	zw.Close()
	f.Close()

	_, err = Open(path)
	var readErr *apperrors.DocumentReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected DocumentReadError, got %v", err)
	}
}

func TestOpenParsesParagraphsAndTables(t *testing.T) {
	dir := t.TempDir()
	body := `<w:p><w:r><w:t>first</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`<w:p><w:r><w:t>last</w:t></w:r></w:p>`
	path := writeDocx(t, dir, "doc.docx", wrapBody(body))

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("open error: %v", err)
	}

	paragraphs := doc.Paragraphs()
	if len(paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(paragraphs))
	}
	if paragraphs[0].InTable || !paragraphs[1].InTable || paragraphs[2].InTable {
		t.Fatalf("unexpected table flags: %v %v %v",
			paragraphs[0].InTable, paragraphs[1].InTable, paragraphs[2].InTable)
	}
	if paragraphs[1].Text() != "cell" {
		t.Fatalf("unexpected cell text: %q", paragraphs[1].Text())
	}
}

func TestOpenCapturesRunStyle(t *testing.T) {
	dir := t.TempDir()
	body := `<w:p><w:r><w:rPr><w:rFonts w:ascii="Arial" w:hAnsi="Arial"/><w:b/><w:i/><w:color w:val="FF0000"/><w:sz w:val="28"/><w:u w:val="single"/></w:rPr><w:t>styled</w:t></w:r></w:p>`
	path := writeDocx(t, dir, "styled.docx", wrapBody(body))

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("open error: %v", err)
	}

	run := doc.Paragraphs()[0].Runs[0]
	want := RunStyle{
		FontFamily: "Arial",
		Size:       "28",
		Bold:       true,
		Italic:     true,
		Color:      "FF0000",
		Underline:  "single",
	}
	if run.Style != want {
		t.Fatalf("unexpected style: %+v", run.Style)
	}
}

func TestBoldFalseValueIsNotBold(t *testing.T) {
	dir := t.TempDir()
	body := `<w:p><w:r><w:rPr><w:b w:val="false"/></w:rPr><w:t>plain</w:t></w:r></w:p>`
	path := writeDocx(t, dir, "plain.docx", wrapBody(body))

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("open error: %v", err)
	}
	if doc.Paragraphs()[0].Runs[0].Style.Bold {
		t.Fatalf("expected bold=false for w:val=false")
	}
}
