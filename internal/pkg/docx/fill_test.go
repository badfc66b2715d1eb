package docx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillReplacesAndPreservesStyle(t *testing.T) {
	dir := t.TempDir()
	body := `<w:p><w:r><w:rPr><w:b/><w:i/><w:sz w:val="28"/></w:rPr><w:t>Dear $partyName$,</w:t></w:r></w:p>`
	src := writeDocx(t, dir, "src.docx", wrapBody(body))

	doc, err := Open(src)
	require.NoError(t, err)

	replaced := doc.Fill(map[string]string{"$partyName$": "Acme"})
	assert.Equal(t, 1, replaced)

	out := filepath.Join(dir, "out.docx")
	require.NoError(t, doc.Save(out))

	result, err := Open(out)
	require.NoError(t, err)

	run := result.Paragraphs()[0].Runs[0]
	assert.Equal(t, "Dear Acme,", run.Text)
	assert.True(t, run.Style.Bold)
	assert.True(t, run.Style.Italic)
	assert.Equal(t, "28", run.Style.Size)
}

func TestFillLeavesUnmappedTokens(t *testing.T) {
	dir := t.TempDir()
	body := `<w:p><w:r><w:t>$partyName$ on $date$</w:t></w:r></w:p>`
	src := writeDocx(t, dir, "src.docx", wrapBody(body))

	doc, err := Open(src)
	require.NoError(t, err)
	doc.Fill(map[string]string{"$partyName$": "Acme"})

	out := filepath.Join(dir, "out.docx")
	require.NoError(t, doc.Save(out))

	result, err := Open(out)
	require.NoError(t, err)
	assert.Equal(t, "Acme on $date$", result.Paragraphs()[0].Text())
}

func TestFillMultipleTokensInOneRun(t *testing.T) {
	dir := t.TempDir()
	body := `<w:p><w:r><w:t>$a$-$b$-$a$</w:t></w:r></w:p>`
	src := writeDocx(t, dir, "src.docx", wrapBody(body))

	doc, err := Open(src)
	require.NoError(t, err)
	replaced := doc.Fill(map[string]string{"$a$": "1", "$b$": "2"})
	assert.Equal(t, 1, replaced)

	out := filepath.Join(dir, "out.docx")
	require.NoError(t, doc.Save(out))

	result, err := Open(out)
	require.NoError(t, err)
	assert.Equal(t, "1-2-1", result.Paragraphs()[0].Text())
}

func TestFillTableCells(t *testing.T) {
	dir := t.TempDir()
	body := `<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Amount: $amount$</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`
	src := writeDocx(t, dir, "src.docx", wrapBody(body))

	doc, err := Open(src)
	require.NoError(t, err)
	doc.Fill(map[string]string{"$amount$": "100"})

	out := filepath.Join(dir, "out.docx")
	require.NoError(t, doc.Save(out))

	result, err := Open(out)
	require.NoError(t, err)
	assert.Equal(t, "Amount: 100", result.Paragraphs()[0].Text())
	assert.True(t, result.Paragraphs()[0].InTable)
}

func TestFillEscapesReplacementText(t *testing.T) {
	dir := t.TempDir()
	body := `<w:p><w:r><w:t>$v$</w:t></w:r></w:p>`
	src := writeDocx(t, dir, "src.docx", wrapBody(body))

	doc, err := Open(src)
	require.NoError(t, err)
	doc.Fill(map[string]string{"$v$": `a < b & "c"`})

	out := filepath.Join(dir, "out.docx")
	require.NoError(t, doc.Save(out))

	result, err := Open(out)
	require.NoError(t, err)
	assert.Equal(t, `a < b & "c"`, result.Paragraphs()[0].Text())
}

func TestFillRoundTripDeterminism(t *testing.T) {
	dir := t.TempDir()
	body := `<w:p><w:r><w:t>$partyName$ signs on $date$</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>$amount$</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`
	src := writeDocx(t, dir, "src.docx", wrapBody(body))
	values := map[string]string{"$partyName$": "Acme", "$date$": "2024-01-01", "$amount$": "100"}

	texts := func(path string) []string {
		doc, err := Open(path)
		require.NoError(t, err)
		var out []string
		for _, p := range doc.Paragraphs() {
			out = append(out, p.Text())
		}
		return out
	}

	for i, out := range []string{filepath.Join(dir, "out1.docx"), filepath.Join(dir, "out2.docx")} {
		doc, err := Open(src)
		require.NoError(t, err, "pass %d", i)
		doc.Fill(values)
		require.NoError(t, doc.Save(out), "pass %d", i)
	}

	assert.Equal(t, texts(filepath.Join(dir, "out1.docx")), texts(filepath.Join(dir, "out2.docx")))
}

// 替换值本身形如占位符时，排序后的替换顺序保证结果唯一
func TestFillDeterministicWhenValueLooksLikeToken(t *testing.T) {
	dir := t.TempDir()
	body := `<w:p><w:r><w:t>$alpha$ / $beta$</w:t></w:r></w:p>`
	src := writeDocx(t, dir, "src.docx", wrapBody(body))
	values := map[string]string{"$alpha$": "$beta$", "$beta$": "X"}

	for i := 0; i < 5; i++ {
		doc, err := Open(src)
		require.NoError(t, err, "pass %d", i)
		doc.Fill(values)

		out := filepath.Join(dir, "out.docx")
		require.NoError(t, doc.Save(out), "pass %d", i)

		result, err := Open(out)
		require.NoError(t, err, "pass %d", i)
		assert.Equal(t, "X / X", result.Paragraphs()[0].Text(), "pass %d", i)
	}
}

func TestFillDoesNotTouchSource(t *testing.T) {
	dir := t.TempDir()
	body := `<w:p><w:r><w:t>$partyName$</w:t></w:r></w:p>`
	src := writeDocx(t, dir, "src.docx", wrapBody(body))

	before, err := os.ReadFile(src)
	require.NoError(t, err)

	doc, err := Open(src)
	require.NoError(t, err)
	doc.Fill(map[string]string{"$partyName$": "Acme"})
	require.NoError(t, doc.Save(filepath.Join(dir, "out.docx")))

	after, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
