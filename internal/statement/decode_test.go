package statement

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"kakeibo/kakeibo-csv/internal/models"
	"kakeibo/kakeibo-csv/internal/parsererror"
)

const rakutenCSV = "\ufeff利用日,利用店名・商品名,利用者,支払方法,利用金額\n" +
	"2025/10/01,セブン-イレブン,本人,1回払い,\"1,200\"\n" +
	",,,,\n" +
	"2025/10/02,ＡＭＡＺＯＮ．ＣＯ．ＪＰ,本人,1回払い,3980\n"

func cardProfile() models.FormatProfile {
	return models.FormatProfile{
		Name:              "card",
		Encoding:          "utf-8-sig",
		DateFormat:        "%Y/%m/%d",
		DateColumn:        "利用日",
		AmountColumn:      "利用金額",
		DescriptionColumn: "利用店名・商品名",
	}
}

func TestDecode_UTF8WithBOM(t *testing.T) {
	st, err := Decode([]byte(rakutenCSV), cardProfile())
	require.NoError(t, err)

	assert.Equal(t, "utf-8", st.Encoding)
	assert.Equal(t, "利用日", st.Header[0], "BOM must be stripped from the first header")
	require.Len(t, st.Rows, 2, "blank rows are dropped")
	assert.Equal(t, 2, st.Rows[0].Line)
	assert.Equal(t, "1,200", st.Rows[0].Get("利用金額"))
	assert.Equal(t, 4, st.Rows[1].Line)
}

func TestDecode_ShiftJIS(t *testing.T) {
	content := "ご利用日,ご利用店名,ご利用金額\n2024/02/15,ローソン,540\n"
	encoded, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(content))
	require.NoError(t, err)

	for _, label := range []string{"shift_jis", "cp932", "Windows-31J"} {
		t.Run(label, func(t *testing.T) {
			p := cardProfile()
			p.Encoding = label
			st, err := Decode(encoded, p)
			require.NoError(t, err)
			assert.Equal(t, []string{"ご利用日", "ご利用店名", "ご利用金額"}, st.Header)
			require.Len(t, st.Rows, 1)
			assert.Equal(t, "ローソン", st.Rows[0].Get("ご利用店名"))
		})
	}
}

func TestDecode_WrongEncodingIsFatal(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte("利用日,利用金額\n2024/02/15,540\n"))
	require.NoError(t, err)

	_, err = Decode(encoded, cardProfile())
	require.Error(t, err)
	assert.True(t, parsererror.IsFatal(err))
	assert.True(t, errors.Is(err, parsererror.ErrUndecodable))
}

func TestDecode_ReplacementCharacterInValidUTF8(t *testing.T) {
	data := []byte("利用日,利用店名・商品名,利用金額\n2025/10/01,ショップ\ufffd名,540\n")

	st, err := Decode(data, cardProfile())
	require.NoError(t, err)
	require.Len(t, st.Rows, 1)
	assert.Equal(t, "ショップ\ufffd名", st.Rows[0].Get("利用店名・商品名"))
}

func TestDecode_InvalidUTF8ReportsLine(t *testing.T) {
	data := []byte("利用日,利用店名・商品名,利用金額\n2025/10/01,ショップ\ufffd名,540\n2025/10/02,\xff\xfe,100\n")

	_, err := Decode(data, cardProfile())
	require.Error(t, err)
	assert.True(t, errors.Is(err, parsererror.ErrUndecodable))
	assert.Contains(t, err.Error(), "line 3")
}

func TestDecode_UnsupportedEncoding(t *testing.T) {
	p := cardProfile()
	p.Encoding = "klingon-8"
	_, err := Decode([]byte("a,b\n"), p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, parsererror.ErrUnsupportedEncoding))
}

func TestDecode_SkipRows(t *testing.T) {
	content := "カード明細\n期間,2024/02\n日付,内容,金額\n2024/02/01,電車,200\n"
	p := cardProfile()
	p.SkipRows = 2

	st, err := Decode([]byte(content), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"日付", "内容", "金額"}, st.Header)
	require.Len(t, st.Rows, 1)
	assert.Equal(t, 4, st.Rows[0].Line)
}

func TestDecode_EmptyAfterSkip(t *testing.T) {
	p := cardProfile()
	p.SkipRows = 5
	_, err := Decode([]byte("a,b\n1,2\n"), p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, parsererror.ErrEmptyFile))

	_, err = Decode([]byte("\ufeff"), cardProfile())
	assert.True(t, errors.Is(err, parsererror.ErrEmptyFile))
}

func TestDecode_ShortRecordsArePadded(t *testing.T) {
	st, err := Decode([]byte("a,b,c\n1\n"), cardProfile())
	require.NoError(t, err)
	require.Len(t, st.Rows, 1)
	assert.Equal(t, "", st.Rows[0].Get("c"))
}

func TestValidateColumns(t *testing.T) {
	header := []string{"利用日", "利用店名・商品名", "利用金額"}
	assert.NoError(t, ValidateColumns(header, cardProfile().RequiredColumns()...))

	err := ValidateColumns(header, "利用日", "金額")
	require.Error(t, err)
	assert.True(t, parsererror.IsFatal(err))
	assert.True(t, errors.Is(err, parsererror.ErrMissingColumn))
	assert.Contains(t, err.Error(), `"金額"`)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "enavi202510.csv")
	require.NoError(t, os.WriteFile(path, []byte(rakutenCSV), 0600))

	st, err := ReadFile(path, cardProfile())
	require.NoError(t, err)
	assert.Equal(t, path, st.Path)
	assert.Len(t, st.Rows, 2)

	_, err = ReadFile(filepath.Join(dir, "missing.csv"), cardProfile())
	require.Error(t, err)
	var fatal *parsererror.FatalImportError
	require.True(t, errors.As(err, &fatal))
	assert.True(t, errors.Is(err, parsererror.ErrUnreadableFile))
	assert.Contains(t, fatal.FilePath, "missing.csv")
}
