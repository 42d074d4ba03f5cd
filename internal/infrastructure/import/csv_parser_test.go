package csvimport

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, src RowSource) ([]*Row, error) {
	t.Helper()
	var rows []*Row
	for {
		row, err := src.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

func TestNewCSVParser(t *testing.T) {
	t.Run("Valid UTF-8 CSV", func(t *testing.T) {
		csv := "name,age,city\nAlice,30,New York\nBob,25,Boston"
		parser, err := NewCSVParser(strings.NewReader(csv))

		require.NoError(t, err)
		require.NotNil(t, parser)
		assert.Equal(t, EncodingUTF8, parser.Encoding())
	})

	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		csv := "\xEF\xBB\xBFName,Email\n#1001,a@example.com"
		parser, err := NewCSVParser(strings.NewReader(csv))
		require.NoError(t, err)

		rows, err := drain(t, parser)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Name", parser.Headers()[0])
		assert.Equal(t, "#1001", rows[0].Get("Name"))
	})

	t.Run("Windows-1252 input is decoded", func(t *testing.T) {
		// 0xE9 is é in Windows-1252 and invalid as a lone UTF-8 byte
		csv := "Name,Billing City\n#1,Montr\xE9al"
		parser, err := NewCSVParser(strings.NewReader(csv))
		require.NoError(t, err)
		assert.Equal(t, EncodingWindows1252, parser.Encoding())

		rows, err := drain(t, parser)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Montréal", rows[0].Get("Billing City"))
	})
}

func TestValidUTF8Prefix(t *testing.T) {
	euro := []byte("price €")
	assert.True(t, validUTF8Prefix(euro, true))
	// a rune cut at the sniff boundary is tolerated for partial reads only
	cut := euro[:len(euro)-1]
	assert.True(t, validUTF8Prefix(cut, false))
	assert.False(t, validUTF8Prefix(cut, true))
	assert.False(t, validUTF8Prefix([]byte("a\xE9b"), false))
}

func TestNext(t *testing.T) {
	t.Run("Rows are numbered in file order", func(t *testing.T) {
		csv := "Name,Email\n#1,a@x.io\n#2,b@x.io\n#3,c@x.io\n"
		parser, err := NewCSVParser(strings.NewReader(csv))
		require.NoError(t, err)

		rows, err := drain(t, parser)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		for i, row := range rows {
			assert.Equal(t, i+1, row.Index)
		}
		assert.Equal(t, 2, rows[0].LineNumber)
		assert.Equal(t, 3, parser.TotalRows())
	})

	t.Run("Empty file yields zero rows", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader(""))
		require.NoError(t, err)

		rows, err := drain(t, parser)
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.Equal(t, 0, parser.TotalRows())
	})

	t.Run("Header only yields zero rows", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("Name,Email\n"))
		require.NoError(t, err)

		rows, err := drain(t, parser)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("Blank and all-empty lines are skipped", func(t *testing.T) {
		csv := "Name,Email\n#1,a@x.io\n\n,\n#2,b@x.io\n"
		parser, err := NewCSVParser(strings.NewReader(csv))
		require.NoError(t, err)

		rows, err := drain(t, parser)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 2, rows[1].Index)
		assert.Equal(t, "#2", rows[1].Get("Name"))
	})

	t.Run("Unterminated quote is fatal", func(t *testing.T) {
		csv := "Name,Notes\n#1,ok\n#2,\"never closed\n#3,x\n"
		parser, err := NewCSVParser(strings.NewReader(csv))
		require.NoError(t, err)

		rows, err := drain(t, parser)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedCSV)
		assert.Len(t, rows, 1)

		// the sequence is finished after a fatal error
		_, err = parser.Next()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("Short rows yield empty values", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("Name,Email,Phone\n#1,a@x.io\n"))
		require.NoError(t, err)

		rows, err := drain(t, parser)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "", rows[0].Get("Phone"))
		assert.Equal(t, "n/a", rows[0].GetOrDefault("Phone", "n/a"))
	})

	t.Run("Duplicate headers keep the first column", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("Name,Name\nfirst,second\n"))
		require.NoError(t, err)

		rows, err := drain(t, parser)
		require.NoError(t, err)
		assert.Equal(t, "first", rows[0].Get("Name"))
	})
}

func TestParseHeader(t *testing.T) {
	t.Run("Header with spaces trimmed", func(t *testing.T) {
		csv := "  code  ,  name  ,  price  \n001,Widget,10.00"
		parser, _ := NewCSVParser(strings.NewReader(csv))

		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, []string{"code", "name", "price"}, parser.Headers())
	})

	t.Run("Header lookup", func(t *testing.T) {
		parser, _ := NewCSVParser(strings.NewReader("Name,Email\n"))

		require.NoError(t, parser.ParseHeader())
		assert.True(t, parser.HasHeader("Email"))
		assert.False(t, parser.HasHeader("Total"))
	})

	t.Run("Empty input has no header", func(t *testing.T) {
		parser, _ := NewCSVParser(strings.NewReader(""))
		assert.ErrorIs(t, parser.ParseHeader(), ErrMissingHeader)
	})
}

func TestQuotedAndMultilineFields(t *testing.T) {
	csv := "Name,Notes,Total\n#1,\"gift, wrap\",\"$1,200.00\"\n#2,\"line one\nline two\",5\n"
	parser, err := NewCSVParser(strings.NewReader(csv))
	require.NoError(t, err)

	rows, err := drain(t, parser)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "gift, wrap", rows[0].Get("Notes"))
	assert.Equal(t, "$1,200.00", rows[0].Get("Total"))
	assert.Equal(t, "line one\nline two", rows[1].Get("Notes"))
	assert.Equal(t, 2, rows[1].Index)
}
