package clitext_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aberic/george/internal/clitext"
)

func TestTableWriteToAlignsColumns(t *testing.T) {
	table := clitext.NewTable("NAME", "VIEWS")
	table.Row("shop", "3")
	table.Row("inventory", "12")

	var buf strings.Builder
	require.NoError(t, table.WriteTo(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "NAME"))

	headerNameEnd := strings.Index(lines[0], "VIEWS")
	row1NameEnd := strings.Index(lines[1], "3")
	row2NameEnd := strings.Index(lines[2], "12")
	require.Equal(t, headerNameEnd, row1NameEnd)
	require.Equal(t, headerNameEnd, row2NameEnd)
}

func TestTableWriteToWithNoRowsStillRendersHeader(t *testing.T) {
	table := clitext.NewTable("KEY", "VALUE")

	var buf strings.Builder
	require.NoError(t, table.WriteTo(&buf))
	require.Equal(t, "KEY  VALUE\n", buf.String())
}

func TestTableWriteToWithNoHeaderRendersOnlyRows(t *testing.T) {
	table := clitext.NewTable()
	table.Row("a", "1")

	var buf strings.Builder
	require.NoError(t, table.WriteTo(&buf))
	require.Equal(t, "a  1\n", buf.String())
}
