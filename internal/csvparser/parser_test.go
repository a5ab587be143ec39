package csvparser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("header and records", func(t *testing.T) {
		records := Parse("fecha,franja,producto\n2024-03-01,desayuno,café\n2024-03-02,comida,té\n")

		require.Len(t, records, 2)
		assert.Equal(t, 2, records[0].Line)
		assert.Equal(t, 3, records[1].Line)
		assert.Equal(t, []string{"fecha", "franja", "producto"}, records[0].Headers)
		assert.Equal(t, map[string]string{
			"fecha":    "2024-03-01",
			"franja":   "desayuno",
			"producto": "café",
		}, records[0].Fields)
	})

	t.Run("headers and values are trimmed", func(t *testing.T) {
		records := Parse("  fecha , producto \n 2024-03-01 ,  café  ")

		require.Len(t, records, 1)
		assert.Equal(t, []string{"fecha", "producto"}, records[0].Headers)
		assert.Equal(t, "café", records[0].Fields["producto"])
		assert.Equal(t, "2024-03-01", records[0].Fields["fecha"])
	})

	t.Run("windows line endings", func(t *testing.T) {
		records := Parse("a,b\r\n1,2\r\n")

		require.Len(t, records, 1)
		assert.Equal(t, []string{"a", "b"}, records[0].Headers)
		assert.Equal(t, "2", records[0].Fields["b"])
	})

	t.Run("short line leaves trailing fields absent", func(t *testing.T) {
		records := Parse("a,b,c\n1")

		require.Len(t, records, 1)
		v, ok := records[0].Get("a")
		assert.True(t, ok)
		assert.Equal(t, "1", v)

		_, ok = records[0].Get("b")
		assert.False(t, ok)
		_, ok = records[0].Get("c")
		assert.False(t, ok)

		assert.Equal(t, []string{"1", "", ""}, records[0].Values())
	})

	t.Run("extra values are ignored", func(t *testing.T) {
		records := Parse("a,b\n1,2,3,4")

		require.Len(t, records, 1)
		assert.Len(t, records[0].Fields, 2)
		assert.Equal(t, []string{"1", "2"}, records[0].Values())
	})

	t.Run("comma inside a value is a separator", func(t *testing.T) {
		records := Parse("producto,unidades\nPan, tomate,2")

		require.Len(t, records, 1)
		assert.Equal(t, "Pan", records[0].Fields["producto"])
		assert.Equal(t, "tomate", records[0].Fields["unidades"])
	})

	t.Run("blank input", func(t *testing.T) {
		for _, input := range []string{"", "   ", "\n\n"} {
			records := Parse(input)
			assert.NotNil(t, records)
			assert.Empty(t, records)
		}
	})

	t.Run("header only", func(t *testing.T) {
		assert.Empty(t, Parse("a,b,c\n"))
	})
}

func TestFromRows(t *testing.T) {
	assert.Empty(t, FromRows(nil))

	records := FromRows([][]string{
		{" fecha", "producto "},
		{"2024-03-01", " café "},
		{},
	})

	require.Len(t, records, 2)
	assert.Equal(t, "café", records[0].Fields["producto"])
	assert.Equal(t, 3, records[1].Line)
	assert.Empty(t, records[1].Fields)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("strips byte order mark", func(t *testing.T) {
		path := filepath.Join(dir, "bom.csv")
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("fecha,producto\n2024-03-01,café")...)
		require.NoError(t, os.WriteFile(path, data, 0644))

		records, err := ReadFile(path)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "fecha", records[0].Headers[0])
		assert.Equal(t, "2024-03-01", records[0].Fields["fecha"])
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(dir, "missing.csv"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestPreview(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, Preview(items, 2))
	assert.Equal(t, items, Preview(items, 10))
	assert.Empty(t, Preview(items, 0))
	assert.Empty(t, Preview(items, -1))
	assert.Empty(t, Preview([]int{}, 3))
}
