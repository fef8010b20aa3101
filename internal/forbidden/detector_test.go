package forbidden

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDetect_AnyCase — фраза ловится в любом регистре и в любом месте текста.
func TestDetect_AnyCase(t *testing.T) {
	t.Parallel()

	d := New(DefaultPhrases, Block, "")

	bodies := []string{
		"Читайте также: link",
		"читайте ТАКЖЕ: ссылка",
		"первая строка\nпо данным УКРИНФОРМ",
		"по данным укринформ.",
	}
	for _, b := range bodies {
		require.True(t, d.Detect(b), b)
	}

	require.False(t, d.Detect("Обычная новость"))
	require.False(t, d.Detect(""))
	// Без двоеточия — не фраза из стоп-листа.
	require.False(t, d.Detect("читайте также"))
}

// TestDetect_ConfigurableList — стоп-лист задаётся конфигом, пустые фразы отбрасываются.
func TestDetect_ConfigurableList(t *testing.T) {
	t.Parallel()

	d := New([]string{"  ", "ТАСС"}, Block, "")
	require.True(t, d.Detect("по сообщению тасс"))
	require.False(t, d.Detect("Укринформ"))

	empty := New(nil, Block, "")
	require.False(t, empty.Detect("Укринформ"))
}

func TestMatches(t *testing.T) {
	t.Parallel()

	d := New(DefaultPhrases, Block, "")
	require.Equal(t, []string{"Укринформ", "Читайте также:"},
		d.Matches("укринформ пишет. читайте также: x"))
	require.Empty(t, d.Matches("чисто"))
}

// TestAnnotate_WrapsOnlyFlaggedLines — помечаются только строки с фразами.
func TestAnnotate_WrapsOnlyFlaggedLines(t *testing.T) {
	t.Parallel()

	d := New(DefaultPhrases, Annotate, "")
	got := d.Annotate("Hello\nЧитайте также: link\nWorld")

	lines := strings.Split(got, "\n")
	require.Equal(t, "Hello", lines[0])
	require.Equal(t, "!!! Читайте также: link !!!", lines[1])
	require.Equal(t, "World", lines[2])

	custom := New(DefaultPhrases, Annotate, "##")
	require.Equal(t, "## Укринформ ##", custom.Annotate("Укринформ"))
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	p, err := ParsePolicy("")
	require.NoError(t, err)
	require.Equal(t, Block, p)

	p, err = ParsePolicy(" Annotate ")
	require.NoError(t, err)
	require.Equal(t, Annotate, p)
	require.Equal(t, "annotate", p.String())

	_, err = ParsePolicy("warn")
	require.Error(t, err)
}
