package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTheme(t *testing.T) {
	blob, err := EncodeTheme(Theme{Accent: "#ff0000", Panel: "#fff"})
	require.NoError(t, err)
	assert.Equal(t, `{"accent":"#ff0000","panel":"#fff"}`, blob)

	blob, err = EncodeTheme(Theme{Panel: "dark"})
	require.NoError(t, err)
	assert.Equal(t, `{"panel":"dark"}`, blob)

	blob, err = EncodeTheme(Theme{})
	require.NoError(t, err)
	assert.Empty(t, blob)
}

func TestDecodeTheme_PrefersScalars(t *testing.T) {
	got := DecodeTheme("#111", "#222", `{"accent":"#aaa","panel":"#bbb"}`)
	assert.Equal(t, Theme{Accent: "#111", Panel: "#222"}, got)
}

func TestDecodeTheme_FallsBackPerField(t *testing.T) {
	got := DecodeTheme("", "#222", `{"accent":"#aaa","panel":"#bbb"}`)
	assert.Equal(t, Theme{Accent: "#aaa", Panel: "#222"}, got)
}

func TestDecodeTheme_IgnoresBadBlob(t *testing.T) {
	got := DecodeTheme("#111", "", `{not json`)
	assert.Equal(t, Theme{Accent: "#111"}, got)
}

func TestThemeRoundTrip(t *testing.T) {
	theme := ThemeFromDef(&ThemeDef{Accent: " #123456 ", Panel: "#fafafa"})
	blob, err := EncodeTheme(theme)
	require.NoError(t, err)

	assert.Equal(t, theme, DecodeTheme("", "", blob))
	assert.Equal(t, &ThemeDef{Accent: "#123456", Panel: "#fafafa"}, theme.Def())
}

func TestParseStatus(t *testing.T) {
	assert.True(t, ParseStatus("Published"))
	assert.True(t, ParseStatus("draft|PUBLISHED"))
	assert.True(t, ParseStatus(" archived | published "))
	assert.False(t, ParseStatus("Draft"))
	assert.False(t, ParseStatus(""))
	assert.False(t, ParseStatus("Unpublished"))

	assert.Equal(t, "Published", StatusString(true))
	assert.Equal(t, "Draft", StatusString(false))
}
