package language

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_Synonyms(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{token: "ko", want: "ko"},
		{token: "韩语", want: "ko"},
		{token: "한국어", want: "ko"},
		{token: "Korean", want: "ko"},
		{token: "日语", want: "ja"},
		{token: "日本語", want: "ja"},
		{token: "国语", want: "zh"},
		{token: "粤语", want: "cn"},
		{token: "English", want: "en"},
		{token: "Français", want: "fr"},
		{token: "Español", want: "es"},
		{token: "泰语", want: "th"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.token))
		})
	}
}

func TestResolve_CaseInsensitiveForEveryTableEntry(t *testing.T) {
	for code, tokens := range synonyms {
		for _, tok := range tokens {
			assert.Equal(t, code, Resolve(tok), "token %q", tok)
			assert.Equal(t, code, Resolve(strings.ToUpper(tok)), "upper %q", tok)
			assert.True(t, Known(strings.ToUpper(tok)))
		}
	}
}

func TestResolve_UnknownReturnsLowercasedToken(t *testing.T) {
	assert.Equal(t, "de", Resolve("DE"))
	assert.Equal(t, "klingon", Resolve("Klingon"))
	assert.Equal(t, "ko-kr", Resolve("ko-KR"))
	assert.Equal(t, " xx ", Resolve(" XX "))
	assert.Equal(t, " ja ", Resolve(" ja "))
	assert.False(t, Known("Klingon"))
}

func TestResolve_Idempotent(t *testing.T) {
	for _, tok := range []string{"韩语", "KO", "unknown", ""} {
		first := Resolve(tok)
		assert.Equal(t, first, Resolve(tok))
	}
}

func TestBaseCode(t *testing.T) {
	assert.Equal(t, "ko", BaseCode("ko-KR"))
	assert.Equal(t, "zh", BaseCode("zh_CN"))
	assert.Equal(t, "ja", BaseCode("JA"))
	assert.Equal(t, "cn", BaseCode("cn"))
	assert.Equal(t, "", BaseCode(""))
}
