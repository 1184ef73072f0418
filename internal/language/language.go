package language

import (
	"strings"

	"golang.org/x/text/language"
)

// synonyms lists, per TMDB original_language code, every token a caller may
// use for it. TMDB uses "cn" for Cantonese, separate from Mandarin "zh".
var synonyms = map[string][]string{
	"ko": {"ko", "kor", "korean", "韩语", "韩文", "韩国", "韩剧", "韓國語", "한국어"},
	"ja": {"ja", "jpn", "japanese", "日语", "日文", "日本", "日剧", "日本語", "にほんご"},
	"zh": {"zh", "zho", "chi", "chinese", "mandarin", "中文", "汉语", "国语", "華語", "华语", "国产", "普通话", "国剧"},
	"cn": {"cn", "cantonese", "粤语", "粵語", "港剧"},
	"en": {"en", "eng", "english", "英语", "英文", "美剧", "英剧"},
	"fr": {"fr", "fra", "fre", "french", "法语", "法文", "法国", "français", "francais"},
	"es": {"es", "spa", "spanish", "西班牙语", "西语", "español", "espanol"},
	"th": {"th", "tha", "thai", "泰语", "泰文", "泰国", "泰剧", "ภาษาไทย", "ไทย"},
}

var byToken map[string]string

func init() {
	byToken = make(map[string]string, len(synonyms)*8)
	for code, tokens := range synonyms {
		for _, tok := range tokens {
			byToken[strings.ToLower(tok)] = code
		}
	}
}

func normalize(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// Resolve maps a language code or synonym to a TMDB original_language code.
// Unknown tokens are returned lower-cased and otherwise verbatim so they still
// take part in matching. Callers trim input at the boundary.
func Resolve(token string) string {
	tok := strings.ToLower(token)
	if code, ok := byToken[tok]; ok {
		return code
	}
	return tok
}

// Known reports whether token is present in the synonym table.
func Known(token string) bool {
	_, ok := byToken[strings.ToLower(token)]
	return ok
}

// BaseCode reduces a BCP 47 tag such as "ko-KR" to its base code "ko".
// Tags that do not parse are returned lower-cased.
func BaseCode(tag string) string {
	tag = normalize(tag)
	if tag == "" || !strings.ContainsAny(tag, "-_") {
		return tag
	}
	parsed, err := language.Raw.Parse(tag)
	if err != nil {
		return tag
	}
	base, _ := parsed.Base()
	return base.String()
}
