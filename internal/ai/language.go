// language.go - Target language enumeration and the names substituted for $target

package ai

import (
	"fmt"
	"strings"
)

// LangEnum is the host's language enumeration
type LangEnum int

const (
	LangAuto LangEnum = iota
	LangChineseSimplified
	LangChineseTraditional
	LangCantonese
	LangEnglish
	LangJapanese
	LangKorean
	LangFrench
	LangSpanish
	LangRussian
	LangGerman
	LangItalian
	LangTurkish
	LangPortuguesePortugal
	LangPortugueseBrazil
	LangVietnamese
	LangIndonesian
	LangThai
	LangMalay
	LangArabic
	LangHindi
	LangMongolianCyrillic
	LangMongolianTraditional
	LangKhmer
	LangNorwegianBokmal
	LangNorwegianNynorsk
	LangPersian
	LangSwedish
	LangPolish
	LangDutch
	LangUkrainian
	LangCzech
	LangDanish
	LangFinnish
	LangGreek
	LangHebrew
	LangHungarian
)

// AutoDetectPhrase replaces $target when no language is given
const AutoDetectPhrase = "Requires you to identify automatically"

type languageInfo struct {
	name        string // enum name used by the host
	displayName string // English name sent to the model
}

var languageTable = map[LangEnum]languageInfo{
	LangAuto:                 {"Auto", AutoDetectPhrase},
	LangChineseSimplified:    {"ChineseSimplified", "Simplified Chinese"},
	LangChineseTraditional:   {"ChineseTraditional", "Traditional Chinese"},
	LangCantonese:            {"Cantonese", "Cantonese"},
	LangEnglish:              {"English", "English"},
	LangJapanese:             {"Japanese", "Japanese"},
	LangKorean:               {"Korean", "Korean"},
	LangFrench:               {"French", "French"},
	LangSpanish:              {"Spanish", "Spanish"},
	LangRussian:              {"Russian", "Russian"},
	LangGerman:               {"German", "German"},
	LangItalian:              {"Italian", "Italian"},
	LangTurkish:              {"Turkish", "Turkish"},
	LangPortuguesePortugal:   {"PortuguesePortugal", "Portuguese"},
	LangPortugueseBrazil:     {"PortugueseBrazil", "Portuguese"},
	LangVietnamese:           {"Vietnamese", "Vietnamese"},
	LangIndonesian:           {"Indonesian", "Indonesian"},
	LangThai:                 {"Thai", "Thai"},
	LangMalay:                {"Malay", "Malay"},
	LangArabic:               {"Arabic", "Arabic"},
	LangHindi:                {"Hindi", "Hindi"},
	LangMongolianCyrillic:    {"MongolianCyrillic", "Mongolian"},
	LangMongolianTraditional: {"MongolianTraditional", "Mongolian"},
	LangKhmer:                {"Khmer", "Central Khmer"},
	LangNorwegianBokmal:      {"NorwegianBokmal", "Norwegian Bokmål"},
	LangNorwegianNynorsk:     {"NorwegianNynorsk", "Norwegian Nynorsk"},
	LangPersian:              {"Persian", "Persian"},
	LangSwedish:              {"Swedish", "Swedish"},
	LangPolish:               {"Polish", "Polish"},
	LangDutch:                {"Dutch", "Dutch"},
	LangUkrainian:            {"Ukrainian", "Ukrainian"},
	LangCzech:                {"Czech", "Czech"},
	LangDanish:               {"Danish", "Danish"},
	LangFinnish:              {"Finnish", "Finnish"},
	LangGreek:                {"Greek", "Greek"},
	LangHebrew:               {"Hebrew", "Hebrew"},
	LangHungarian:            {"Hungarian", "Hungarian"},
}

var languagesByName = func() map[string]LangEnum {
	m := make(map[string]LangEnum, len(languageTable))
	for lang, info := range languageTable {
		m[strings.ToLower(info.name)] = lang
	}
	return m
}()

// DisplayName returns the English name substituted for $target.
// Unknown values fall back to the auto-detect phrase.
func (l LangEnum) DisplayName() string {
	if info, ok := languageTable[l]; ok {
		return info.displayName
	}
	return AutoDetectPhrase
}

func (l LangEnum) String() string {
	if info, ok := languageTable[l]; ok {
		return info.name
	}
	return fmt.Sprintf("LangEnum(%d)", int(l))
}

func (l LangEnum) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *LangEnum) UnmarshalText(text []byte) error {
	parsed, err := ParseLanguage(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLanguage resolves an enum name case-insensitively; empty means Auto
func ParseLanguage(name string) (LangEnum, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return LangAuto, nil
	}
	if lang, ok := languagesByName[strings.ToLower(name)]; ok {
		return lang, nil
	}
	return LangAuto, fmt.Errorf("unsupported language: %s", name)
}

// SupportedLanguages lists every language in enum order
func SupportedLanguages() []LangEnum {
	langs := make([]LangEnum, 0, len(languageTable))
	for l := LangAuto; l <= LangHungarian; l++ {
		langs = append(langs, l)
	}
	return langs
}
