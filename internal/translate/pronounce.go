package translate

import "strings"

// pronunciationGuide carries curated pronunciations for the vocabulary
// that the phonetic generator gets wrong.
var pronunciationGuide = map[string]string{
	"pharaoh":         "FAIR-oh",
	"hypostyle hall":  "HY-po-style hall",
	"pylon":           "PY-lon",
	"obelisk":         "OB-eh-lisk",
	"sphinx":          "sfinks",
	"sanctuary":       "SANK-choo-air-ee",
	"colossus":        "ko-LOSS-us",
	"mastaba":         "MAS-ta-ba",
	"serdab":          "SIR-dab",
	"sarcophagus":     "sar-KOF-a-gus",
	"cartouche":       "kar-TOOSH",
	"hieroglyph":      "HY-ro-glif",
	"stele":           "STEE-lee",
	"necropolis":      "neh-KROP-oh-lis",
	"colonnade":       "kol-oh-NAYD",
	"peristyle":       "PAIR-ih-style",
	"naos":            "NAY-oss",
	"pronaos":         "pro-NAY-oss",
	"causeway":        "KAWZ-way",
	"mausoleum":       "maw-so-LEE-um",
	"mihrab":          "MIH-rahb",
	"minaret":         "min-ah-RET",
	"catacomb":        "KAT-a-kohm",
	"basilica":        "ba-SIL-ih-ka",
	"vizier":          "vih-ZEER",
	"ramesses":        "RAM-eh-seez",
	"ramses":          "RAM-seez",
	"amenhotep":       "ah-men-HOH-tep",
	"thutmose":        "TOOT-moh-seh",
	"tutankhamun":     "toot-ahn-KAH-mun",
	"khufu":           "KOO-foo",
	"khafre":          "KAF-ray",
	"menkaure":        "men-KOW-ray",
	"hatshepsut":      "hat-SHEP-soot",
	"akhenaten":       "ah-keh-NAH-ten",
	"nefertiti":       "neh-fer-TEE-tee",
	"djoser":          "JOH-ser",
	"sneferu":         "SNEF-eh-roo",
	"ptolemy":         "TOL-eh-mee",
	"cleopatra":       "klee-oh-PAT-ra",
	"amun":            "AH-mun",
	"amun-ra":         "AH-mun RAH",
	"horus":           "HOHR-us",
	"osiris":          "oh-SY-ris",
	"isis":            "EYE-sis",
	"hathor":          "HAH-thor",
	"anubis":          "ah-NOO-bis",
	"thoth":           "thohth",
	"ptah":            "p-TAH",
	"sobek":           "SOH-bek",
	"sekhmet":         "SEK-met",
	"khnum":           "k-NOOM",
	"khonsu":          "KHON-soo",
	"karnak":          "KAR-nak",
	"luxor":           "LUK-sor",
	"giza":            "GEE-za",
	"saqqara":         "sah-KAH-ra",
	"dahshur":         "dah-SHOOR",
	"abu simbel":      "AH-boo SIM-bel",
	"philae":          "FY-lee",
	"deir el-bahari":  "dayr el-ba-HAH-ree",
	"medinet habu":    "meh-DEE-net HAH-boo",
	"khan el-khalili": "khan el-kha-LEE-lee",
}

// digraphs rewrites common English letter clusters into plainer
// phonetics before syllabification.
var digraphs = []struct{ from, to string }{
	{"ph", "f"},
	{"ough", "off"},
	{"ou", "oo"},
	{"gh", "g"},
	{"ck", "k"},
	{"qu", "kw"},
	{"tion", "shun"},
	{"ae", "ay"},
}

// Pronounce returns a phonetic rendering of an English term: curated
// when the guide knows it, generated otherwise.
func Pronounce(term string) string {
	key := strings.ToLower(strings.TrimSpace(term))
	if p, ok := pronunciationGuide[key]; ok {
		return p
	}

	words := strings.Fields(key)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if p, ok := pronunciationGuide[w]; ok {
			out = append(out, p)
			continue
		}
		out = append(out, generatePronunciation(w))
	}
	return strings.Join(out, " ")
}

// generatePronunciation approximates syllable breaks: rewrite digraphs,
// then hyphenate after each vowel-consonant boundary.
func generatePronunciation(word string) string {
	for _, d := range digraphs {
		word = strings.ReplaceAll(word, d.from, d.to)
	}

	var b strings.Builder
	runes := []rune(word)
	for i, r := range runes {
		b.WriteRune(r)
		if i == len(runes)-1 {
			break
		}
		if isVowel(r) && !isVowel(runes[i+1]) && i+2 < len(runes) && isVowel(runes[i+2]) {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
