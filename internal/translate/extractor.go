package translate

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/unlockegypt/heritage-researcher/internal/cache"
	"github.com/unlockegypt/heritage-researcher/internal/model"
	"github.com/unlockegypt/heritage-researcher/internal/ratelimit"
	"github.com/unlockegypt/heritage-researcher/internal/research"
)

// Entry is the cached resolution for one English term.
type Entry struct {
	Arabic        string
	Pronunciation string
}

// termPattern is one curated category of vocabulary to look for, scanned
// in priority order: rulers and deities make more distinctive vocabulary
// than generic place features.
type termPattern struct {
	category string
	pattern  *regexp.Regexp
}

var termPatterns = []termPattern{
	{"pharaoh", regexp.MustCompile(
		`(?i)\b(Ramesses|Ramses|Amenhotep|Thutmose|Tutankhamun|Khufu|Khafre|` +
			`Menkaure|Hatshepsut|Akhenaten|Seti|Sneferu|Djoser|Nefertiti|` +
			`Cleopatra|Ptolemy)\b`)},
	{"deity", regexp.MustCompile(
		`(?i)\b(Amun-Ra|Amun|Ra|Horus|Isis|Osiris|Hathor|Thoth|Ptah|Anubis|` +
			`Sobek|Sekhmet|Bastet|Mut|Aten|Min|Khnum|Khonsu|Nefertum|Neith|` +
			`Montu|Seth|Nephthys|Maat|Nut|Geb|Shu|Tefnut)\b`)},
	{"architecture", regexp.MustCompile(
		`(?i)\b(hypostyle hall|pylon|sanctuary|obelisk|colossus|sphinx|` +
			`mastaba|serdab|pyramid|mortuary temple|valley temple|` +
			`causeway|sacred lake|colonnade|peristyle|naos|pronaos|` +
			`sarcophagus|cartouche|hieroglyph|stele|relief|fresco|` +
			`mummy|burial chamber|false door|offering table)\b`)},
	{"title", regexp.MustCompile(
		`(?i)\b(pharaoh|king|queen|vizier|priestess|priest|scribe|` +
			`high priest|prince|princess)\b`)},
	{"place_feature", regexp.MustCompile(
		`(?i)\b(temple|tomb|chapel|shrine|necropolis|cemetery|` +
			`fortress|citadel|mosque|minaret|dome|mihrab|` +
			`church|monastery|basilica|catacomb)\b`)},
}

// Extractor turns site descriptions into translated vocabulary lists.
type Extractor struct {
	client     Client
	cache      *cache.Store[Entry]
	limiter    *ratelimit.Limiter
	retry      *research.RetryPolicy
	sourceLang string
	targetLang string
	maxTerms   int
	logger     *zap.Logger
}

// NewExtractor builds an Extractor. The term cache is shared across all
// workers so a term translated for one site is reused by every later one.
func NewExtractor(
	client Client,
	store *cache.Store[Entry],
	limiter *ratelimit.Limiter,
	retry *research.RetryPolicy,
	sourceLang, targetLang string,
	maxTerms int,
	logger *zap.Logger,
) *Extractor {
	if maxTerms <= 0 {
		maxTerms = 8
	}
	return &Extractor{
		client:     client,
		cache:      store,
		limiter:    limiter,
		retry:      retry,
		sourceLang: sourceLang,
		targetLang: targetLang,
		maxTerms:   maxTerms,
		logger:     logger,
	}
}

// ExtractTerms scans the description for curated vocabulary and returns
// translated phrases in category-priority order, deduplicated by
// normalized term text. A single term's translation failure drops that
// term only.
func (e *Extractor) ExtractTerms(ctx context.Context, siteName, description string) []model.ArabicPhrase {
	terms := e.collectTerms(siteName + " " + description)

	// The site name itself leads the vocabulary when room remains.
	if siteName != "" && len(terms) < e.maxTerms && !containsTerm(terms, siteName) {
		terms = append([]string{siteName}, terms...)
	}
	if len(terms) > e.maxTerms {
		terms = terms[:e.maxTerms]
	}

	phrases := make([]model.ArabicPhrase, 0, len(terms))
	for _, term := range terms {
		entry, ok := e.resolve(ctx, term)
		if !ok {
			continue
		}
		phrases = append(phrases, model.ArabicPhrase{
			English:       displayTerm(term),
			Arabic:        entry.Arabic,
			Pronunciation: entry.Pronunciation,
		})
	}
	return phrases
}

// collectTerms walks the pattern tables in priority order, keeping first
// appearance within a category and deduplicating case-insensitively.
func (e *Extractor) collectTerms(text string) []string {
	var terms []string
	seen := make(map[string]struct{})
	for _, tp := range termPatterns {
		for _, m := range tp.pattern.FindAllString(text, -1) {
			term := strings.TrimSpace(m)
			key := cache.NormalizeKey(term)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			terms = append(terms, term)
			if len(terms) >= e.maxTerms {
				return terms
			}
		}
	}
	return terms
}

// resolve returns the cached entry for a term, translating on miss. The
// cache guarantees the translation provider is invoked at most once per
// term per run.
func (e *Extractor) resolve(ctx context.Context, term string) (Entry, bool) {
	if entry, ok := e.cache.Get(term); ok {
		return entry, true
	}

	var arabic string
	err := e.retry.Do(ctx, func() error {
		if werr := e.limiter.Wait(ctx, ratelimit.ServiceTranslation); werr != nil {
			return werr
		}
		var callErr error
		arabic, callErr = e.client.Translate(ctx, term, e.sourceLang, e.targetLang)
		return callErr
	})
	if err != nil {
		e.logger.Warn("translation failed, omitting term",
			zap.String("term", term),
			zap.Error(err),
		)
		return Entry{}, false
	}

	entry := Entry{Arabic: arabic, Pronunciation: Pronounce(term)}
	e.cache.Put(term, entry)
	return entry, true
}

func containsTerm(terms []string, term string) bool {
	key := cache.NormalizeKey(term)
	for _, t := range terms {
		if cache.NormalizeKey(t) == key {
			return true
		}
	}
	return false
}

func displayTerm(term string) string {
	if len(term) <= 3 {
		return term
	}
	words := strings.Fields(term)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
