package encyclopedia

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/unlockegypt/heritage-researcher/internal/match"
	"github.com/unlockegypt/heritage-researcher/internal/ratelimit"
	"github.com/unlockegypt/heritage-researcher/internal/research"
)

// Finding bundles everything mined from a matched article.
type Finding struct {
	Title                 string
	URL                   string
	ArabicTitle           string
	ArabicSummary         string
	ArabicURL             string
	HistoricalPeriod      string
	UniqueFacts           []string
	KeyFigures            []string
	ArchitecturalFeatures []string
}

// Config bounds the extraction work per article.
type Config struct {
	MatchThreshold     float64
	MinParagraphLength int
	MaxFacts           int
	PrimaryLang        string
	SisterLang         string
}

// Researcher finds the best-matching article for a site and extracts
// facts, key figures, and architectural features from it.
type Researcher struct {
	client  Client
	matcher *match.Matcher
	limiter *ratelimit.Limiter
	retry   *research.RetryPolicy
	cfg     Config
	logger  *zap.Logger
}

// NewResearcher builds a Researcher.
func NewResearcher(
	client Client,
	limiter *ratelimit.Limiter,
	retry *research.RetryPolicy,
	cfg Config,
	logger *zap.Logger,
) *Researcher {
	if cfg.PrimaryLang == "" {
		cfg.PrimaryLang = "en"
	}
	if cfg.SisterLang == "" {
		cfg.SisterLang = "ar"
	}
	if cfg.MaxFacts <= 0 {
		cfg.MaxFacts = 5
	}
	return &Researcher{
		client:  client,
		matcher: match.New(cfg.MatchThreshold),
		limiter: limiter,
		retry:   retry,
		cfg:     cfg,
		logger:  logger,
	}
}

var (
	pharaohPattern = regexp.MustCompile(
		`(?i)\b(Ramesses|Ramses|Amenhotep|Thutmose|Tutankhamun|Khufu|Khafre|` +
			`Menkaure|Hatshepsut|Akhenaten|Seti|Ptolemy|Cleopatra|Nefertiti|` +
			`Sneferu|Djoser|Cheops|Zoser)\s*[IVX]*\b`)
	deityPattern = regexp.MustCompile(
		`(?i)\b(Amun|Ra|Horus|Isis|Osiris|Hathor|Thoth|Ptah|Anubis|Sobek|` +
			`Sekhmet|Bastet|Mut|Aten|Min|Khnum|Khonsu|Nefertum|Neith)\b`)
	architecturalPattern = regexp.MustCompile(
		`(?i)\b(hypostyle hall|pylon|sanctuary|obelisk|colossus|sphinx|` +
			`mastaba|serdab|pyramid|mortuary temple|valley temple|` +
			`causeway|sacred lake|colonnade|peristyle|naos|pronaos)\b`)
	periodPattern = regexp.MustCompile(
		`\b(Old Kingdom|Middle Kingdom|New Kingdom|Late Period|` +
			`Ptolemaic|Roman|Byzantine|Coptic|Islamic|Mamluk|Ottoman|` +
			`Pre-Dynastic|Early Dynastic|First Intermediate|` +
			`Second Intermediate|Third Intermediate)\b`)
	factPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(oldest|largest|first|only|unique|rare|famous|renowned|` +
			`best-preserved|most|earliest|longest|highest|deepest)\b`),
		regexp.MustCompile(`(?i)\b(UNESCO|World Heritage|discovered in|built in|constructed in|` +
			`dating to|dates back|excavated|uncovered)\b`),
		regexp.MustCompile(`\b\d{3,4}\s*(BC|BCE|AD|CE)\b`),
		regexp.MustCompile(`(?i)\b(meters?|feet|acres?|hectares?)\b.*\b\d+\b`),
	}
	refMarkerPattern = regexp.MustCompile(`\[\d+\]`)
	sentenceSplit    = regexp.MustCompile(`(?m)([.!?])\s+`)
)

// Fact sentence length bounds; shorter ones lack substance, longer ones
// are usually run-on list prose.
const (
	minFactLen = 30
	maxFactLen = 300
)

// Research locates the site's article and mines it. Returns
// research.ErrNotFound when no candidate clears the match threshold;
// that is an expected outcome for obscure sites.
func (r *Researcher) Research(ctx context.Context, siteName, arabicName, locationHint string) (Finding, error) {
	target := siteName
	if strings.TrimSpace(target) == "" {
		target = Transliterate(arabicName)
	}
	if strings.TrimSpace(target) == "" {
		return Finding{}, research.ErrNotFound
	}

	title, err := r.findArticle(ctx, target, locationHint)
	if err != nil {
		return Finding{}, err
	}

	article, err := r.getArticle(ctx, title, r.cfg.PrimaryLang)
	if err != nil {
		return Finding{}, err
	}

	finding := Finding{
		Title:                 article.Title,
		URL:                   article.URL,
		HistoricalPeriod:      extractPeriod(article.Text),
		UniqueFacts:           r.extractFacts(article.Text),
		KeyFigures:            extractMatches(article.Text, pharaohPattern, deityPattern),
		ArchitecturalFeatures: extractFeatures(article.Text),
	}

	// Sister-language article comes from langlinks metadata, never from
	// a second fuzzy search.
	if sisterTitle, ok := article.LangLinks[r.cfg.SisterLang]; ok {
		if sister, serr := r.getArticle(ctx, sisterTitle, r.cfg.SisterLang); serr == nil {
			finding.ArabicTitle = sister.Title
			finding.ArabicSummary = clampSummary(cleanText(sister.Text), 500)
			finding.ArabicURL = sister.URL
		} else if !errors.Is(serr, research.ErrNotFound) {
			r.logger.Warn("sister article fetch failed",
				zap.String("title", sisterTitle),
				zap.Error(serr),
			)
		}
	}

	return finding, nil
}

// searchQueries builds the fallback query chain: the plain name first,
// then the transliteration spelling variants Egyptian names commonly
// carry (hyphen vs space, "el-" vs "el ") and a "Temple of" form.
func searchQueries(target, locationHint string) []string {
	queries := []string{target + " Egypt", target}
	if locationHint != "" {
		queries = append(queries, target+" "+locationHint)
	}

	if strings.Contains(target, "-") {
		queries = append(queries, strings.ReplaceAll(target, "-", " "))
	}
	lower := strings.ToLower(target)
	for _, v := range [...][2]string{
		{"el-", "el "}, {"el ", "el-"},
		{"al-", "al "}, {"al ", "al-"},
	} {
		if strings.Contains(lower, v[0]) {
			queries = append(queries, strings.ReplaceAll(lower, v[0], v[1]))
		}
	}
	if !strings.Contains(lower, "temple") {
		queries = append(queries, "Temple of "+target)
	}

	seen := make(map[string]struct{}, len(queries))
	out := queries[:0]
	for _, q := range queries {
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}
	return out
}

// findArticle queries the search endpoint and accepts the top-scoring
// candidate only if it clears the threshold.
func (r *Researcher) findArticle(ctx context.Context, target, locationHint string) (string, error) {
	queries := searchQueries(target, locationHint)

	var candidates []string
	seen := make(map[string]struct{})
	for _, query := range queries {
		hits, err := r.search(ctx, query)
		if err != nil {
			return "", err
		}
		for _, hit := range hits {
			key := match.Normalize(hit.Title)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			candidates = append(candidates, hit.Title)
		}
		if len(candidates) > 0 {
			break
		}
	}

	best, score, ok := r.matcher.Best(target, candidates)
	if !ok {
		r.logger.Debug("no article cleared match threshold",
			zap.String("target", target),
			zap.Float64("best_score", score),
			zap.Int("candidates", len(candidates)),
		)
		return "", research.ErrNotFound
	}
	r.logger.Debug("article matched",
		zap.String("target", target),
		zap.String("title", best),
		zap.Float64("score", score),
	)
	return best, nil
}

func (r *Researcher) search(ctx context.Context, query string) ([]SearchHit, error) {
	var hits []SearchHit
	err := r.retry.Do(ctx, func() error {
		if err := r.limiter.Wait(ctx, ratelimit.ServiceEncyclopedia); err != nil {
			return err
		}
		var callErr error
		hits, callErr = r.client.Search(ctx, query, r.cfg.PrimaryLang)
		return callErr
	})
	return hits, err
}

func (r *Researcher) getArticle(ctx context.Context, title, lang string) (Article, error) {
	var article Article
	err := r.retry.Do(ctx, func() error {
		if err := r.limiter.Wait(ctx, ratelimit.ServiceEncyclopedia); err != nil {
			return err
		}
		var callErr error
		article, callErr = r.client.GetArticle(ctx, title, lang)
		return callErr
	})
	return article, err
}

// extractFacts pulls interesting sentences from the lead paragraphs.
func (r *Researcher) extractFacts(text string) []string {
	var facts []string
	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if len(paragraph) < r.cfg.MinParagraphLength {
			continue
		}
		for _, sentence := range splitSentences(paragraph) {
			if len(sentence) < minFactLen || len(sentence) > maxFactLen {
				continue
			}
			for _, pattern := range factPatterns {
				if pattern.MatchString(sentence) {
					fact := cleanText(sentence)
					if !containsString(facts, fact) {
						facts = append(facts, fact)
					}
					break
				}
			}
			if len(facts) >= r.cfg.MaxFacts {
				return facts
			}
		}
	}
	return facts
}

func extractMatches(text string, patterns ...*regexp.Regexp) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, pattern := range patterns {
		for _, m := range pattern.FindAllString(text, -1) {
			name := strings.TrimSpace(m)
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, name)
		}
	}
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

func extractFeatures(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range architecturalPattern.FindAllString(text, -1) {
		feature := titleCase(m)
		if _, dup := seen[feature]; dup {
			continue
		}
		seen[feature] = struct{}{}
		out = append(out, feature)
	}
	return out
}

// extractPeriod reads the primary historical period from the lead.
func extractPeriod(text string) string {
	intro := text
	if len(intro) > 2000 {
		intro = intro[:2000]
	}
	if m := periodPattern.FindString(intro); m != "" {
		return m
	}
	return ""
}

func splitSentences(paragraph string) []string {
	marked := sentenceSplit.ReplaceAllString(paragraph, "$1\x00")
	return strings.Split(marked, "\x00")
}

func cleanText(text string) string {
	text = refMarkerPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

func clampSummary(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// transliterationTable maps Arabic letters to Latin approximations, used
// only when a site has no English name to seed the search with.
var transliterationTable = map[rune]string{
	'ا': "a", 'أ': "a", 'إ': "i", 'آ': "a", 'ب': "b", 'ت': "t", 'ث': "th",
	'ج': "g", 'ح': "h", 'خ': "kh", 'د': "d", 'ذ': "dh", 'ر': "r", 'ز': "z",
	'س': "s", 'ش': "sh", 'ص': "s", 'ض': "d", 'ط': "t", 'ظ': "z", 'ع': "a",
	'غ': "gh", 'ف': "f", 'ق': "q", 'ك': "k", 'ل': "l", 'م': "m", 'ن': "n",
	'ه': "h", 'ة': "a", 'و': "w", 'ي': "y", 'ى': "a", 'ء': "", 'ئ': "i",
	'ؤ': "u",
}

// Transliterate renders an Arabic name in Latin letters, best effort.
func Transliterate(arabic string) string {
	var b strings.Builder
	for _, r := range arabic {
		if latin, ok := transliterationTable[r]; ok {
			b.WriteString(latin)
			continue
		}
		if r == ' ' {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
