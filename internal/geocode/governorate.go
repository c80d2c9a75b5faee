package geocode

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/unlockegypt/heritage-researcher/internal/cache"
	"github.com/unlockegypt/heritage-researcher/internal/ratelimit"
	"github.com/unlockegypt/heritage-researcher/internal/research"
)

// Unknown is the explicit marker for sites whose governorate could not
// be resolved. Resolve never returns a raw provider string.
const Unknown = "Unknown"

// governorates maps lower-cased aliases to the 27 canonical names.
var governorates = map[string]string{
	"alexandria":       "Alexandria",
	"aswan":            "Aswan",
	"asyut":            "Asyut",
	"assiut":           "Asyut",
	"beheira":          "Beheira",
	"el beheira":       "Beheira",
	"beni suef":        "Beni Suef",
	"bani suwayf":      "Beni Suef",
	"cairo":            "Cairo",
	"dakahlia":         "Dakahlia",
	"damietta":         "Damietta",
	"faiyum":           "Faiyum",
	"fayoum":           "Faiyum",
	"el fayoum":        "Faiyum",
	"gharbia":          "Gharbia",
	"giza":             "Giza",
	"ismailia":         "Ismailia",
	"kafr el sheikh":   "Kafr El Sheikh",
	"kafr el-sheikh":   "Kafr El Sheikh",
	"luxor":            "Luxor",
	"matruh":           "Matruh",
	"matrouh":          "Matruh",
	"mersa matruh":     "Matruh",
	"minya":            "Minya",
	"al-minya":         "Minya",
	"el minya":         "Minya",
	"monufia":          "Monufia",
	"menoufia":         "Monufia",
	"new valley":       "New Valley",
	"wadi al-jadid":    "New Valley",
	"el wadi el gedid": "New Valley",
	"north sinai":      "North Sinai",
	"port said":        "Port Said",
	"qalyubia":         "Qalyubia",
	"qalyubiyya":       "Qalyubia",
	"qena":             "Qena",
	"red sea":          "Red Sea",
	"sharqia":          "Sharqia",
	"sharkia":          "Sharqia",
	"al-sharkia":       "Sharqia",
	"sohag":            "Sohag",
	"south sinai":      "South Sinai",
	"suez":             "Suez",
}

// knownPlaces short-circuits geocoding for well-known site names.
var knownPlaces = map[string]string{
	"giza plateau":            "Giza",
	"pyramids":                "Giza",
	"sphinx":                  "Giza",
	"saqqara":                 "Giza",
	"dahshur":                 "Giza",
	"abu rawash":              "Giza",
	"karnak":                  "Luxor",
	"valley of the kings":     "Luxor",
	"valley of the queens":    "Luxor",
	"deir el-bahari":          "Luxor",
	"medinet habu":            "Luxor",
	"colossi of memnon":       "Luxor",
	"luxor temple":            "Luxor",
	"abu simbel":              "Aswan",
	"philae":                  "Aswan",
	"elephantine":             "Aswan",
	"unfinished obelisk":      "Aswan",
	"bibliotheca alexandrina": "Alexandria",
	"kom el shoqafa":          "Alexandria",
	"kom el-dikka":            "Alexandria",
	"qaitbay citadel":         "Alexandria",
	"pompey's pillar":         "Alexandria",
	"egyptian museum":         "Cairo",
	"cairo citadel":           "Cairo",
	"khan el-khalili":         "Cairo",
	"al-azhar":                "Cairo",
	"coptic cairo":            "Cairo",
	"heliopolis":              "Cairo",
	"saint catherine":         "South Sinai",
	"mount sinai":             "South Sinai",
	"sharm el-sheikh":         "South Sinai",
	"hurghada":                "Red Sea",
}

// knownPlaceMarkers orders the markers longest-first, ties broken
// alphabetically, so a name containing several markers always resolves
// to the most specific one.
var knownPlaceMarkers = func() []string {
	markers := make([]string, 0, len(knownPlaces))
	for place := range knownPlaces {
		markers = append(markers, place)
	}
	sort.Slice(markers, func(i, j int) bool {
		if len(markers[i]) != len(markers[j]) {
			return len(markers[i]) > len(markers[j])
		}
		return markers[i] < markers[j]
	})
	return markers
}()

// Address fields Nominatim uses for the governorate level.
var addressFields = []string{"state", "province", "county", "state_district"}

// Egypt's bounding box; coordinates outside it are dropped as invalid.
const (
	minLat = 21.5
	maxLat = 32.0
	minLon = 24.0
	maxLon = 37.5
)

// Resolution is the cached outcome for one site, Unknown included, so an
// unresolvable site is never re-queried within a run.
type Resolution struct {
	Governorate string
	Lat         *float64
	Lon         *float64
}

// Resolver maps site names to canonical governorates, geocoding on cache
// miss through the shared run-wide rate limiter.
type Resolver struct {
	client  Client
	cache   *cache.Store[Resolution]
	limiter *ratelimit.Limiter
	retry   *research.RetryPolicy
	logger  *zap.Logger
}

// NewResolver builds a Resolver. The cache and limiter are owned by the
// orchestrator and shared across workers.
func NewResolver(
	client Client,
	store *cache.Store[Resolution],
	limiter *ratelimit.Limiter,
	retry *research.RetryPolicy,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		client:  client,
		cache:   store,
		limiter: limiter,
		retry:   retry,
		logger:  logger,
	}
}

// Resolve determines the governorate for a site. The result is always a
// member of the 27-name canonical set or Unknown, and every outcome is
// cached under the normalized site name.
func (r *Resolver) Resolve(ctx context.Context, siteName, locationHint string) Resolution {
	if res, ok := r.cache.Get(siteName); ok {
		return res
	}

	res := r.resolveUncached(ctx, siteName, locationHint)
	r.cache.Put(siteName, res)
	return res
}

func (r *Resolver) resolveUncached(ctx context.Context, siteName, locationHint string) Resolution {
	res := Resolution{Governorate: Unknown}

	// Known places skip the provider entirely but still get coordinates
	// on a best-effort basis.
	nameLower := strings.ToLower(siteName)
	for _, place := range knownPlaceMarkers {
		if strings.Contains(nameLower, place) {
			res.Governorate = knownPlaces[place]
			break
		}
	}

	hit, err := r.geocode(ctx, siteName, locationHint)
	if err != nil {
		if !errors.Is(err, research.ErrNotFound) {
			r.logger.Warn("geocoding failed",
				zap.String("site", siteName),
				zap.Error(err),
			)
		}
		if res.Governorate == Unknown {
			res.Governorate = hintFallback(locationHint)
		}
		return res
	}

	if lat, lon, ok := validCoordinates(hit.Lat, hit.Lon); ok {
		res.Lat, res.Lon = lat, lon
	} else {
		r.logger.Warn("dropping out-of-range coordinates",
			zap.String("site", siteName),
			zap.Float64("lat", hit.Lat),
			zap.Float64("lon", hit.Lon),
		)
	}

	if res.Governorate == Unknown {
		if gov, ok := governorateFromAddress(hit.Address); ok {
			res.Governorate = gov
		} else {
			res.Governorate = hintFallback(locationHint)
		}
	}
	return res
}

func (r *Resolver) geocode(ctx context.Context, siteName, locationHint string) (Result, error) {
	query := siteName + ", Egypt"
	if locationHint != "" {
		query = siteName + ", " + locationHint + ", Egypt"
	}

	var hit Result
	err := r.retry.Do(ctx, func() error {
		if err := r.limiter.Wait(ctx, ratelimit.ServiceGeocoding); err != nil {
			return err
		}
		var callErr error
		hit, callErr = r.client.Geocode(ctx, query)
		return callErr
	})
	return hit, err
}

// Canonical maps an arbitrary region string to a canonical governorate
// name, reporting whether the mapping succeeded.
func Canonical(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimSuffix(n, " governorate")
	n = strings.TrimSpace(strings.TrimSuffix(n, "محافظة"))
	n = strings.TrimSpace(strings.TrimPrefix(n, "محافظة"))
	gov, ok := governorates[n]
	return gov, ok
}

// All returns the sorted canonical governorate list.
func All() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, gov := range governorates {
		if _, ok := seen[gov]; ok {
			continue
		}
		seen[gov] = struct{}{}
		names = append(names, gov)
	}
	sort.Strings(names)
	return names
}

func governorateFromAddress(address map[string]string) (string, bool) {
	for _, field := range addressFields {
		raw, ok := address[field]
		if !ok {
			continue
		}
		if gov, ok := Canonical(raw); ok {
			return gov, true
		}
	}
	return "", false
}

func hintFallback(locationHint string) string {
	if gov, ok := Canonical(locationHint); ok {
		return gov
	}
	return Unknown
}

func validCoordinates(lat, lon float64) (*float64, *float64, bool) {
	if lat < minLat || lat > maxLat || lon < minLon || lon > maxLon {
		return nil, nil, false
	}
	return &lat, &lon, true
}
