package citydata

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrMalformed marks a source whose content cannot form a valid catalog.
var ErrMalformed = errors.New("citydata: malformed source")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// BuildCatalog normalizes raw tables into a Catalog. Every city record is
// validated; a single invalid record or a key collision after normalization
// rejects the whole source.
func BuildCatalog(cities map[string]City, sights map[string]map[string]SightDescription) (Catalog, error) {
	cat := Catalog{
		Cities: make(map[string]City, len(cities)),
		Sights: make(map[string]map[string]SightDescription, len(sights)),
	}
	v := recordValidator()

	for _, raw := range sortedKeys(cities) {
		key := NormalizeCity(raw)
		if key == "" {
			return Catalog{}, fmt.Errorf("%w: empty city key", ErrMalformed)
		}
		if _, dup := cat.Cities[key]; dup {
			return Catalog{}, fmt.Errorf("%w: duplicate city %q", ErrMalformed, key)
		}
		city := cities[raw]
		if err := v.Struct(city); err != nil {
			return Catalog{}, fmt.Errorf("%w: city %q: %v", ErrMalformed, key, err)
		}
		cat.Cities[key] = city
	}

	for _, raw := range sortedKeys(sights) {
		key := NormalizeCity(raw)
		if key == "" {
			return Catalog{}, fmt.Errorf("%w: empty sights key", ErrMalformed)
		}
		if _, dup := cat.Sights[key]; dup {
			return Catalog{}, fmt.Errorf("%w: duplicate sights city %q", ErrMalformed, key)
		}
		descs := make(map[string]SightDescription, len(sights[raw]))
		for name, d := range sights[raw] {
			descs[name] = d
		}
		cat.Sights[key] = descs
	}
	return cat, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
