package country

import (
	"strings"

	"github.com/biter777/countries"
)

// Resolver maps a country name to a short country code
type Resolver interface {
	Resolve(name string) string
}

// aliases covers spellings VPN providers use that the ISO tables miss
var aliases = map[string]string{
	"UK":          "GB",
	"ENGLAND":     "GB",
	"BRITAIN":     "GB",
	"USA":         "US",
	"US":          "US",
	"AMERICA":     "US",
	"KOREA":       "KR",
	"SOUTH KOREA": "KR",
	"RUSSIA":      "RU",
	"VIETNAM":     "VN",
	"HONG KONG":   "HK",
}

// Table resolves names through the ISO 3166 tables plus local aliases
type Table struct {
	fallback string
	aliases  map[string]string
}

// NewTable creates a resolver returning fallback for unknown names
func NewTable(fallback string) *Table {
	return &Table{
		fallback: fallback,
		aliases:  aliases,
	}
}

// Resolve returns the ISO 3166-1 alpha-2 code for name, or the
// fallback when the name is not recognized
func (t *Table) Resolve(name string) string {
	key := normalize(name)
	if key == "" {
		return t.fallback
	}

	if code, ok := t.aliases[key]; ok {
		return code
	}

	code := countries.ByName(key)
	if code == countries.Unknown {
		return t.fallback
	}

	alpha2 := code.Alpha2()
	if len(alpha2) != 2 {
		return t.fallback
	}
	return alpha2
}

// normalize turns "united_kingdom" or "Hong-Kong" into "UNITED KINGDOM"
func normalize(name string) string {
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}
