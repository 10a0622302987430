package normalizer

import (
	"strings"

	"otocrawl/internal/catalog"
	"otocrawl/internal/config"
)

// Sentinel labels for unresolved parts of a title.
const (
	// Other means the brand was recognized but no catalog model was found.
	Other = "Other"
	// Unknown means no catalog brand was found in the title.
	Unknown = "Unknown"
)

// Result is the (brand, model) pair resolved for one title.
type Result struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
}

// Alias marks a compound brand name whose trailing word is itself a
// shorter catalog brand, e.g. "Land Rover" over "Rover". When the alias
// key occurs in a title, the compound brand claims the title from any
// brand whose key the alias contains, whatever their catalog order.
type Alias struct {
	Brand string `yaml:"brand"`
	// Key is normalized before use; blank means the brand's own key.
	Key string `yaml:"alias"`
}

// DefaultAliases is the disambiguation table used when none is given.
var DefaultAliases = []Alias{
	{Brand: "Land Rover", Key: "LandRover"},
}

type modelKey struct {
	name string
	key  string
}

type brandKey struct {
	name   string
	key    string
	models []modelKey
}

type claim struct {
	brand int
	alias string
}

// Resolver matches titles against a catalog. Keys are computed once at
// construction; Resolve only reads, so one Resolver may serve many
// goroutines.
type Resolver struct {
	brands  []brandKey
	claims  []claim
	aliases []Alias
	other   string
	unknown string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAliases replaces the disambiguation table.
func WithAliases(aliases ...Alias) Option {
	return func(r *Resolver) {
		r.aliases = aliases
	}
}

// WithSentinels overrides the labels returned for Other and Unknown.
// Blank labels keep the defaults so a model is never empty.
func WithSentinels(other, unknown string) Option {
	return func(r *Resolver) {
		if strings.TrimSpace(other) != "" {
			r.other = other
		}

		if strings.TrimSpace(unknown) != "" {
			r.unknown = unknown
		}
	}
}

// NewResolver precomputes the keys of cat. A nil or empty catalog yields a
// resolver that answers Unknown for every title.
func NewResolver(cat *catalog.Catalog, opts ...Option) *Resolver {
	r := &Resolver{
		aliases: DefaultAliases,
		other:   Other,
		unknown: Unknown,
	}

	for _, opt := range opts {
		opt(r)
	}

	position := make(map[string]int)

	for _, b := range cat.Brands() {
		bk := brandKey{name: b.Name, key: Normalize(b.Name)}
		for _, m := range b.Models {
			if k := Normalize(m); k != "" {
				bk.models = append(bk.models, modelKey{name: m, key: k})
			}
		}

		position[b.Name] = len(r.brands)
		r.brands = append(r.brands, bk)
	}

	for _, a := range r.aliases {
		i, ok := position[a.Brand]
		if !ok {
			continue
		}

		key := Normalize(a.Key)
		if key == "" {
			key = r.brands[i].key
		}

		if key != "" {
			r.claims = append(r.claims, claim{brand: i, alias: key})
		}
	}

	return r
}

// Unresolved returns the result used for titles with no catalog brand.
func (r *Resolver) Unresolved() Result {
	return Result{Brand: r.unknown, Model: r.unknown}
}

// Resolve returns the first catalog brand (in catalog order) whose key is
// contained in the title's key, and the first of its models likewise
// contained. It never fails: a brand without a matching model yields the
// Other label, and a title without any brand yields Unknown for both.
func (r *Resolver) Resolve(title string) Result {
	key := Normalize(title)
	if key == "" {
		return r.Unresolved()
	}

	for i := range r.brands {
		b := &r.brands[i]
		if b.key == "" || !strings.Contains(key, b.key) {
			continue
		}

		if j, ok := r.claimant(key, b.key); ok {
			b = &r.brands[j]
		}

		return r.matchModel(key, b)
	}

	return r.Unresolved()
}

// claimant finds a compound brand whose alias occurs in key and covers the
// matched brand key.
func (r *Resolver) claimant(key, matched string) (int, bool) {
	for _, c := range r.claims {
		if strings.Contains(c.alias, matched) && strings.Contains(key, c.alias) {
			return c.brand, true
		}
	}

	return 0, false
}

func (r *Resolver) matchModel(key string, b *brandKey) Result {
	for _, m := range b.models {
		if strings.Contains(key, m.key) {
			return Result{Brand: b.name, Model: m.name}
		}
	}

	return Result{Brand: b.name, Model: r.other}
}

// Resolve resolves a single title against cat with the default aliases.
// Callers resolving many titles should build one Resolver instead.
func Resolve(title string, cat *catalog.Catalog) Result {
	return NewResolver(cat).Resolve(title)
}

// OptionsFromConfig maps the catalog section of the configuration to
// resolver options. An empty alias list keeps DefaultAliases.
func OptionsFromConfig(cfg config.CatalogConfig) []Option {
	opts := []Option{WithSentinels(cfg.OtherLabel, cfg.UnknownLabel)}

	if len(cfg.Aliases) > 0 {
		aliases := make([]Alias, len(cfg.Aliases))
		for i, a := range cfg.Aliases {
			aliases[i] = Alias{Brand: a.Brand, Key: a.Alias}
		}

		opts = append(opts, WithAliases(aliases...))
	}

	return opts
}
