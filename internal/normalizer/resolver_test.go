package normalizer

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otocrawl/internal/catalog"
	"otocrawl/internal/config"
)

func collisionCatalog() *catalog.Catalog {
	return catalog.New(
		catalog.Brand{Name: "Toyota", Models: []string{"Camry", "Corolla"}},
		catalog.Brand{Name: "Land Rover", Models: []string{"Discovery"}},
		catalog.Brand{Name: "Rover", Models: []string{"75"}},
	)
}

func TestResolve_CompoundBrand(t *testing.T) {
	got := Resolve("2020 Land-Rover Discovery Sport", collisionCatalog())
	assert.Equal(t, Result{Brand: "Land Rover", Model: "Discovery"}, got)
}

func TestResolve_CompoundBrandListedAfterShortBrand(t *testing.T) {
	cat := catalog.New(
		catalog.Brand{Name: "Rover", Models: []string{"75", "Discovery"}},
		catalog.Brand{Name: "Land Rover", Models: []string{"Defender", "Range Rover Evoque"}},
	)
	r := NewResolver(cat)

	assert.Equal(t, Result{Brand: "Land Rover", Model: "Defender"}, r.Resolve("LandRover Defender 110 2021"))
	// Model search stays inside the claiming brand.
	assert.Equal(t, Result{Brand: "Land Rover", Model: Other}, r.Resolve("Land Rover Discovery 2019"))
	// Without the compound alias the short brand keeps the title.
	assert.Equal(t, Result{Brand: "Rover", Model: "75"}, r.Resolve("Rover 75 Connoisseur"))
}

func TestResolve_AliasesCanBeReplaced(t *testing.T) {
	cat := catalog.New(
		catalog.Brand{Name: "Rover", Models: []string{"75"}},
		catalog.Brand{Name: "Land Rover", Models: []string{"Defender"}},
	)

	got := NewResolver(cat, WithAliases()).Resolve("Land Rover Defender")
	assert.Equal(t, Result{Brand: "Rover", Model: Other}, got, "catalog order applies when no alias is registered")
}

func TestResolve_AliasForUnknownBrandIgnored(t *testing.T) {
	cat := catalog.New(catalog.Brand{Name: "Rover", Models: []string{"75"}})

	got := NewResolver(cat, WithAliases(Alias{Brand: "Land Rover", Key: "landrover"})).Resolve("Land Rover 75")
	assert.Equal(t, Result{Brand: "Rover", Model: "75"}, got)
}

func TestResolve_BrandWithoutModel(t *testing.T) {
	got := Resolve("Toyota Wigo 2019", collisionCatalog())
	assert.Equal(t, Result{Brand: "Toyota", Model: Other}, got)
}

func TestResolve_NoBrand(t *testing.T) {
	got := Resolve("Xe máy cũ 2015", collisionCatalog())
	assert.Equal(t, Result{Brand: Unknown, Model: Unknown}, got)
}

func TestResolve_EmptyTitle(t *testing.T) {
	assert.Equal(t, Result{Brand: Unknown, Model: Unknown}, Resolve("", collisionCatalog()))
	assert.Equal(t, Result{Brand: Unknown, Model: Unknown}, Resolve(" -- ", collisionCatalog()))
}

func TestResolve_EmptyOrNilCatalog(t *testing.T) {
	assert.Equal(t, Result{Brand: Unknown, Model: Unknown}, Resolve("Toyota Camry", nil))
	assert.Equal(t, Result{Brand: Unknown, Model: Unknown}, Resolve("Toyota Camry", catalog.New()))
}

func TestResolve_FirstBrandInCatalogOrderWins(t *testing.T) {
	cat := catalog.New(
		catalog.Brand{Name: "Mini", Models: []string{"Cooper"}},
		catalog.Brand{Name: "Mitsubishi", Models: []string{"Xpander"}},
		catalog.Brand{Name: "Cooper", Models: []string{"S"}},
	)
	r := NewResolver(cat)

	for i := 0; i < 5; i++ {
		assert.Equal(t, Result{Brand: "Mini", Model: "Cooper"}, r.Resolve("Mini Cooper S 2018"))
	}

	reversed := catalog.New(
		catalog.Brand{Name: "Cooper", Models: []string{"S"}},
		catalog.Brand{Name: "Mini", Models: []string{"Cooper"}},
	)
	assert.Equal(t, Result{Brand: "Cooper", Model: "S"}, Resolve("Mini Cooper S 2018", reversed))
}

func TestResolve_FirstModelInCatalogOrderWins(t *testing.T) {
	cat := catalog.New(catalog.Brand{Name: "Mazda", Models: []string{"CX-5", "CX-8", "Mazda 3"}})

	assert.Equal(t, Result{Brand: "Mazda", Model: "CX-5"}, Resolve("Mazda CX 5 và CX-8", cat))
	assert.Equal(t, Result{Brand: "Mazda", Model: "Mazda 3"}, Resolve("MAZDA3 1.5 AT 2020", cat))
}

func TestResolve_SkipsEmptyKeys(t *testing.T) {
	cat := catalog.New(
		catalog.Brand{Name: "-", Models: []string{"Ghost"}},
		catalog.Brand{Name: "Honda", Models: []string{" - ", "City"}},
	)

	assert.Equal(t, Result{Brand: "Honda", Model: "City"}, Resolve("Honda City RS", cat))
	assert.Equal(t, Result{Brand: Unknown, Model: Unknown}, Resolve("Ghost", cat))
}

func TestResolve_CustomSentinels(t *testing.T) {
	r := NewResolver(collisionCatalog(), WithSentinels("Khác", "Không xác định"))

	assert.Equal(t, Result{Brand: "Toyota", Model: "Khác"}, r.Resolve("Toyota Wigo"))
	assert.Equal(t, Result{Brand: "Không xác định", Model: "Không xác định"}, r.Resolve("Xe đạp"))

	blank := NewResolver(collisionCatalog(), WithSentinels(" ", ""))
	assert.Equal(t, Result{Brand: "Toyota", Model: Other}, blank.Resolve("Toyota Wigo"))
}

func TestOptionsFromConfig(t *testing.T) {
	cat := catalog.New(
		catalog.Brand{Name: "Rover", Models: []string{"75"}},
		catalog.Brand{Name: "Land Rover", Models: []string{"Defender"}},
	)

	defaults := NewResolver(cat, OptionsFromConfig(config.Default().Catalog)...)
	assert.Equal(t, Result{Brand: "Land Rover", Model: "Defender"}, defaults.Resolve("Land Rover Defender"))
	assert.Equal(t, Result{Brand: Unknown, Model: Unknown}, defaults.Resolve("Mazda 3"))

	cfg := config.CatalogConfig{
		OtherLabel:   "Khác",
		UnknownLabel: "?",
		Aliases:      []config.AliasConfig{{Brand: "Rover"}},
	}

	custom := NewResolver(cat, OptionsFromConfig(cfg)...)
	assert.Equal(t, Result{Brand: "Rover", Model: "Khác"}, custom.Resolve("Land Rover Defender"))
	assert.Equal(t, Result{Brand: "?", Model: "?"}, custom.Resolve("Mazda 3"))
}

func TestResolve_RoundTrip(t *testing.T) {
	cat, err := catalog.Load(strings.NewReader(`Brand,Models
Toyota,"Vios, Camry, Fortuner"
Mercedes-Benz,"C 200, GLC 300"
Hyundai,"Santa Fe, Accent"
VinFast,"VF 8, Lux A2.0"
`))
	require.NoError(t, err)

	r := NewResolver(cat)
	decorate := []func(string) string{
		func(s string) string { return s },
		func(s string) string { return strings.ReplaceAll(s, " ", "-") },
		func(s string) string { return strings.ReplaceAll(s, " ", "") },
		func(s string) string { return strings.ToUpper(strings.ReplaceAll(s, " ", "  ")) },
	}

	for _, b := range cat.Brands() {
		for _, m := range b.Models {
			for i, d := range decorate {
				title := fmt.Sprintf("Bán xe %s %s đời 2021", d(b.Name), d(m))
				t.Run(fmt.Sprintf("%s/%s/%d", b.Name, m, i), func(t *testing.T) {
					assert.Equal(t, Result{Brand: b.Name, Model: m}, r.Resolve(title))
				})
			}
		}
	}
}

func TestResolver_ConcurrentUse(t *testing.T) {
	r := NewResolver(collisionCatalog())

	var wg sync.WaitGroup

	results := make([]Result, 64)

	for i := range results {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve("2020 Land-Rover Discovery Sport")
		}(i)
	}

	wg.Wait()

	for _, got := range results {
		require.Equal(t, Result{Brand: "Land Rover", Model: "Discovery"}, got)
	}
}
