package normalizer

import (
	"reflect"
	"testing"

	"otocrawl/internal/models"
)

func TestTransformer_Transform(t *testing.T) {
	tr := NewTransformer(NewResolver(collisionCatalog()), models.DefaultColumns())

	listing := &models.RawListing{
		Title: "Toyota Corolla Altis 1.8G 2019",
		Price: "615 triệu",
		Attributes: []models.Attribute{
			{Label: "Năm SX", Value: "2019"},
			{Label: "Xuất xứ", Value: "Trong nước"},
			{Label: "", Value: "dropped"},
		},
	}

	rec := tr.Transform(listing)

	wantKeys := []string{"Tên xe", "Thương hiệu", "Model", "Năm SX", "Xuất xứ", "Giá", "Giá (VNĐ)"}
	if !reflect.DeepEqual(rec.Keys(), wantKeys) {
		t.Fatalf("Keys() = %v, want %v", rec.Keys(), wantKeys)
	}

	checks := map[string]string{
		"Tên xe":      "Toyota Corolla Altis 1.8G 2019",
		"Thương hiệu": "Toyota",
		"Model":       "Corolla",
		"Xuất xứ":     "Trong nước",
		"Giá":         "615 triệu",
		"Giá (VNĐ)":   "615000000",
	}

	for key, want := range checks {
		if got, _ := rec.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestTransformer_PriceOverridesAttribute(t *testing.T) {
	tr := NewTransformer(NewResolver(collisionCatalog()), models.Columns{})

	rec := tr.Transform(&models.RawListing{
		CardTitle:  "Land Rover Discovery",
		Price:      "2 tỷ",
		Attributes: []models.Attribute{{Label: "Giá", Value: "from detail"}},
	})

	if got, _ := rec.Get("Giá"); got != "2 tỷ" {
		t.Errorf("Giá = %q, want card price", got)
	}

	if rec.Keys()[3] != "Giá" {
		t.Errorf("price should keep the attribute's position, keys = %v", rec.Keys())
	}

	if _, ok := rec.Get("Giá (VNĐ)"); ok {
		t.Error("price value column should be absent when not configured")
	}
}

func TestTransformer_Reresolve(t *testing.T) {
	cols := models.DefaultColumns()
	tr := NewTransformer(NewResolver(collisionCatalog()), cols)

	rec := models.NewRecord()
	rec.Set(cols.Name, "Land Rover Discovery Sport")
	rec.Set(cols.Brand, "Rover")
	rec.Set(cols.Model, Other)
	rec.Set("Năm SX", "2018")

	if !tr.Reresolve(rec) {
		t.Fatal("Reresolve returned false")
	}

	if v, _ := rec.Get(cols.Brand); v != "Land Rover" {
		t.Errorf("brand = %q", v)
	}

	if v, _ := rec.Get(cols.Model); v != "Discovery" {
		t.Errorf("model = %q", v)
	}

	wantKeys := []string{cols.Name, cols.Brand, cols.Model, "Năm SX"}
	if !reflect.DeepEqual(rec.Keys(), wantKeys) {
		t.Errorf("Keys() = %v, want %v", rec.Keys(), wantKeys)
	}

	if tr.Reresolve(models.NewRecord()) {
		t.Error("record without a name should not be resolved")
	}
}
