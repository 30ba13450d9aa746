package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spotlightRecord(name string) ProductRecord {
	return ProductRecord{
		Name:  name,
		Price: "₹29,999",
		Spotlight: map[string]interface{}{
			"display":      "6.1\" OLED 120Hz",
			"performance":  "Google Tensor",
			"ram":          "8GB",
			"storage":      "128GB",
			"battery":      "4410mAh",
			"rear_camera":  "50MP main + 12MP ultrawide",
			"front_camera": "13MP",
			"software":     "Android 14",
		},
	}
}

func TestBuildHighlightsCapsAtFour(t *testing.T) {
	highlights := BuildHighlights(spotlightRecord("Pixel 8a"))

	require.Len(t, highlights, 4)
	assert.Equal(t, "Display: 6.1\" OLED 120Hz", highlights[0])
	assert.Equal(t, "Performance: Google Tensor", highlights[1])
	assert.Equal(t, "RAM: 8GB", highlights[2])
	assert.Equal(t, "Storage: 128GB", highlights[3])
}

func TestBuildHighlightsSkipsMissing(t *testing.T) {
	rec := ProductRecord{
		Name: "Mystery Phone",
		Spotlight: map[string]interface{}{
			"battery":  "5000mAh",
			"software": "Android 14",
		},
	}

	highlights := BuildHighlights(rec)
	require.Len(t, highlights, 1)
	assert.Equal(t, "Battery: 5000mAh", highlights[0])
}

func TestBuildHighlightsJoinsStringSlices(t *testing.T) {
	rec := ProductRecord{
		Name: "Pixel 8a",
		Spotlight: map[string]interface{}{
			"rear_camera": []interface{}{"50MP main", "12MP ultrawide"},
		},
	}

	highlights := BuildHighlights(rec)
	require.Len(t, highlights, 1)
	assert.Equal(t, "Rear Camera: 50MP main, 12MP ultrawide", highlights[0])
}

func TestBuildHighlightsFallsBackToSpecs(t *testing.T) {
	rec := ProductRecord{
		Name: "iPhone 15",
		Specs: map[string]interface{}{
			"memory":  map[string]interface{}{"ram": "6GB"},
			"display": map[string]interface{}{"size": "6.1\" Super Retina XDR"},
		},
	}

	highlights := BuildHighlights(rec)
	// display 规格键叫 size，不命中；ram 经嵌套一层命中
	require.Len(t, highlights, 1)
	assert.Equal(t, "RAM: 6GB", highlights[0])
}

func TestBuildComparisonFixedOrder(t *testing.T) {
	rows := BuildComparison([]ProductRecord{
		spotlightRecord("Pixel 8a"),
		spotlightRecord("Galaxy S24"),
	})

	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = row.Label
	}
	assert.Equal(t, []string{
		"Price", "Display", "Performance", "RAM", "Storage",
		"Battery", "Rear Camera", "Front Camera", "Software",
	}, labels)

	for _, row := range rows {
		assert.Len(t, row.Values, 2)
	}
}

func TestBuildComparisonPlaceholderAndOmission(t *testing.T) {
	full := spotlightRecord("Pixel 8a")
	sparse := ProductRecord{
		Name:  "Budget Phone",
		Price: "₹9,999",
	}

	rows := BuildComparison([]ProductRecord{full, sparse})

	for _, row := range rows {
		if row.Label == "Display" {
			assert.Equal(t, Placeholder, row.Values[1])
		}
	}

	// 两条记录都没有的行整行略去
	norse := ProductRecord{Name: "A"}
	sparse2 := ProductRecord{Name: "B"}
	assert.Empty(t, BuildComparison([]ProductRecord{norse, sparse2}))
}

func TestBuildComparisonAnyRecordCount(t *testing.T) {
	rows := BuildComparison([]ProductRecord{spotlightRecord("Solo")})
	require.NotEmpty(t, rows)
	assert.Len(t, rows[0].Values, 1)

	assert.Empty(t, BuildComparison(nil))
}
