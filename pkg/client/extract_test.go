package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsePayload(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

func TestExtractRecordsFromEvents(t *testing.T) {
	payload := parsePayload(t, `{
		"session_id": "abc",
		"reply": "Here are some phones",
		"events": [
			{"author": "user", "content": {"parts": [{"text": "show phones"}]}},
			{"author": "agent", "content": {"parts": [{"function_response": {
				"name": "search_phones_by_filters",
				"response": {
					"success": true,
					"phones": [
						{"id": "pixel-8a", "model": "Google Pixel 8a", "brand": "Google", "price": "₹29,999"},
						{"id": "iphone-15", "model": "Apple iPhone 15", "brand": "Apple", "price": "₹79,999"}
					]
				}
			}}]}}
		]
	}`)

	records := ExtractRecords(payload)
	require.Len(t, records, 2)
	assert.Equal(t, "pixel-8a", records[0].ID)
	assert.Equal(t, "Google Pixel 8a", records[0].Name)
	assert.Equal(t, "₹29,999", records[0].Price)
	assert.Equal(t, "Apple", records[1].Brand)
}

func TestExtractRecordsDedupByID(t *testing.T) {
	payload := parsePayload(t, `{
		"top": {"id": "pixel-8a", "model": "Google Pixel 8a", "price": "₹29,999"},
		"events": [
			{"content": {"parts": [{"function_response": {"response": {
				"phone": {"id": "pixel-8a", "model": "Pixel 8a renamed", "price": "₹29,999"}
			}}}]}}
		]
	}`)

	records := ExtractRecords(payload)
	require.Len(t, records, 1)
	// 先出现的记录胜出
	assert.Equal(t, "Google Pixel 8a", records[0].Name)
}

func TestExtractRecordsDedupByBrandAndName(t *testing.T) {
	payload := parsePayload(t, `{
		"a": {"model": "Xiaomi 14", "brand": "Xiaomi", "price": "₹59,999"},
		"b": {"model": "Xiaomi 14", "brand": "Xiaomi", "price": "₹58,000"}
	}`)

	records := ExtractRecords(payload)
	require.Len(t, records, 1)
	assert.Equal(t, "₹59,999", records[0].Price)
}

func TestExtractRecordsRequiresQualifyingKeys(t *testing.T) {
	// 只有名称没有价格/图片/亮点/规格，不算商品
	payload := parsePayload(t, `{
		"thing": {"model": "Some Phone", "brand": "Acme"},
		"other": {"price": "₹9,999", "weight": "180g"}
	}`)

	assert.Empty(t, ExtractRecords(payload))
}

func TestExtractRecordsAlternateKeys(t *testing.T) {
	payload := parsePayload(t, `{
		"item": {
			"title": "Nothing Phone 2",
			"manufacturer": "Nothing",
			"price_text": "₹42,999",
			"thumbnail": "https://example.com/p2.jpg",
			"key_specs": {"ram": "12GB"}
		}
	}`)

	records := ExtractRecords(payload)
	require.Len(t, records, 1)
	assert.Equal(t, "Nothing Phone 2", records[0].Name)
	assert.Equal(t, "Nothing", records[0].Brand)
	assert.Equal(t, "₹42,999", records[0].Price)
	assert.Equal(t, "https://example.com/p2.jpg", records[0].Image)
	assert.Equal(t, "12GB", records[0].Spotlight["ram"])
}

func TestExtractRecordsNumericPrice(t *testing.T) {
	payload := parsePayload(t, `{
		"item": {"model": "Moto G54", "price": 12999}
	}`)

	records := ExtractRecords(payload)
	require.Len(t, records, 1)
	assert.Equal(t, "12999", records[0].Price)
}

func TestExtractRecordsParentBeforeChildren(t *testing.T) {
	// 父对象和子对象都是候选时，父对象排在前面
	payload := parsePayload(t, `{
		"outer": {
			"model": "Bundle",
			"price": "₹1",
			"inner": {"model": "Galaxy S24", "brand": "Samsung", "price": "₹79,999"}
		}
	}`)

	records := ExtractRecords(payload)
	require.Len(t, records, 2)
	assert.Equal(t, "Bundle", records[0].Name)
	assert.Equal(t, "Galaxy S24", records[1].Name)
}

func TestExtractRecordsIgnoresScalars(t *testing.T) {
	payload := parsePayload(t, `{
		"reply": "no products here",
		"count": 3,
		"flags": [true, false]
	}`)

	assert.Empty(t, ExtractRecords(payload))
}
