package ai

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxPointsFromLocation_FixedOrder(t *testing.T) {
	got := BoxPointsFromLocation(Location{Top: 10, Left: 20, Width: 30, Height: 40})

	assert.Equal(t, []BoxPoint{
		{X: 20, Y: 10}, // top-left
		{X: 50, Y: 10}, // top-right
		{X: 50, Y: 50}, // bottom-right
		{X: 20, Y: 50}, // bottom-left
	}, got)
}

func TestBoxPointsFromLocation_AlwaysFourPoints(t *testing.T) {
	for _, loc := range []Location{
		{},
		{Top: -5, Left: 3, Width: 0, Height: 7},
		{Top: 1000, Left: 2000, Width: 1, Height: 1},
	} {
		points := BoxPointsFromLocation(loc)
		require.Len(t, points, 4)
		assert.Equal(t, points[0].Y, points[1].Y)
		assert.Equal(t, points[1].X, points[2].X)
		assert.Equal(t, points[2].Y, points[3].Y)
		assert.Equal(t, points[3].X, points[0].X)
	}
}

func TestParseResponse_WordsResultAllZeroLocation(t *testing.T) {
	raw := `{"candidates":[{"content":{"parts":[{"words_result":[{"words":"A","location":{"top":0,"left":0,"width":0,"height":0}}]}]}}]}`

	result, usage, err := parseGeminiResponse(raw)
	require.NoError(t, err)
	assert.Nil(t, usage)

	require.Len(t, result.OCRContents, 1)
	assert.Equal(t, "A", result.OCRContents[0].Text)
	assert.Empty(t, result.OCRContents[0].BoxPoints)
}

func TestParseResponse_OnlyOriginPointsAreDropped(t *testing.T) {
	// left=0 top=0 width=5 height=0 -> (0,0) (5,0) (5,0) (0,0)
	// left=0 top=5 width=0 height=0 -> (0,5) x4
	raw := `{"candidates":[{"content":{"parts":[{"words_result":[
		{"words":"x-axis","location":{"top":0,"left":0,"width":5,"height":0}},
		{"words":"y-axis","location":{"top":5,"left":0,"width":0,"height":0}}
	]}]}}]}`

	result, _, err := parseGeminiResponse(raw)
	require.NoError(t, err)
	require.Len(t, result.OCRContents, 2)

	assert.Equal(t, []BoxPoint{{X: 5, Y: 0}, {X: 5, Y: 0}}, result.OCRContents[0].BoxPoints)
	assert.Equal(t, []BoxPoint{{X: 0, Y: 5}, {X: 0, Y: 5}, {X: 0, Y: 5}, {X: 0, Y: 5}}, result.OCRContents[1].BoxPoints)
}

func TestParseResponse_WordsResultMissingLocation(t *testing.T) {
	raw := `{"candidates":[{"content":{"parts":[{"words_result":[{"words":"B"}]}]}}]}`

	result, _, err := parseGeminiResponse(raw)
	require.NoError(t, err)
	require.Len(t, result.OCRContents, 1)
	assert.Equal(t, "B", result.OCRContents[0].Text)
	assert.Empty(t, result.OCRContents[0].BoxPoints)
}

func TestParseResponse_EmptyWordsResult(t *testing.T) {
	raw := `{"candidates":[{"content":{"parts":[{"words_result":[],"text":"ignored"}]}}]}`

	result, _, err := parseGeminiResponse(raw)
	require.NoError(t, err)
	assert.Empty(t, result.OCRContents)
}

func TestParseResponse_PlainTextLines(t *testing.T) {
	raw := `{"candidates":[{"content":{"parts":[{"text":"line1\nline2\nline3"}]}}]}`

	result, _, err := parseGeminiResponse(raw)
	require.NoError(t, err)

	require.Len(t, result.OCRContents, 3)
	for i, want := range []string{"line1", "line2", "line3"} {
		assert.Equal(t, want, result.OCRContents[i].Text)
		assert.Empty(t, result.OCRContents[i].BoxPoints)
	}
}

func TestParseResponse_PlainTextKeepsEmptyLines(t *testing.T) {
	raw := `{"candidates":[{"content":{"parts":[{"text":"a\n\nb\n"}]}}]}`

	result, _, err := parseGeminiResponse(raw)
	require.NoError(t, err)
	assert.Len(t, result.OCRContents, 4)
	assert.Equal(t, "", result.OCRContents[1].Text)
}

func TestParseResponse_WordsResultNotArrayFallsBackToText(t *testing.T) {
	raw := `{"candidates":[{"content":{"parts":[{"words_result":{"words":"x"},"text":"fallback"}]}}]}`

	result, _, err := parseGeminiResponse(raw)
	require.NoError(t, err)
	require.Len(t, result.OCRContents, 1)
	assert.Equal(t, "fallback", result.OCRContents[0].Text)
}

func TestParseResponse_NoDataIncludesRaw(t *testing.T) {
	cases := map[string]string{
		"empty candidates":   `{"candidates":[]}`,
		"missing candidates": `{"promptFeedback":{"blockReason":"SAFETY"}}`,
		"missing content":    `{"candidates":[{"finishReason":"SAFETY"}]}`,
		"empty parts":        `{"candidates":[{"content":{"parts":[]}}]}`,
		"null part":          `{"candidates":[{"content":{"parts":[null]}}]}`,
		"no text":            `{"candidates":[{"content":{"parts":[{"inline_data":{}}]}}]}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := parseGeminiResponse(raw)
			require.Error(t, err)

			var noData *NoDataError
			require.True(t, errors.As(err, &noData))
			assert.Equal(t, raw, noData.Raw)
			assert.Contains(t, err.Error(), raw)
			assert.Equal(t, "No data\nRaw: "+raw, err.Error())
		})
	}
}

func TestParseResponse_MalformedJSON(t *testing.T) {
	raw := `<html>502 Bad Gateway</html>`

	_, _, err := parseGeminiResponse(raw)
	require.Error(t, err)

	var noData *NoDataError
	require.True(t, errors.As(err, &noData))
	assert.Error(t, noData.Err)
	assert.Contains(t, err.Error(), raw)
}

func TestParseResponse_UsageMetadata(t *testing.T) {
	_, usage, err := parseGeminiResponse(plainTextResponse)
	require.NoError(t, err)

	require.NotNil(t, usage)
	assert.Equal(t, 100, usage.InputTokens)
	assert.Equal(t, 20, usage.OutputTokens)
	assert.Equal(t, 120, usage.TotalTokens)
}

func TestFlexibleInt(t *testing.T) {
	var loc Location
	require.NoError(t, json.Unmarshal([]byte(`{"top":"12","left":3.6,"width":null,"height":""}`), &loc))
	assert.Equal(t, Location{Top: 12, Left: 4, Width: 0, Height: 0}, loc)

	assert.Error(t, json.Unmarshal([]byte(`{"top":"abc"}`), &loc))
	assert.Error(t, json.Unmarshal([]byte(`{"top":true}`), &loc))
}

func TestFlexibleInt_RejectsOutOfRange(t *testing.T) {
	var loc Location
	assert.Error(t, json.Unmarshal([]byte(`{"top":1e30}`), &loc))
	assert.Error(t, json.Unmarshal([]byte(`{"left":"-1e12"}`), &loc))
	assert.Error(t, json.Unmarshal([]byte(`{"width":"NaN"}`), &loc))

	require.NoError(t, json.Unmarshal([]byte(`{"top":2147483647}`), &loc))
	assert.Equal(t, FlexibleInt(2147483647), loc.Top)
}

func TestParseResponse_HugeCoordinateIsNoData(t *testing.T) {
	raw := `{"candidates":[{"content":{"parts":[{"words_result":[{"words":"x","location":{"top":1e30,"left":1,"width":1,"height":1}}]}]}}]}`

	_, _, err := parseGeminiResponse(raw)

	var noData *NoDataError
	require.ErrorAs(t, err, &noData)
	assert.Equal(t, raw, noData.Raw)
	assert.Contains(t, err.Error(), "out of range")
}
