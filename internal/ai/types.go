// types.go - OCR request/result model and the structured words_result payload

package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// OCRRequest is the immutable input of a single recognition call
type OCRRequest struct {
	ImageData []byte
	Language  LangEnum
}

// BoxPoint is one corner of a bounding quadrilateral
type BoxPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// OCRContent is one recognized line or word group
type OCRContent struct {
	Text      string     `json:"text"`
	BoxPoints []BoxPoint `json:"box_points"`
}

// OCRResult is produced once per call and owned by the caller
type OCRResult struct {
	OCRContents []OCRContent `json:"contents"`
}

// Text joins all recognized contents with newlines
func (r *OCRResult) Text() string {
	lines := make([]string, len(r.OCRContents))
	for i, c := range r.OCRContents {
		lines[i] = c.Text
	}
	return strings.Join(lines, "\n")
}

// Location is the rectangle reported for a words_result entry
type Location struct {
	Top    FlexibleInt `json:"top"`
	Left   FlexibleInt `json:"left"`
	Width  FlexibleInt `json:"width"`
	Height FlexibleInt `json:"height"`
}

// WordsResultItem is one entry of the structured words_result array
type WordsResultItem struct {
	Words    string   `json:"words"`
	Location Location `json:"location"`
}

// FlexibleInt accepts JSON numbers (rounded) and numeric strings
type FlexibleInt int

func (f *FlexibleInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		return f.set(num)
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("cannot unmarshal %s as int or string", string(data))
	}

	str = strings.TrimSpace(str)
	if str == "" {
		*f = 0
		return nil
	}

	parsed, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return fmt.Errorf("cannot parse string %q as int: %w", str, err)
	}
	return f.set(parsed)
}

// set rounds v; NaN and values beyond the int32 range are rejected
func (f *FlexibleInt) set(v float64) error {
	rounded := math.Round(v)
	if math.IsNaN(rounded) || math.Abs(rounded) > math.MaxInt32 {
		return fmt.Errorf("coordinate %v out of range", v)
	}
	*f = FlexibleInt(rounded)
	return nil
}

// BoxPointsFromLocation returns the 4 corners in the fixed order
// top-left, top-right, bottom-right, bottom-left.
func BoxPointsFromLocation(loc Location) []BoxPoint {
	top, left := int(loc.Top), int(loc.Left)
	right, bottom := left+int(loc.Width), top+int(loc.Height)

	return []BoxPoint{
		{X: left, Y: top},
		{X: right, Y: top},
		{X: right, Y: bottom},
		{X: left, Y: bottom},
	}
}
