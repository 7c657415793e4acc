package feedback

import "fmt"

type Rating string

const (
	RatingExcellent      Rating = "excellent"
	RatingGood           Rating = "good"
	RatingSatisfactory   Rating = "satisfactory"
	RatingUnsatisfactory Rating = "unsatisfactory"
	RatingNoData         Rating = "no_data"
)

// RatingConfig holds the lower bounds (inclusive, in percent of official red)
// for each rating and the display label of every rating.
type RatingConfig struct {
	Excellent    float64
	Good         float64
	Satisfactory float64
	Labels       map[Rating]string
}

func DefaultRatingConfig() RatingConfig {
	return RatingConfig{
		Excellent:    75,
		Good:         50,
		Satisfactory: 25,
		Labels:       DefaultRatingLabels(),
	}
}

func DefaultRatingLabels() map[Rating]string {
	return map[Rating]string{
		RatingExcellent:      "Excelent",
		RatingGood:           "Bun",
		RatingSatisfactory:   "Satisfăcător",
		RatingUnsatisfactory: "Nesatisfăcător",
		RatingNoData:         "Nu există date",
	}
}

func (c RatingConfig) Rate(percentageRed float64) Rating {
	switch {
	case percentageRed >= c.Excellent:
		return RatingExcellent
	case percentageRed >= c.Good:
		return RatingGood
	case percentageRed >= c.Satisfactory:
		return RatingSatisfactory
	default:
		return RatingUnsatisfactory
	}
}

func (c RatingConfig) Label(r Rating) string {
	if label, ok := c.Labels[r]; ok && label != "" {
		return label
	}
	return string(r)
}

func (c RatingConfig) Validate() error {
	for name, v := range map[string]float64{"excellent": c.Excellent, "good": c.Good, "satisfactory": c.Satisfactory} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s threshold %.1f out of range [0,100]", name, v)
		}
	}
	if !(c.Excellent > c.Good && c.Good > c.Satisfactory) {
		return fmt.Errorf("rating thresholds must be strictly descending, got %.1f/%.1f/%.1f", c.Excellent, c.Good, c.Satisfactory)
	}
	return nil
}
