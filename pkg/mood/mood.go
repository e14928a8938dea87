// Package mood turns an emotion label distribution into a single signed
// score on [-100, +100].
package mood

import (
	"context"
	"math"
	"sort"
	"strings"

	"lunori/pkg/models"
)

// maxClassifiedRunes bounds what goes to the classifier; longer documents
// get their mood from this prefix.
const maxClassifiedRunes = 2000

// valence maps each classifier label to a signed weight. Weights stay in
// [-1, 1] so the normalized weighted sum cannot leave [-100, 100].
var valence = map[string]float64{
	"joy":      +1.0,
	"love":     +0.9,
	"surprise": +0.2, // assume mostly non-negative
	"sadness":  -1.0,
	"anger":    -0.9,
	"fear":     -0.8,
}

// Classifier is the single capability this package needs
type Classifier interface {
	ClassifyEmotion(ctx context.Context, text string) ([]models.EmotionScore, error)
}

// Analyze scores a text. Empty or whitespace-only text short-circuits to a
// zero mood without calling the model.
func Analyze(ctx context.Context, classifier Classifier, text string) (*models.MoodReport, error) {
	if strings.TrimSpace(text) == "" {
		return &models.MoodReport{
			Mood:        0,
			TopEmotions: []models.EmotionScore{},
			All:         map[string]float64{},
		}, nil
	}

	runes := []rune(text)
	if len(runes) > maxClassifiedRunes {
		text = string(runes[:maxClassifiedRunes])
	}

	scores, err := classifier.ClassifyEmotion(ctx, text)
	if err != nil {
		return nil, err
	}

	return Aggregate(scores), nil
}

// Aggregate normalizes a raw label distribution and folds it into a mood
// report. It is deterministic given identical scores.
func Aggregate(scores []models.EmotionScore) *models.MoodReport {
	total := 0.0
	for _, s := range scores {
		total += s.Score
	}
	if total == 0 {
		total = 1.0
	}

	norm := make([]models.EmotionScore, len(scores))
	for i, s := range scores {
		norm[i] = models.EmotionScore{Label: s.Label, Score: s.Score / total}
	}

	moodFloat := 0.0
	for _, s := range norm {
		moodFloat += s.Score * valence[s.Label]
	}
	mood := int(math.Round(moodFloat * 100))

	top := make([]models.EmotionScore, len(norm))
	copy(top, norm)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Score > top[j].Score
	})
	if len(top) > 3 {
		top = top[:3]
	}

	all := make(map[string]float64, len(norm))
	for _, s := range norm {
		all[s.Label] = math.Round(s.Score*10000) / 10000
	}

	return &models.MoodReport{Mood: mood, TopEmotions: top, All: all}
}
