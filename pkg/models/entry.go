package models

// Entry represents one saved journal entry on disk
type Entry struct {
	ID            string             `json:"id"`
	CreatedAt     string             `json:"created_at"`
	AudioFilename string             `json:"audio_filename"`
	AudioPath     string             `json:"audio_path"`
	Transcript    string             `json:"transcript"`
	Words         int                `json:"words"`
	Mood          int                `json:"mood"`
	EmotionsTop3  []EmotionScore     `json:"emotions_top3"`
	EmotionsAll   map[string]float64 `json:"emotions_all"`
	Images        []ImageMeta        `json:"images,omitempty"`
}

// EntryListItem is the reduced projection returned by the listing endpoint
type EntryListItem struct {
	ID            string         `json:"id"`
	CreatedAt     string         `json:"created_at"`
	AudioFilename string         `json:"audio_filename"`
	Words         int            `json:"words"`
	Mood          int            `json:"mood"`
	EmotionsTop3  []EmotionScore `json:"emotions_top3"`
	ImageCount    int            `json:"image_count"`
}

// ImageMeta describes one image attached to an entry
type ImageMeta struct {
	Filename string   `json:"filename"`
	Caption  string   `json:"caption,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// EmotionScore is one label/probability pair from the emotion classifier
type EmotionScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// MoodReport aggregates an emotion distribution into a single mood value
type MoodReport struct {
	Mood        int                `json:"mood"`
	TopEmotions []EmotionScore     `json:"top_emotions"`
	All         map[string]float64 `json:"all"`
}
