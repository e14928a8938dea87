package models

// Segment is a timestamped portion of a transcript
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription is the output of one transcriber invocation
type Transcription struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// FinalizeResult is returned when a recording session is finalized
type FinalizeResult struct {
	SessionID        string `json:"session_id"`
	FinalTranscript  string `json:"final_transcript"`
	Words            int    `json:"words"`
	AudioFilename    string `json:"audio_filename"`
	AudioPath        string `json:"audio_path"`
	RawAudioFilename string `json:"raw_audio_filename"`
	RawAudioPath     string `json:"raw_audio_path"`
	Converted        bool   `json:"converted"`
	Note             string `json:"note"`
}

// ChunkPreview is the best-effort live transcript returned per ingested chunk
type ChunkPreview struct {
	SessionID  string    `json:"session_id"`
	Index      int       `json:"index"`
	Transcript string    `json:"transcript"`
	Segments   []Segment `json:"segments"`
}

// UploadResult is returned by the one-shot upload transcription endpoint
type UploadResult struct {
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	Note       string    `json:"note"`
	Language   string    `json:"language"`
	Transcript string    `json:"transcript"`
	Segments   []Segment `json:"segments"`
	SizeBytes  int       `json:"size_bytes"`
}

// ImageUploadResult is returned after storing and captioning an uploaded image
type ImageUploadResult struct {
	Filename string   `json:"filename"`
	Path     string   `json:"path"`
	URL      string   `json:"url"`
	Caption  string   `json:"caption"`
	Tags     []string `json:"tags"`
}

// DeleteResult reports per-artifact cleanup outcome for an entry deletion
type DeleteResult struct {
	JSON  bool `json:"json"`
	Audio bool `json:"audio"`
	Raw   bool `json:"raw"`
}
