// Package models contain needed models
package models

// EmbedResponse represents the response after embedding a payload.
// Success responses stream the stego carrier directly, so this is only
// serialized on the error path.
type EmbedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ExtractResponse represents the response after extraction
type ExtractResponse struct {
	Success  bool   `json:"success"`
	Kind     string `json:"kind,omitempty"`
	Value    string `json:"value,omitempty"`
	Filename string `json:"filename,omitempty"`
	Message  string `json:"message,omitempty"`
}

// StegoConfig represents configuration for a single embed operation
type StegoConfig struct {
	Password       string
	Compress       bool
	SecretFilename string
}

// CarrierMetadata describes a decoded cover carrier
type CarrierMetadata struct {
	Kind       string // "image" or "audio"
	Width      int
	Height     int
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   float64
	TotalBytes int
}
