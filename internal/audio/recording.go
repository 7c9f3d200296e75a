package audio

import "github.com/google/uuid"

// Recording is an immutable encoded audio blob plus its duration. It is
// produced by the recorder when capture stops, or by the editor when a cut
// is applied; edits never modify a Recording, they supersede it.
type Recording struct {
	// ID identifies this exact blob. Derived artifacts (enhanced
	// renders) are cached against it.
	ID uuid.UUID

	// Data is the encoded byte stream.
	Data []byte

	// MIMEType declares the container format of Data.
	MIMEType string

	// Duration is the clip length in seconds.
	Duration float64
}

// NewRecording wraps an encoded blob with a fresh identity.
func NewRecording(data []byte, mimeType string, duration float64) *Recording {
	return &Recording{
		ID:       uuid.New(),
		Data:     data,
		MIMEType: mimeType,
		Duration: duration,
	}
}
