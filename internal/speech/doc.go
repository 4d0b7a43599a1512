// Package speech defines the transcription and synthesis contracts used by
// the audio and text conversion stages.
package speech
