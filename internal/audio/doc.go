// Package audio plays alert sounds. It uses the beep library to decode WAV,
// OGG and MP3 files once and replay them from memory at a configured volume.
package audio
