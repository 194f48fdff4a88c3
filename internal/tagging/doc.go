// Package tagging embeds title, artist, album and cover art into finished
// audio files and fetches the cover image.
package tagging
