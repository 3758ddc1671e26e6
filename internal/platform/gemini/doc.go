// Package gemini provides a task-draft generator backed by Google's Gemini
// API. It turns free-form meeting-minutes text into structured task drafts
// and maps API failures onto the generation package's error taxonomy.
package gemini
