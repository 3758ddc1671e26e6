// Package generation defines the boundary interface for AI-assisted task
// draft generation and the error taxonomy its implementations return.
// The Gemini-backed implementation lives in internal/platform/gemini.
package generation
