// Package execshell runs git commands through a structured executor with
// lifecycle logging and typed failures.
package execshell
