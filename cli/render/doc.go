// Package render formats expressions and diagnostics for a terminal.
//
// Expressions are tokenized with the Twig lexer of chroma and colored with
// a chroma style through a lipgloss renderer, so output to a writer that is
// not a terminal carries no escape sequences.
package render
