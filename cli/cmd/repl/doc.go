// Package repl implements an interactive session for evaluating template
// expressions, built on Bubble Tea.
package repl
