// Package output writes snapshot sequences as CSV or JSON Lines.
package output
