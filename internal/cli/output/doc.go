// Package output renders timekeep-cli results.
//
// RenderTimers is a pure function from rows to text: the same rows always
// produce the same table. WriteJSON prints raw records for --output json.
package output
