// Package command provides the timekeep-cli commands.
//
// It uses urfave/cli/v2 for parsing. Every command reports failures as
// plain messages and returns nil, so the process exits 0 unless argument
// parsing itself fails.
package command
