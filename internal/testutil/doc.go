// Package testutil provides fixtures, a mock clock and small assertion and
// HTTP helpers for the oauth2-engine tests.
package testutil
