// Package cli implements the tradeguard command tree.
//
// Every command that talks to the backend builds an App for the duration of
// the call: configuration is loaded, the local session database opened and
// the saved session restored. Commands that need a signed-in user fail
// early with a hint to run "tradeguard login".
package cli
