// Package discovery guesses where the game client is installed.
//
// Each Source reads one independent OS signal (the shell MUI cache, the
// firewall rule list, the uninstall registry, or well-known folders on every
// drive) and yields raw directory strings. Sources never fail: an unreadable
// signal yields nothing. The strings are unvalidated; callers canonicalize
// and deduplicate them.
package discovery
