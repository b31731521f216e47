// Package errors provides coded, structured errors for lux.
//
// Every failure the runtime reports (rejected writes, subscriber panics,
// duplicate keys, configuration problems) carries a stable code that maps
// to a registered template:
//   - A short message describing the error
//   - A detailed explanation
//   - An optional hint on how to fix it
//
// # Error Categories
//
//   - reactivity: writes to computeds or read-only state, subscriber failures
//   - reconcile: duplicate keys, missing display handles, unknown node kinds
//   - config: invalid or unreadable configuration files
//   - cli: command-line failures
//
// # Usage
//
//	err := errors.New(errors.CodeInvalidMutation).
//	    WithDetail(`key "total" is a computed member`)
//
//	fmt.Println(err.Format())
//
// Runtime packages mostly log the code alongside a sentinel error instead of
// returning a LuxError, so the code can be grepped in structured logs:
//
//	logger.Warn("write rejected", "code", errors.CodeReadOnly, "key", key)
package errors
