// Package errs provides the error vocabulary shared by the domain, the use cases
// and the adapters.
//
// Every error type follows the same shape:
//   - a sentinel (ErrValueIsInvalid, ErrObjectNotFound, ErrRuleViolated, ...)
//   - a struct carrying the details (which parameter, which rule, which id)
//   - New* and New*WithCause constructors
//   - Error() for the message and Unwrap() returning the sentinel
//
// Callers classify with errors.Is against the sentinels; the HTTP adapter maps
// them onto status codes:
//   - ErrValueIsInvalid, ErrValueIsRequired, ErrValueIsOutOfRange: malformed input
//   - ErrRuleViolated: well-formed input refused by a business rule
//   - ErrObjectNotFound: unknown identifier
//   - ErrConflict: a locker or unit already taken by someone else
//   - ErrAccessDenied: acting on another user's resource
package errs
