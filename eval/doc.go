// Package eval measures how strongly an attached injector shifts model
// behavior. A sweep holds the hook registrations fixed, varies injection
// strength, and compares keyword-scored response rates against a
// strength-zero baseline.
package eval
