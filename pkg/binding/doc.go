// Package binding is the runtime that generated template accessors embed.
//
// A Template renders typed DTOs to markup or elements and wraps elements in
// Instances. Registration with the injected engine happens once per engine and
// template name, however many Templates are bound to it. Guards are held until
// ReleaseEngine is called.
//
// User data lives in one package level Store keyed weakly by element
// identity: every Instance wrapping an element sees the same value, and the
// entry goes away with the element.
package binding
