// Package popup holds the generated accessor for the Popup template: a root
// element wrapping one "content" insertion point rendered as div.Popup.
package popup

//go:generate go run ../../../cmd/tardigrade-gen -manifest ../tardigrade.yaml
