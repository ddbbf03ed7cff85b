// Package catalog defines the storefront's product record and its mapping
// from the backend wire shape.
//
// Every successful catalog query produces a fresh []Item that replaces the
// visible catalog wholesale. Items are never merged across responses.
package catalog
