// Package media describes imported media assets as the export pipeline
// consumes them. Import and metadata probing happen elsewhere; this package
// only carries the resolved descriptor surface and id lookup.
package media
