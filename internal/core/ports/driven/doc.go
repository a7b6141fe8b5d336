// Package driven defines the interfaces the core depends on:
// the document source, the catalog store, the ranked search engine and
// configuration. Adapters implement these.
package driven
