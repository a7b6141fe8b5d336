// Package services implements the core application logic: extraction,
// background loading, querying, favourites and export.
package services
