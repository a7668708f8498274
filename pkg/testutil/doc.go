// Package testutil provides fixtures for testing packweaver components.
//
// Key components:
//   - BundleFixture: declarative content family (categories, priorities,
//     compatibility groups, templates) written onto an afero filesystem
//   - WriteFiles / ReadFile: terse helpers for source and destination trees
//
// All fixtures target afero.MemMapFs so tests never touch the real disk.
package testutil
