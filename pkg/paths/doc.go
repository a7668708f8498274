// Package paths provides centralized path handling for packweaver.
//
// Every location an export touches is derived from the loaded settings,
// never from the process working directory:
//
//   - Content root: where the content families (bundles) live
//   - Work directory: where export trees are assembled and archives written
//   - Export tree: <work_dir>/<pack name>, with one sub-directory per
//     sub-tree for dual-tree content types
//   - Archive: <work_dir>/<pack name>.<extension>
//
// # Usage
//
//	p, err := paths.New(settings)
//	if err != nil {
//	    return err
//	}
//
//	tree := p.TreePath("MyPack")              // /var/cache/packweaver/exports/MyPack
//	bp := p.SubTreePath("MyPack", "bp")       // .../exports/MyPack/bp
//	archive := p.ArchivePath("MyPack", "mcaddon")
//
// Pack names must pass ValidatePackName before they are joined into a
// path; SanitizePackName turns arbitrary input into a valid name.
package paths
