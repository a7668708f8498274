// Package bundle is the configuration store of the pack composition engine.
//
// A bundle is the static data of one content type: which directory each
// category lives in, the priority weight of every identifier, the
// compatibility groups by arity, and the manifest templates. Bundles are
// read from the content family directory:
//
//	jsons/map/name_to_json.json       category label -> category file
//	jsons/packs/<category file>       location (or topic) and packs[].pack_id
//	jsons/map/priority.json           identifier -> weight
//	jsons/map/compatibility.json      "<n>way" -> member tuples
//	jsons/packs/compatibilities.json  max_simultaneous, "<n>way" -> {location, overwrite}
//	jsons/manifest.json               template (or jsons/<sub>manifest.json per sub-tree)
//	pack_icons/pack_icon.png
//
// Every loaded bundle is validated before use; a Store caches validated
// bundles per content type.
package bundle
