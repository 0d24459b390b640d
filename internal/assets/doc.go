// Package assets provides the stylesheets applied to preview pages.
//
// # Lookup
//
// Styles are resolved by name:
//
//	StyleLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in styles compiled into the binary
//	    ├── FilesystemLoader  - {dir}/{name}.css on disk
//	    └── Resolver          - custom directory first, then built-in
//
// A custom directory may shadow a built-in style of the same name. Only a
// missing style falls through to the built-in set; read errors and invalid
// names do not.
//
// # Security
//
// Names may not contain path separators or dots. FilesystemLoader resolves
// symlinks and refuses files outside its directory.
package assets
