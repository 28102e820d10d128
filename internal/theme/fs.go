// fs.go holds a tiny helper for walking a template tree when glob patterns
// such as "**/*.html" are not available in the Go standard library.  It
// works on any fs.FS, so the embedded templates and an on-disk override
// directory go through the same code.
package theme

import (
	"io/fs"
	"strings"
)

// CollectHTML walks root inside fsys and returns every *.html path in
// lexical order.  Paths are slash-separated and relative to fsys, ready for
// template.ParseFS.
//
// Callers typically pass:
//
//	files, _ := CollectHTML(os.DirFS("/srv/primer/theme"), "templates")
//	tpl.ParseFS(fsys, files...)
func CollectHTML(fsys fs.FS, root string) ([]string, error) {
	var files []string

	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil { // propagate filesystem errors immediately
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
