package dav

import (
	"strings"

	"github.com/bucketdav/bucketdav/pkg/store"
)

// childEntry is one immediate child of a directory view: a real object,
// or a subdirectory synthesized from deeper keys (info == nil).
type childEntry struct {
	key  string
	info *store.ObjectInfo
}

// directChildren computes the immediate children of dir from a flat
// listing of every object under it. A key exactly one level below dir
// is a child file; deeper keys collapse into a single synthetic
// directory entry placed where the first such key appears in the
// listing. The seen set starts with dir itself so the directory is
// never re-emitted as its own child.
func directChildren(dir string, objects []store.ObjectInfo) []childEntry {
	seen := map[string]bool{dir: true}
	var children []childEntry
	for i := range objects {
		obj := &objects[i]
		rel := strings.TrimPrefix(obj.Key[len(dir):], "/")
		if !strings.Contains(rel, "/") {
			children = append(children, childEntry{key: obj.Key, info: obj})
			continue
		}
		name, _, _ := strings.Cut(rel, "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		children = append(children, childEntry{key: joinKey(dir, name)})
	}
	return children
}

func joinKey(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
