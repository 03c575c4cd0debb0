package cms

import (
	"strconv"
	"strings"
	"time"
)

// RootParentID marks a node that sits at the top level of the tree.
const RootParentID int64 = 0

// PathSeparator delimits ancestor ids inside a materialized path.
const PathSeparator = "|"

// RootPath is the materialized path of a top-level node.
const RootPath = PathSeparator

// Category is one node of the content tree for a single language variant.
// The same id is shared by all language variants of a category.
type Category struct {
	ID       int64  `db:"id"`
	Clang    int64  `db:"clang"`
	Name     string `db:"name"`
	Catname  string `db:"catname"`
	ParentID int64  `db:"re_id"`
	Position int    `db:"pos"`
	Path     string `db:"path"`
	Online   bool   `db:"online"`

	CreateUser string    `db:"createuser"`
	CreateDate time.Time `db:"createdate"`
	UpdateUser string    `db:"updateuser"`
	UpdateDate time.Time `db:"updatedate"`
}

// IsRootCategory reports whether the category sits at the top level.
func (c *Category) IsRootCategory() bool {
	return c.ParentID == RootParentID
}

// ChildPath returns the materialized path of this category's children.
func (c *Category) ChildPath() string {
	return ChildPath(c.Path, c.ID)
}

// ChildPath appends a parent id to its own path, producing the path
// every direct child of that parent carries.
func ChildPath(parentPath string, parentID int64) string {
	return parentPath + strconv.FormatInt(parentID, 10) + PathSeparator
}

// PathContains reports whether id appears as an ancestor in path.
func PathContains(path string, id int64) bool {
	return strings.Contains(path, PathSeparator+strconv.FormatInt(id, 10)+PathSeparator)
}

// PathIDs splits a materialized path into its ancestor ids, root first.
// The root path yields an empty slice.
func PathIDs(path string) []int64 {
	parts := strings.Split(strings.Trim(path, PathSeparator), PathSeparator)
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
