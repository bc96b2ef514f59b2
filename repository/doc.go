// Package repository is the persistence boundary of the todo hierarchy. A
// generic bun Repository carries CRUD, offset pages and the id-ordered cursor
// fetches; the typed repositories add owner scoping and cascading deletes.
package repository
