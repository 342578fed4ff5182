package domain

import "fmt"

// TemplateRef identifies a container template archive in a storage's cache.
// Name is either a full archive file name or a prefix such as
// "debian-12-standard" that resolves to the newest matching archive.
type TemplateRef struct {
	Storage string
	Name    string
}

// VolID renders the volume identifier passed to pct create.
func (t TemplateRef) VolID() string {
	return fmt.Sprintf("%s:vztmpl/%s", t.Storage, t.Name)
}

func (t TemplateRef) String() string {
	return t.VolID()
}
