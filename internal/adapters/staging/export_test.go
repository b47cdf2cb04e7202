package staging

// SetRename replaces the rename function used by Commit.
func (i *Installer) SetRename(fn func(oldpath, newpath string) error) {
	i.rename = fn
}
