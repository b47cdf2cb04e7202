package domain

// Command is a process invocation requested by a recipe helper.
type Command struct {
	// Args holds the program and its arguments.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env overrides variables on top of the inherited allow-list.
	Env map[string]string
}

// FileHash holds the content digests of one file.
type FileHash struct {
	Path   string
	Size   int64
	SHA256 string
	SHA512 string
	XXH64  string
}
