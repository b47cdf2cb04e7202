package domain

import "path/filepath"

const (
	// AppName is the name of the tool, used for XDG directories and metadata.
	AppName = "hob"

	// RecipeExt is the file extension of recipe scripts.
	RecipeExt = ".recipe"

	// LockfileName is the name of the lockfile at the root of the recipes path.
	LockfileName = "hob.lock"

	// ConfigFileName is the name of the user configuration file.
	ConfigFileName = "hob.yaml"

	// RecipesDirName is the name of the default recipes directory under the data home.
	RecipesDirName = "recipes"

	// BuildDirName is the name of the default build directory under the cache home.
	BuildDirName = "build"

	// DownloadsDirName is the name of the shared download cache under the cache home.
	DownloadsDirName = "downloads"

	// StagingPrefix prefixes the temporary directories used to stage installs.
	StagingPrefix = ".hob-staging-"

	// DirPerm is the permission for directories created in the destination tree (rwxr-xr-x).
	DirPerm = 0o755

	// PrivateDirPerm is the permission for internal directories (rwxr-x---).
	PrivateDirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// ExecPerm is the permission for installed executables (rwxr-xr-x).
	ExecPerm = 0o755
)

// LockfilePath returns the lockfile location for a recipes path.
func LockfilePath(recipesPath string) string {
	return filepath.Join(recipesPath, LockfileName)
}

// RecipeBuildDir returns the per-recipe build directory under the build root.
func RecipeBuildDir(buildRoot, name string) string {
	return filepath.Join(buildRoot, name)
}

// LockPath returns the advisory lock file guarding path. The lock lives next
// to the guarded file as a hidden sidecar.
func LockPath(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".lock")
}
