package config

// Hobfile mirrors the user configuration file.
type Hobfile struct {
	RecipesPath string `yaml:"recipes_path"`
	Prefix      string `yaml:"prefix"`
	BuildDir    string `yaml:"build_dir"`
	StagingDir  string `yaml:"staging_dir"`
	LockTimeout string `yaml:"lock_timeout"`
	Shell       string `yaml:"shell"`
}

// Environment variables that override the configuration file.
const (
	EnvRecipesPath = "HOB_RECIPES_PATH"
	EnvPrefix      = "HOB_PREFIX"
	EnvBuildDir    = "HOB_BUILD_DIR"
	EnvConfigFile  = "HOB_CONFIG"
)
