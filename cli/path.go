package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/simpleproc/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config.yaml"

var defaultDirMode os.FileMode = 0o700

// exeRules rewrite the executable name into the application directory name.
var exeRules = []struct {
	pattern *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`^__debug_bin\d*$`), pkg.Name}, // dlv output
	{regexp.MustCompile(`^\.+`), ""},
}

// basePrefix returns the name of the per-user configuration and cache
// directories: the executable base name without extension, rewritten by
// exeRules.
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))

		for _, r := range exeRules {
			id = r.pattern.ReplaceAllString(id, r.replace)
		}

		if id == "" {
			return pkg.Name
		}

		return id
	},
)

// userDir returns the application subdirectory of the directory reported by
// base, falling back to home/rel and then to the working directory.
func userDir(base func() (string, error), rel string) string {
	dir, err := base()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, rel)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, basePrefix())
}

// configDir returns the configuration directory path.
var configDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// cacheDir returns the directory of transient files such as the REPL
// history and profiles.
var cacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// configPath joins elem onto the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
