package configs

import (
	"os"
	"path/filepath"
)

const FileName = "mts.cue"

// Discover returns existing config files, most specific first: the working
// directory, the user config directory, then /etc.
func Discover(name string) (ret []string) {
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, "mts"))
	}
	dirs = append(dirs, "/etc/mts")
	for _, dir := range dirs {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			ret = append(ret, p)
		}
	}
	return
}
