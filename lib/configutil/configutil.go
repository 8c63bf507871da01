package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

func localName(name string) string {
	dirname := filepath.Dir(name)
	prefixname, ext := splitExt(filepath.Base(name))
	return filepath.Join(dirname, fmt.Sprintf("%s.local.%s", prefixname, ext))
}

func readInto[T any](path string, out *T) (bool, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads a json5 configuration file, `name` should come with a file extension,
// it will automatically be lopped off to produce the other extensions.
// this function will merge the following sources, where higher number is more prioritized.
//  1. `defaults`
//  2. <name>.<ext>
//  3. <name>.local.<ext>
//
// when neither file exists, `defaults` is returned along with os.ErrNotExist.
func ReadConfig[T any](name string, defaults T) (T, error) {
	var out T

	found, err := readInto(name, &out)
	if err != nil {
		return defaults, err
	}

	localPath := localName(name)
	var override T
	foundLocal, err := readInto(localPath, &override)
	if err != nil {
		return defaults, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return defaults, err
		}
		slog.Info("merging config with local overrides", "local", localPath)
	}

	err = mergo.Merge(&out, defaults)
	if err != nil {
		return defaults, err
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}
