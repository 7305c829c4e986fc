package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
)

type ServerConfig struct {
	Port      uint16 `json:"port"`
	StaticDir string `json:"static_dir,omitempty"`
}

func (c *ServerConfig) validate() error {
	el := errors.NewErrorList()

	if c.Port == 0 {
		el.Add(fmt.Errorf("port must be set to a positive integer"))
	}

	if c.StaticDir != "" {
		info, err := os.Stat(c.StaticDir)
		if err != nil {
			el.Add(fmt.Errorf("static_dir: invalid path %q: %w", c.StaticDir, err))
		} else if !info.IsDir() {
			el.Add(fmt.Errorf("static_dir: %q is not a directory", c.StaticDir))
		}
	}

	return el.Err()
}
