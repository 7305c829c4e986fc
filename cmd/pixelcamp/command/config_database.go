package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

type DatabaseConfig struct {
	Url string `json:"url"`
}

func (c *DatabaseConfig) validate() error {
	el := errors.NewErrorList()

	if c.Url == "" {
		el.Add(fmt.Errorf("url is required"))
	}

	return el.Err()
}
