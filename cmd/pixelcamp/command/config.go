package command

import (
	"github.com/pixil98/go-errors"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Nats     NatsConfig     `json:"nats"`
	Database DatabaseConfig `json:"database"`
	Catalog  CatalogConfig  `json:"catalog"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.Server.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Database.validate())
	el.Add(c.Catalog.validate())

	return el.Err()
}
