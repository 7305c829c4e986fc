package command

import (
	"fmt"
	"os"

	"github.com/pixelcamp/pixelcamp/internal/catalog"
	"github.com/pixelcamp/pixelcamp/internal/storage"
	"github.com/pixil98/go-errors"
)

type CatalogConfig struct {
	Items   AssetConfig[*catalog.ItemDefinition] `json:"items"`
	Weapons AssetConfig[*catalog.WeaponStats]    `json:"weapons"`
}

func (c *CatalogConfig) BuildCatalog() (*catalog.Catalog, error) {
	items, err := c.Items.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating item store: %w", err)
	}
	weapons, err := c.Weapons.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating weapon store: %w", err)
	}

	return catalog.New(items, weapons), nil
}

func (c *CatalogConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Items.Validate("items"))
	el.Add(c.Weapons.Validate("weapons"))
	return el.Err()
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
