package chat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pixelcamp/pixelcamp/internal/catalog"
	"github.com/pixelcamp/pixelcamp/internal/game"
)

// Message is one relayed chat line.
type Message struct {
	From string `json:"from"`
	Text string `json:"text"`
}

// CommandResult is what a slash command produced: a private notice for the
// sender, and optionally an inventory change the caller must broadcast and
// persist.
type CommandResult struct {
	Notice    string
	Inventory *game.InventoryResult
}

type handlerFunc func(connId string, args []string) (*CommandResult, error)

// Processor relays chat lines and runs slash commands.
type Processor struct {
	registry *game.Registry
	catalog  *catalog.Catalog
	handlers map[string]handlerFunc
}

// NewProcessor creates a chat Processor with the built-in command set.
func NewProcessor(reg *game.Registry, cat *catalog.Catalog) *Processor {
	p := &Processor{
		registry: reg,
		catalog:  cat,
	}
	p.handlers = map[string]handlerFunc{
		"additem": p.handleAddItem,
	}
	return p
}

// Relay builds the broadcast message for a plain chat line. The text passes
// through untouched.
func (p *Processor) Relay(connId, text string) (*Message, error) {
	ps := p.registry.Get(connId)
	if ps == nil {
		return nil, game.ErrNotAuthenticated
	}
	return &Message{From: ps.Name, Text: text}, nil
}

// Command parses and runs a slash command line.
func (p *Processor) Command(connId, line string) (*CommandResult, error) {
	fields := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(fields) == 0 {
		return nil, game.NewUserError("Empty command.")
	}

	handler, ok := p.handlers[strings.ToLower(fields[0])]
	if !ok {
		return nil, game.NewUserError(fmt.Sprintf("Unknown command %q.", fields[0]))
	}
	return handler(connId, fields[1:])
}

const addItemNotice = `Added {{ .Added }} x {{ .Name }}{{ if gt .Dropped 0 }} ({{ .Dropped }} dropped){{ end }}.`

// handleAddItem implements "/additem <name> [qty]". Multi-word item names are
// supported; a trailing number is the quantity.
func (p *Processor) handleAddItem(connId string, args []string) (*CommandResult, error) {
	if len(args) == 0 {
		return nil, game.NewUserError("Usage: /additem <name> [qty]")
	}

	qty := 1
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[len(args)-1]); err == nil {
			qty = n
			args = args[:len(args)-1]
		}
	}
	if qty < 1 {
		return nil, game.NewUserError("Quantity must be at least 1.")
	}
	name := strings.Join(args, " ")

	itemId, def := p.catalog.ItemByName(name)
	if def == nil {
		return nil, game.NewUserError(fmt.Sprintf("No such item %q.", name))
	}

	res, err := p.registry.AddItem(connId, itemId, qty)
	if err != nil {
		return nil, err
	}

	notice, err := expandTemplate(addItemNotice, struct {
		Name    string
		Added   int
		Dropped int
	}{
		Name:    def.Name,
		Added:   res.Added,
		Dropped: qty - res.Added,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering notice: %w", err)
	}

	return &CommandResult{Notice: notice, Inventory: res}, nil
}
