package handler

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/core/service"
)

const (
	MsgACK                  = "ACK"
	MsgUnknownItem          = "NAK Unknown Item"
	MsgAddSyntax            = "NAK Incorrect syntax."
	MsgRemoveSyntax         = "NAK Incorrect Syntax"
	MsgInsufficientQuantity = "NAK Insufficient Quantity"
	MsgQuantityOverflow     = "NAK Quantity Overflow"
	MsgSaveFailed           = "NAK Unable to save"
	MsgInternalError        = "NAK Internal Error"
	MsgUnrecognizedCommand  = "Unrecognized command"
)

const itemArgSeparator = ":"

// Inventory is the set of operations the dispatcher drives.
type Inventory interface {
	Add(ctx context.Context, itemID string, quantity uint16) error
	Remove(ctx context.Context, itemID string, quantity uint16) error
	Print(w io.Writer) error
	Save(ctx context.Context) error
}

// Response is the result of one command line. Output holds any text printed
// before the ACK/NAK message.
type Response struct {
	Output  string
	Message string
	Quit    bool
}

// Dispatcher turns single command lines into inventory operations.
type Dispatcher struct {
	inventory Inventory
	logger    *zap.Logger
}

func NewDispatcher(inventory Inventory, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{inventory: inventory, logger: logger}
}

func (d *Dispatcher) Dispatch(ctx context.Context, line string) Response {
	verb, rest := splitVerb(line)

	switch domain.Verb(verb) {
	case domain.VerbAdd:
		return d.add(ctx, rest)
	case domain.VerbRemove:
		return d.remove(ctx, rest)
	case domain.VerbPrint:
		return d.print()
	case domain.VerbQuit:
		return d.quit(ctx)
	default:
		d.logger.Debug("unrecognized command", zap.String("verb", verb))
		return Response{Message: MsgUnrecognizedCommand}
	}
}

// Reject answers a line that could not be read whole. Only its verb is
// trusted; add and remove get their syntax NAK.
func (d *Dispatcher) Reject(line string) Response {
	verb, _ := splitVerb(line)

	switch domain.Verb(verb) {
	case domain.VerbAdd:
		return Response{Message: MsgAddSyntax}
	case domain.VerbRemove:
		return Response{Message: MsgRemoveSyntax}
	default:
		return Response{Message: MsgUnrecognizedCommand}
	}
}

func (d *Dispatcher) add(ctx context.Context, args string) Response {
	itemID, qty, ok := parseItemArg(args)
	if !ok {
		return Response{Message: MsgAddSyntax}
	}

	err := d.inventory.Add(ctx, itemID, qty)
	if err != nil {
		d.logger.Debug("add rejected", zap.String("item_id", itemID), zap.Error(err))

		message := MsgInternalError
		if errors.Is(err, service.ErrUnknownItem) {
			message = MsgUnknownItem
		} else if errors.Is(err, service.ErrQuantityOverflow) {
			message = MsgQuantityOverflow
		}
		return Response{Message: message}
	}

	return Response{Message: MsgACK}
}

func (d *Dispatcher) remove(ctx context.Context, args string) Response {
	itemID, qty, ok := parseItemArg(args)
	if !ok {
		return Response{Message: MsgRemoveSyntax}
	}

	err := d.inventory.Remove(ctx, itemID, qty)
	if err != nil {
		d.logger.Debug("remove rejected", zap.String("item_id", itemID), zap.Error(err))

		message := MsgInternalError
		if errors.Is(err, service.ErrInsufficientQuantity) {
			message = MsgInsufficientQuantity
		}
		return Response{Message: message}
	}

	return Response{Message: MsgACK}
}

func (d *Dispatcher) print() Response {
	var sb strings.Builder
	if err := d.inventory.Print(&sb); err != nil {
		d.logger.Error("render failed", zap.Error(err))
		return Response{Message: MsgInternalError}
	}
	return Response{Output: sb.String(), Message: MsgACK}
}

func (d *Dispatcher) quit(ctx context.Context) Response {
	if err := d.inventory.Save(ctx); err != nil {
		d.logger.Error("save failed", zap.Error(err))
		return Response{Message: MsgSaveFailed}
	}
	return Response{Message: MsgACK, Quit: true}
}

// splitVerb returns the first whitespace-delimited token and the trimmed
// remainder of the line.
func splitVerb(line string) (string, string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

// parseItemArg parses ID:QTY. The id is everything before the first colon,
// up to 15 bytes; the quantity is an unsigned decimal that fits a uint16.
func parseItemArg(args string) (string, uint16, bool) {
	itemID, rawQty, found := strings.Cut(args, itemArgSeparator)
	if !found || itemID == "" || len(itemID) > domain.MaxIDLen {
		return "", 0, false
	}

	qty, err := strconv.ParseUint(rawQty, 10, 16)
	if err != nil {
		return "", 0, false
	}
	return itemID, uint16(qty), true
}
