package chatinterface

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/stellrflow/anchord/internal/core/application"
)

const (
	cmdStart          = "/start"
	cmdHelp           = "/help"
	cmdConnect        = "/connect"
	cmdAddFunds       = "/addfunds"
	cmdWithdraw       = "/withdraw"
	cmdRates          = "/rates"
	cmdTxHistory      = "/txhistory"
	cmdDepositStatus  = "/depositstatus"
	cmdWithdrawStatus = "/withdrawstatus"

	// maxHistoryEntries is the number of most recent records per kind listed
	// by /txhistory.
	maxHistoryEntries = 5
)

// Bot translates chat commands into ramp operations and formats the outcome
// as a Markdown reply. The chat id is the user id, so the address connected
// with /connect is also used by REST requests carrying the same chat id.
type Bot interface {
	HandleCommand(ctx context.Context, chatID, text string) string
}

type bot struct {
	ramp application.RampService
}

type commandHandler func(b *bot, ctx context.Context, chatID string, args []string) string

var handlers = map[string]commandHandler{
	cmdStart:          (*bot).start,
	cmdHelp:           (*bot).help,
	cmdConnect:        (*bot).connect,
	cmdAddFunds:       (*bot).addFunds,
	cmdWithdraw:       (*bot).withdraw,
	cmdRates:          (*bot).rates,
	cmdTxHistory:      (*bot).txHistory,
	cmdDepositStatus:  (*bot).depositStatus,
	cmdWithdrawStatus: (*bot).withdrawStatus,
}

func NewBot(ramp application.RampService) (Bot, error) {
	if ramp == nil {
		return nil, fmt.Errorf("missing ramp service")
	}
	return &bot{ramp}, nil
}

func (b *bot) HandleCommand(ctx context.Context, chatID, text string) string {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return "Missing chat id."
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return unknownCommandReply
	}

	// Commands addressed to a bot in a group chat look like /rates@mybot.
	command := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	handler, ok := handlers[command]
	if !ok {
		return unknownCommandReply
	}

	log.WithField("chat", chatID).Debugf("chat: handling %s", command)
	return handler(b, ctx, chatID, fields[1:])
}

func (b *bot) start(_ context.Context, _ string, _ []string) string {
	return welcomeReply + "\n\n" + helpReply
}

func (b *bot) help(_ context.Context, _ string, _ []string) string {
	return helpReply
}

func (b *bot) connect(ctx context.Context, chatID string, args []string) string {
	if len(args) != 1 {
		return "Usage: `/connect <address>`"
	}

	result := b.ramp.ConnectAddress(ctx, chatID, args[0])
	if !result.Success {
		return failureReply(result.Message)
	}
	return fmt.Sprintf("Connected address `%s`.", result.Address)
}

func (b *bot) addFunds(ctx context.Context, chatID string, args []string) string {
	if len(args) < 1 || len(args) > 2 {
		return "Usage: `/addfunds <amount> [currency]`"
	}
	address, reply := b.address(ctx, chatID)
	if address == "" {
		return reply
	}

	result := b.ramp.QuickDeposit(ctx, application.DepositRequest{
		UserID:             chatID,
		Amount:             args[0],
		Currency:           optionalArg(args, 1),
		DestinationAddress: address,
	})
	return formatDepositResult(result)
}

func (b *bot) withdraw(ctx context.Context, chatID string, args []string) string {
	if len(args) < 1 || len(args) > 2 {
		return "Usage: `/withdraw <value> [currency]`"
	}
	address, reply := b.address(ctx, chatID)
	if address == "" {
		return reply
	}

	result := b.ramp.QuickWithdrawal(ctx, application.WithdrawalRequest{
		UserID:        chatID,
		Value:         args[0],
		Currency:      optionalArg(args, 1),
		SourceAddress: address,
	})
	return formatWithdrawalResult(result)
}

func (b *bot) rates(_ context.Context, _ string, _ []string) string {
	return formatRates(b.ramp.Rates())
}

func (b *bot) txHistory(ctx context.Context, chatID string, _ []string) string {
	return formatHistory(b.ramp.History(ctx, chatID, nil))
}

func (b *bot) depositStatus(ctx context.Context, _ string, args []string) string {
	if len(args) != 1 {
		return "Usage: `/depositstatus <id>`"
	}
	return formatDepositStatus(b.ramp.GetDeposit(ctx, args[0]))
}

func (b *bot) withdrawStatus(
	ctx context.Context, _ string, args []string,
) string {
	if len(args) != 1 {
		return "Usage: `/withdrawstatus <id>`"
	}
	return formatWithdrawalStatus(b.ramp.GetWithdrawal(ctx, args[0]))
}

// address returns the address connected by the chat, or the reply to send if
// there is none.
func (b *bot) address(ctx context.Context, chatID string) (string, string) {
	result := b.ramp.ConnectedAddress(ctx, chatID)
	if result.Success {
		return result.Address, ""
	}
	if result.Kind == application.KindValidationFailure {
		return "", notConnectedReply
	}
	return "", failureReply(result.Message)
}

func optionalArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}
