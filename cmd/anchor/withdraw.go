package main

import (
	"net/url"

	"github.com/urfave/cli/v2"
)

var withdraw = cli.Command{
	Name:  "withdraw",
	Usage: "debit value from a ledger account and pay out the equivalent fiat",
	Flags: []cli.Flag{
		userFlag,
		&cli.StringFlag{
			Name:     "value",
			Usage:    "the amount of value to withdraw",
			Required: true,
		},
		currencyFlag,
		&cli.StringFlag{
			Name:  "address",
			Usage: "the ledger account to debit",
		},
		secretKeyFlag,
		&cli.BoolFlag{
			Name:  "create_only",
			Usage: "only create the withdrawal, it must be confirmed later",
		},
	},
	Action: withdrawAction,
}

var confirmwithdrawal = cli.Command{
	Name:  "confirmwithdrawal",
	Usage: "confirm a previously created withdrawal",
	Flags: []cli.Flag{
		idFlag,
		&cli.StringFlag{
			Name:  "address",
			Usage: "the ledger account to debit, if not given at creation",
		},
		secretKeyFlag,
		&cli.StringFlag{
			Name:  "treasury",
			Usage: "the account receiving the debited value, defaults to the daemon's one",
		},
	},
	Action: confirmWithdrawalAction,
}

var cancelwithdrawal = cli.Command{
	Name:   "cancelwithdrawal",
	Usage:  "cancel a withdrawal not yet confirmed",
	Flags:  []cli.Flag{idFlag},
	Action: cancelWithdrawalAction,
}

var getwithdrawal = cli.Command{
	Name:   "getwithdrawal",
	Usage:  "get info about a withdrawal",
	Flags:  []cli.Flag{idFlag},
	Action: getWithdrawalAction,
}

func withdrawAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}

	req := map[string]string{
		"userId":         ctx.String("user"),
		"requestedValue": ctx.String("value"),
		"currency":       ctx.String("currency"),
		"sourceAddress":  ctx.String("address"),
		"secretKey":      ctx.String("secret_key"),
	}
	if ctx.Bool("create_only") {
		return client.post("/api/anchor/withdraw/create", req)
	}
	return client.post("/api/anchor/withdraw", req)
}

func confirmWithdrawalAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}

	return client.post(
		"/api/anchor/withdraw/"+url.PathEscape(ctx.String("id"))+"/confirm",
		map[string]string{
			"sourceAddress":   ctx.String("address"),
			"secretKey":       ctx.String("secret_key"),
			"treasuryAddress": ctx.String("treasury"),
		},
	)
}

func cancelWithdrawalAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}
	return client.post(
		"/api/anchor/withdraw/"+url.PathEscape(ctx.String("id"))+"/cancel", nil,
	)
}

func getWithdrawalAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}
	return client.get("/api/anchor/withdraw/" + url.PathEscape(ctx.String("id")))
}
