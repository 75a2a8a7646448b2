package main

import (
	"net/url"

	"github.com/urfave/cli/v2"
)

var (
	userFlag = &cli.StringFlag{
		Name:     "user",
		Usage:    "the id of the user owning the operation",
		Required: true,
	}
	currencyFlag = &cli.StringFlag{
		Name:  "currency",
		Usage: "the fiat currency code, one of USD, EUR, INR, GBP",
		Value: "USD",
	}
	secretKeyFlag = &cli.StringFlag{
		Name:  "secret_key",
		Usage: "the signing credential, if omitted the operation settles with external custody",
	}
	idFlag = &cli.StringFlag{
		Name:     "id",
		Usage:    "the id of the operation",
		Required: true,
	}
)

var deposit = cli.Command{
	Name:  "deposit",
	Usage: "deposit fiat and credit the equivalent value to a ledger account",
	Flags: []cli.Flag{
		userFlag,
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the fiat amount to deposit",
			Required: true,
		},
		currencyFlag,
		&cli.StringFlag{
			Name:  "address",
			Usage: "the ledger account to credit",
		},
		secretKeyFlag,
		&cli.BoolFlag{
			Name:  "create_only",
			Usage: "only create the deposit, it must be confirmed later",
		},
	},
	Action: depositAction,
}

var confirmdeposit = cli.Command{
	Name:  "confirmdeposit",
	Usage: "confirm a previously created deposit",
	Flags: []cli.Flag{
		idFlag,
		&cli.StringFlag{
			Name:  "address",
			Usage: "the ledger account to credit, if not given at creation",
		},
		secretKeyFlag,
	},
	Action: confirmDepositAction,
}

var canceldeposit = cli.Command{
	Name:   "canceldeposit",
	Usage:  "cancel a deposit not yet settled on the ledger",
	Flags:  []cli.Flag{idFlag},
	Action: cancelDepositAction,
}

var getdeposit = cli.Command{
	Name:   "getdeposit",
	Usage:  "get info about a deposit",
	Flags:  []cli.Flag{idFlag},
	Action: getDepositAction,
}

func depositAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}

	req := map[string]string{
		"userId":             ctx.String("user"),
		"amount":             ctx.String("amount"),
		"currency":           ctx.String("currency"),
		"destinationAddress": ctx.String("address"),
		"secretKey":          ctx.String("secret_key"),
	}
	if ctx.Bool("create_only") {
		return client.post("/api/anchor/deposit/create", req)
	}
	return client.post("/api/anchor/deposit", req)
}

func confirmDepositAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}

	return client.post(
		"/api/anchor/deposit/"+url.PathEscape(ctx.String("id"))+"/confirm",
		map[string]string{
			"destinationAddress": ctx.String("address"),
			"secretKey":          ctx.String("secret_key"),
		},
	)
}

func cancelDepositAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}
	return client.post(
		"/api/anchor/deposit/"+url.PathEscape(ctx.String("id"))+"/cancel", nil,
	)
}

func getDepositAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}
	return client.get("/api/anchor/deposit/" + url.PathEscape(ctx.String("id")))
}
