package main

import (
	"net/url"

	"github.com/urfave/cli/v2"
)

var connect = cli.Command{
	Name: "connect",
	Usage: "connect a ledger account to a user, used by the operations " +
		"requested without an address",
	Flags: []cli.Flag{
		userFlag,
		&cli.StringFlag{
			Name:  "address",
			Usage: "the ledger account to connect, if missing the connected one is shown",
		},
	},
	Action: connectAction,
}

func connectAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}

	address := ctx.String("address")
	if address == "" {
		return client.get("/api/anchor/connect/" + url.PathEscape(ctx.String("user")))
	}
	return client.post("/api/anchor/connect", map[string]string{
		"userId":  ctx.String("user"),
		"address": address,
	})
}
