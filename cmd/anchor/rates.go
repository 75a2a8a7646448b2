package main

import "github.com/urfave/cli/v2"

var rates = cli.Command{
	Name:   "rates",
	Usage:  "list the exchange rates of the supported currencies",
	Action: ratesAction,
}

func ratesAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}
	return client.get("/api/anchor/rates")
}
