package main

import (
	"fmt"
	"net/url"

	"github.com/urfave/cli/v2"
)

var history = cli.Command{
	Name:  "history",
	Usage: "list the deposits and withdrawals of a user",
	Flags: []cli.Flag{
		userFlag,
		&cli.IntFlag{
			Name:  "page",
			Usage: "the page number, 0 lists everything",
		},
		&cli.IntFlag{
			Name:  "size",
			Usage: "the number of records per page",
			Value: 10,
		},
	},
	Action: historyAction,
}

func historyAction(ctx *cli.Context) error {
	client, err := getDaemonClient()
	if err != nil {
		return err
	}

	path := "/api/anchor/history/" + url.PathEscape(ctx.String("user"))
	if page := ctx.Int("page"); page > 0 {
		path += fmt.Sprintf("?page=%d&size=%d", page, ctx.Int("size"))
	}
	return client.get(path)
}
