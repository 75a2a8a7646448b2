package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stellrflow/anchord/pkg/httputil"
	"github.com/urfave/cli/v2"
)

var (
	anchorDataDir = btcutil.AppDataDir("anchor-cli", false)
	statePath     = filepath.Join(anchorDataDir, "state.json")
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "anchor CLI"
	app.Usage = "Command line interface for anchord daemon operators"
	app.Commands = append(
		app.Commands,
		&config,
		&rates,
		&deposit,
		&confirmdeposit,
		&canceldeposit,
		&getdeposit,
		&withdraw,
		&confirmwithdrawal,
		&cancelwithdrawal,
		&getwithdrawal,
		&history,
		&connect,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(statePath)
	if err != nil {
		return nil, errors.New("get config state error: try 'config init'")
	}
	if err := json.Unmarshal(file, &data); err != nil {
		return nil, fmt.Errorf("invalid config state: %w", err)
	}

	return data, nil
}

func setState(data map[string]string) error {
	if _, err := os.Stat(anchorDataDir); os.IsNotExist(err) {
		if err := os.MkdirAll(anchorDataDir, os.ModeDir|0755); err != nil {
			return err
		}
	}

	currentData, err := getState()
	if err != nil {
		currentData = map[string]string{}
	}

	mergedData := merge(currentData, data)

	jsonString, err := json.Marshal(mergedData)
	if err != nil {
		return err
	}
	if err := os.WriteFile(statePath, jsonString, 0644); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func merge(maps ...map[string]string) map[string]string {
	merge := make(map[string]string, 0)
	for _, m := range maps {
		for k, v := range m {
			merge[k] = v
		}
	}
	return merge
}

// daemonClient performs REST calls against the configured daemon.
type daemonClient struct {
	baseURL string
	client  *httputil.Client
}

func getDaemonClient() (*daemonClient, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}
	address, ok := state["rpcserver"]
	if !ok || address == "" {
		return nil, errors.New("set rpcserver with `config set rpcserver`")
	}
	if !strings.HasPrefix(address, "http://") &&
		!strings.HasPrefix(address, "https://") {
		address = "http://" + address
	}

	return &daemonClient{
		baseURL: strings.TrimSuffix(address, "/"),
		client:  httputil.NewClient(0),
	}, nil
}

func (c *daemonClient) get(path string) error {
	status, body, err := c.client.Get(
		context.Background(), c.baseURL+path, nil,
	)
	if err != nil {
		return fmt.Errorf("unable to connect to daemon: %w", err)
	}
	return printResponse(status, body)
}

func (c *daemonClient) post(path string, req interface{}) error {
	payload := ""
	if req != nil {
		buf, err := json.Marshal(req)
		if err != nil {
			return err
		}
		payload = string(buf)
	}

	status, body, err := c.client.Post(
		context.Background(), c.baseURL+path, payload,
		map[string]string{"Content-Type": "application/json"},
	)
	if err != nil {
		return fmt.Errorf("unable to connect to daemon: %w", err)
	}
	return printResponse(status, body)
}

// printResponse prints the indented JSON body. Responses of failed ramp
// operations are printed as well, and reported as error.
func printResponse(status int, body string) error {
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(body), "", "\t"); err != nil {
		return fmt.Errorf("unable to decode response: %s", body)
	}
	fmt.Println(out.String())

	if status >= http.StatusBadRequest {
		return fmt.Errorf("request failed with status %d", status)
	}
	return nil
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[anchor] %v\n", err)
	}
	os.Exit(1)
}
