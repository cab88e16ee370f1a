package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
)

var (
	baseURL        string
	timeout        time.Duration
	idempotencyKey string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "transferd-cli",
		Short: "transferd CLI tool",
		Long:  `A command line interface for interacting with the transferd API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the transferd API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for movements (generated when empty)")

	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var accountName string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/accounts", map[string]string{"name": accountName}, "")
		},
	}
	createCmd.Flags().StringVar(&accountName, "name", "", "Account name")
	createCmd.MarkFlagRequired("name")

	getCmd := &cobra.Command{
		Use:   "get <account_id>",
		Short: "Show an account and its balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/accounts/" + args[0])
		},
	}

	accountCmd.AddCommand(createCmd, getCmd)

	depositCmd := &cobra.Command{
		Use:   "deposit <account_id> <amount>",
		Short: "Deposit money into an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/accounts/"+args[0]+"/deposit", map[string]string{"amount": args[1]}, movementKey())
		},
	}

	withdrawCmd := &cobra.Command{
		Use:   "withdraw <account_id> <amount>",
		Short: "Withdraw money from an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/accounts/"+args[0]+"/withdrawal", map[string]string{"amount": args[1]}, movementKey())
		},
	}

	transferCmd := &cobra.Command{
		Use:   "transfer <from_account_id> <to_account_id> <amount>",
		Short: "Transfer money between accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/accounts/" + args[0] + "/transfer/" + args[1]
			return postJSON(path, map[string]string{"amount": args[2]}, movementKey())
		},
	}

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check that all postings sum to zero",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/ledger/consistency")
		},
	}
	ledgerCmd.AddCommand(consistencyCmd)

	rootCmd.AddCommand(accountCmd, depositCmd, withdrawCmd, transferCmd, ledgerCmd)

	return rootCmd
}

// movementKey returns the user's key, or a fresh ULID so repeating the same
// shell command does not silently replay the previous movement.
func movementKey() string {
	if idempotencyKey != "" {
		return idempotencyKey
	}
	return ulid.Make().String()
}

func postJSON(path string, payload any, key string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}

	return doRequest(req)
}

func getJSON(path string) error {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	return doRequest(req)
}

func doRequest(req *http.Request) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(body))
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}
