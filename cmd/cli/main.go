package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
	token   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lcbank-cli",
		Short: "LC bank CLI tool",
		Long:  `A command line interface for interacting with the LC bank API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the LC bank API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("LCBANK_TOKEN"), "Bearer token (defaults to LCBANK_TOKEN)")

	// Auth commands
	loginCmd := &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Authenticate and print a token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return login(args[0], args[1])
		},
	}
	rootCmd.AddCommand(loginCmd)

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the transaction chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return verifyChain()
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List your transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/ledger/transactions")
		},
	}

	ledgerCmd.AddCommand(verifyCmd, historyCmd)
	rootCmd.AddCommand(ledgerCmd)

	// Account commands
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	meCmd := &cobra.Command{
		Use:   "me",
		Short: "Show your profile and balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/accounts/me")
		},
	}

	accountCmd.AddCommand(meCmd)
	rootCmd.AddCommand(accountCmd)

	// Alert commands
	alertsCmd := &cobra.Command{
		Use:   "alerts",
		Short: "Administrative alert queries",
	}

	alertLoansCmd := &cobra.Command{
		Use:   "loans",
		Short: "List expired or at-risk loans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/alerts/loans")
		},
	}

	alertAccountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "List drained accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/alerts/accounts")
		},
	}

	alertsCmd.AddCommand(alertLoansCmd, alertAccountsCmd)
	rootCmd.AddCommand(alertsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// newRequest builds an API request carrying the bearer token if set.
func newRequest(method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func doRequest(method, path string, body io.Reader) ([]byte, int, error) {
	req, err := newRequest(method, path, body)
	if err != nil {
		return nil, 0, err
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}

func login(username, password string) error {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}

	body, status, err := doRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("login failed (status %d): %s", status, string(body))
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Println(result.Token)
	return nil
}

func verifyChain() error {
	body, status, err := doRequest(http.MethodGet, "/api/v1/ledger/verify", nil)
	if err != nil {
		return err
	}

	var result struct {
		Intact bool   `json:"intact"`
		Halted bool   `json:"halted"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response (status %d): %s", status, string(body))
	}

	if result.Intact {
		fmt.Println("Chain verification PASSED")
		return nil
	}

	fmt.Println("Chain verification FAILED")
	if result.Error != "" {
		fmt.Printf("Error: %s\n", result.Error)
	}
	if result.Halted {
		fmt.Println("Writes are halted until the chain is repaired.")
	}
	os.Exit(1)
	return nil
}

func getJSON(path string) error {
	body, status, err := doRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("request failed (status %d): %s", status, string(body))
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	printJSON(result)
	return nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
