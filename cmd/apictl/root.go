package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/samvad-api-client/internal/app"
	"github.com/samvad-hq/samvad-api-client/internal/config"
	"github.com/samvad-hq/samvad-api-client/internal/logger"
	"github.com/samvad-hq/samvad-api-client/pkg/apiclient"
)

// cli carries the runtime shared by subcommands.
type cli struct {
	baseURL string
	app     *app.App
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "apictl",
		Short: "Call the account API from the command line",
		Long: `apictl sends requests to the account API, decodes the response envelope and
keeps the session (access token, relogin flag) in the configured store.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.PersistentFlags().StringVar(&c.baseURL, "base-url", "", "override BASE_URL")

	root.AddCommand(
		newEndpointsCmd(c),
		newCallCmd(c),
		newUploadCmd(c),
		newLoginCmd(c),
		newLogoutCmd(c),
		newSessionCmd(c),
	)
	return root
}

// close releases the runtime built by setup, if any.
func (c *cli) close() error {
	defer logger.Close()
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	a, err := app.New(cmd.Context(), cfg, log, app.WithClientOptions(apiclient.WithDeliverCancelled()))
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	c.app = a
	return nil
}

// parsePairs turns repeated key=value flags into a map.
func parsePairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

func parsePayload(raw string) (apiclient.Payload, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var p apiclient.Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("--data must be a JSON object: %w", err)
	}
	return p, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printData(w io.Writer, data json.RawMessage) error {
	if data == nil {
		_, err := fmt.Fprintln(w, "ok (no data)")
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		_, err = w.Write(append(data, '\n'))
		return err
	}
	return printJSON(w, v)
}
