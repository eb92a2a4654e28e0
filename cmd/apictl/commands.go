package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/samvad-api-client/internal/domain"
	"github.com/samvad-hq/samvad-api-client/pkg/apiclient"
	"github.com/samvad-hq/samvad-api-client/pkg/httpclient"
)

func newEndpointsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List the endpoint catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMETHOD\tPATH\tAUTH")
			for _, ep := range c.app.Catalog().All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", ep.Name, ep.Method, ep.Path, ep.RequiresAuth)
			}
			return tw.Flush()
		},
	}
}

type requestFlags struct {
	params  []string
	headers []string
	data    string
}

func (f *requestFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.params, "param", "p", nil, "path parameter as key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "extra header as key=value (repeatable)")
	cmd.Flags().StringVarP(&f.data, "data", "d", "", "payload as a JSON object")
}

func (f *requestFlags) parse() (map[string]any, apiclient.Payload, []apiclient.CallOption, error) {
	rawParams, err := parsePairs(f.params)
	if err != nil {
		return nil, nil, nil, err
	}
	params := make(map[string]any, len(rawParams))
	for k, v := range rawParams {
		params[k] = v
	}
	headers, err := parsePairs(f.headers)
	if err != nil {
		return nil, nil, nil, err
	}
	payload, err := parsePayload(f.data)
	if err != nil {
		return nil, nil, nil, err
	}
	opts := make([]apiclient.CallOption, 0, len(headers))
	for k, v := range headers {
		opts = append(opts, apiclient.WithHeader(k, v))
	}
	return params, payload, opts, nil
}

func newCallCmd(c *cli) *cobra.Command {
	var (
		flags requestFlags
		raw   bool
	)
	cmd := &cobra.Command{
		Use:   "call ENDPOINT",
		Short: "Call a catalog endpoint and print the envelope data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, payload, opts, err := flags.parse()
			if err != nil {
				return err
			}
			invoke := c.app.Invoke
			if raw {
				invoke = c.app.InvokeRaw
			}
			data, err := invoke(cmd.Context(), args[0], params, payload, opts...)
			if err != nil {
				return err
			}
			return printData(cmd.OutOrStdout(), data)
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&raw, "raw", false, "the endpoint answers without the envelope")
	return cmd
}

func newUploadCmd(c *cli) *cobra.Command {
	var (
		flags requestFlags
		files []string
		field string
		quiet bool
	)
	cmd := &cobra.Command{
		Use:   "upload ENDPOINT",
		Short: "Send payload fields and files as multipart/form-data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(files) == 0 {
				return fmt.Errorf("at least one --file is required")
			}
			params, payload, opts, err := flags.parse()
			if err != nil {
				return err
			}
			if !quiet {
				errOut := cmd.ErrOrStderr()
				opts = append(opts, apiclient.WithProgress(func(p httpclient.Progress) {
					fmt.Fprintf(errOut, "\ruploaded %3.0f%%", p.Fraction()*100)
				}))
			}
			data, err := c.app.UploadFiles(cmd.Context(), args[0], params, payload, field, files, opts...)
			if !quiet {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			if err != nil {
				return err
			}
			return printData(cmd.OutOrStdout(), data)
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "file to attach (repeatable)")
	cmd.Flags().StringVar(&field, "field", "image", "form field name of the files")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not report progress")
	return cmd
}

func newLoginCmd(c *cli) *cobra.Command {
	var creds domain.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if creds.Password == "" {
				creds.Password = os.Getenv("APICTL_PASSWORD")
			}
			user, err := c.app.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password (or APICTL_PASSWORD)")
	cmd.Flags().StringVar(&creds.DeviceType, "device-type", "cli", "device type reported to the server")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the server session and forget the access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Logout(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return err
		},
	}
}

func newSessionCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess := c.app.Session()
			out := map[string]any{
				"has_access_token": sess.AccessToken() != "",
				"relogin_required": sess.ReloginRequired(),
				"device_token":     sess.DeviceToken(),
			}
			if exp, ok := sess.TokenExpiry(); ok {
				out["token_expires_at"] = exp.UTC().Format(time.RFC3339)
				out["token_expired"] = sess.TokenExpired(time.Now())
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set-device-token TOKEN",
			Short: "Store the push device token sent on login",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.app.Session().SetDeviceToken(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Forget the access token and relogin flag",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.app.Session().Clear(cmd.Context())
			},
		},
	)
	return cmd
}
