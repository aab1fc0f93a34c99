// Command httpc is a small curl-like example client built on top of the
// httpc package: it demonstrates wiring Options from a config file,
// setting request headers and a body, and printing the response.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-httpc/httpc"
	"github.com/go-httpc/httpc/internal/httplog"
)

var (
	configPath string
	headers    []string
	dataFlag   string
	jsonFlag   string
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "httpc",
	Short: "A minimal HTTP/1.x client",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (connectTimeout, connectDelay, timeout, followRedirects, logger)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", nil, "Request header in 'Key: Value' form, repeatable")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Overall request timeout, overrides the config file value")
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(postCmd)
}

var getCmd = &cobra.Command{
	Use:     "get <url>",
	Short:   "Send a GET request and print the response body",
	Args:    cobra.ExactArgs(1),
	Example: "  httpc get https://example.com/",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := httpc.Get(args[0])
		if err != nil {
			return err
		}
		return runRequest(req)
	},
}

var postCmd = &cobra.Command{
	Use:     "post <url>",
	Short:   "Send a POST request with a body and print the response",
	Args:    cobra.ExactArgs(1),
	Example: "  httpc post https://example.com/items --data '{\"name\":\"widget\"}'\n  httpc post https://example.com/items --json '{\"name\":\"widget\"}'",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := httpc.Post(args[0])
		if err != nil {
			return err
		}
		switch {
		case jsonFlag != "":
			req.Header.SetOrInsert("Content-Type", "application/json")
			req.FromBytes([]byte(jsonFlag))
		case dataFlag != "":
			req.FromBytes([]byte(dataFlag))
		default:
			req.Empty()
		}
		return runRequest(req)
	},
}

func init() {
	postCmd.Flags().StringVar(&dataFlag, "data", "", "Raw request body")
	postCmd.Flags().StringVar(&jsonFlag, "json", "", "JSON request body (sets Content-Type)")
}

func runRequest(req *httpc.Request) error {
	for _, h := range headers {
		key, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid header %q, expected 'Key: Value'", h)
		}
		req.Header.Add(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	opts, err := loadOptions()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if timeout > 0 {
		opts.Timeout = timeout
	}

	resp, err := req.SendContext(context.Background(), opts)
	if err != nil {
		return err
	}
	body, err := resp.String()
	if err != nil {
		return err
	}

	fmt.Printf("%s %d %s\n", resp.Proto, resp.StatusCode, resp.Status)
	resp.Header.Each(func(key, value string) {
		fmt.Printf("%s: %s\n", key, value)
	})
	fmt.Println()
	fmt.Println(body)
	return nil
}

// loadOptions builds an httpc.Options, starting from httpc.DefaultOptions
// and overlaying a YAML config file when --config was given.
func loadOptions() (httpc.Options, error) {
	opts := httpc.DefaultOptions()
	if configPath == "" {
		return opts, nil
	}

	fc, err := loadFileConfig(configPath)
	if err != nil {
		return opts, err
	}
	if fc.ConnectTimeout > 0 {
		opts.ConnectTimeout = fc.ConnectTimeout
	}
	if fc.ConnectDelay > 0 {
		opts.ConnectDelay = fc.ConnectDelay
	}
	if fc.Timeout > 0 {
		opts.Timeout = fc.Timeout
	}
	if fc.FollowRedirects != nil {
		opts.FollowRedirects = fc.FollowRedirects
	}
	if fc.Logger.Stdout || fc.Logger.Filename != "" {
		logger, err := httplog.New(httplog.Options{
			Stdout:     fc.Logger.Stdout,
			Level:      httplog.Level(fc.Logger.Level),
			Filename:   fc.Logger.Filename,
			MaxSize:    fc.Logger.MaxSize,
			MaxAge:     fc.Logger.MaxAge,
			MaxBackups: fc.Logger.MaxBackups,
		})
		if err != nil {
			return opts, err
		}
		opts.Logger = logger
	}
	return opts, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
